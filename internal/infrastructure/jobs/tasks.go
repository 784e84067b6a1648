// Package jobs ejecuta en segundo plano el replay de confirmaciones pendientes:
// con Redis vía asynq (worker + scheduler), sin Redis con un ticker en proceso.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/Recepciones-api/internal/application/reception"
	"github.com/jhoicas/Recepciones-api/pkg/logger"
)

const (
	// QueueDefault cola por defecto.
	QueueDefault = "default"
	// TaskReceptionsReplay reintenta el registro local de confirmaciones ya aceptadas por el ERP.
	TaskReceptionsReplay = "receptions:replay"
)

// Replayer lo implementa el caso de uso de recepción.
type Replayer interface {
	Replay(ctx context.Context) (reception.ReplayReport, error)
}

// NewReceptionsReplayTask construye la tarea de replay. No lleva payload.
func NewReceptionsReplayTask() *asynq.Task {
	return asynq.NewTask(TaskReceptionsReplay, nil)
}

// ReplayJob handler de TaskReceptionsReplay.
type ReplayJob struct {
	replayer Replayer
	log      *logger.Logger
	clock    func() time.Time
}

// NewReplayJob construye el job.
func NewReplayJob(r Replayer, log *logger.Logger) *ReplayJob {
	if log == nil {
		log = logger.Nop()
	}
	return &ReplayJob{replayer: r, log: log.Component("jobs.replay"), clock: time.Now}
}

// Handle procesa una tarea de replay. Los folios que fallan quedan para la siguiente pasada,
// por eso solo se devuelve error cuando no se pudo leer el journal.
func (j *ReplayJob) Handle(ctx context.Context, _ *asynq.Task) error {
	_, err := j.Run(ctx)
	return err
}

// Run ejecuta una pasada y registra el resultado.
func (j *ReplayJob) Run(ctx context.Context) (reception.ReplayReport, error) {
	if j == nil || j.replayer == nil {
		return reception.ReplayReport{}, errors.New("replay: handler no configurado")
	}
	start := j.clock()
	report, err := j.replayer.Replay(ctx)
	if err != nil {
		j.log.Error().Err(err).Msg("replay de confirmaciones fallido")
		return report, err
	}
	if report.Pending == 0 {
		j.log.Debug().Msg("sin confirmaciones pendientes")
		return report, nil
	}
	ev := j.log.Info()
	if report.Failed > 0 {
		ev = j.log.Warn()
	}
	ev.Int("pending", report.Pending).
		Int("replayed", report.Replayed).
		Int("failed", report.Failed).
		Dur("duration", j.clock().Sub(start)).
		Msg("replay de confirmaciones completado")
	return report, nil
}
