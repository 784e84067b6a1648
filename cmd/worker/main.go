package main

import (
	"context"
	"errors"
	"flag"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/Recepciones-api/internal/bootstrap"
	"github.com/jhoicas/Recepciones-api/internal/infrastructure/jobs"
	"github.com/jhoicas/Recepciones-api/pkg/config"
	"github.com/jhoicas/Recepciones-api/pkg/logger"
)

func main() {
	once := flag.Bool("once", false, "ejecuta una pasada de replay y termina")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name + "-worker",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !cfg.Redis.Enabled() {
		log.Fatal().Msg("REDIS_ADDR es requerido por el worker; sin Redis el replay corre dentro de la API")
	}

	comps, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicialización")
	}
	defer comps.Close()

	replay := jobs.NewReplayJob(comps.Receptions, log)

	if *once {
		report, err := replay.Run(ctx)
		if err != nil {
			log.Error().Err(err).Msg("replay")
			return
		}
		log.Info().Int("pending", report.Pending).Int("replayed", report.Replayed).Int("failed", report.Failed).Msg("replay terminado")
		return
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		Logger: log,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReceptionsReplay, Handler: replay.Handle},
		},
		Cron: []jobs.CronRegistration{
			{
				Spec:    cfg.Reception.ReplayCron,
				Task:    jobs.NewReceptionsReplayTask(),
				Options: []asynq.Option{asynq.MaxRetry(0), asynq.Unique(cfg.Reception.LockTTL)},
			},
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("configurar worker")
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("worker finalizado con error")
	}
}
