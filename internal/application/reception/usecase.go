// Package reception orquesta el flujo de recepción de traslados: listado de
// traslados entrantes, vista previa conciliada, confirmación al ERP y registro
// local de la bitácora y del estatus del movimiento.
package reception

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jhoicas/Recepciones-api/internal/domain/repository"
	"github.com/jhoicas/Recepciones-api/pkg/logger"
)

// ProcessedLimit máximo de filas del listado de procesados.
const ProcessedLimit = 200

// Deps dependencias del caso de uso.
type Deps struct {
	Source    TransferSource
	Movements repository.MovementRepository
	Logs      repository.ReceptionLogRepository
	Stores    repository.StoreRepository
	Tx        TxRunner
	Locker    Locker
	Journal   Journal
	PDF       AcusePDFGenerator
	Logger    *logger.Logger
}

// UseCase casos de uso de recepción de traslados.
type UseCase struct {
	source    TransferSource
	movements repository.MovementRepository
	logs      repository.ReceptionLogRepository
	stores    repository.StoreRepository
	tx        TxRunner
	locker    Locker
	journal   Journal
	pdf       AcusePDFGenerator
	log       *logger.Logger
	validate  *validator.Validate

	now   func() time.Time
	newID func() string
}

// NewUseCase construye el caso de uso. Sin Locker ni Journal usa las versiones en memoria.
func NewUseCase(d Deps) *UseCase {
	log := d.Logger
	if log == nil {
		log = logger.Nop()
	}
	locker := d.Locker
	if locker == nil {
		locker = NewLocalLocker()
	}
	journal := d.Journal
	if journal == nil {
		journal = NewMemoryJournal()
	}
	return &UseCase{
		source:    d.Source,
		movements: d.Movements,
		logs:      d.Logs,
		stores:    d.Stores,
		tx:        d.Tx,
		locker:    locker,
		journal:   journal,
		pdf:       d.PDF,
		log:       log.Component("reception"),
		validate:  validator.New(),
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}
