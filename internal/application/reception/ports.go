package reception

import (
	"context"
	"time"

	"github.com/jhoicas/Recepciones-api/internal/domain/entity"
	"github.com/jhoicas/Recepciones-api/internal/domain/reception"
	"github.com/jhoicas/Recepciones-api/internal/domain/repository"
)

// TransferSource puerto hacia la API de traslados del ERP.
type TransferSource interface {
	ListTransfersToStore(ctx context.Context, storeID string) ([]reception.TransferHeader, error)
	// GetTransferHeader devuelve domain.ErrNotFound si el ERP no conoce el folio.
	GetTransferHeader(ctx context.Context, folioSAP string) (*reception.TransferHeader, error)
	GetTransferDetails(ctx context.Context, folioSAP string) ([]reception.ExternalLine, error)
	// ConfirmReceipt devuelve el DocNum asignado por el ERP.
	ConfirmReceipt(ctx context.Context, confirmation reception.Confirmation) (string, error)
}

// TxRunner ejecuta fn dentro de una transacción con los repos de movimiento y bitácora atados a ella.
type TxRunner interface {
	RunReception(ctx context.Context, fn func(
		movements repository.MovementRepository,
		logs repository.ReceptionLogRepository,
	) error) error
}

// Locker exclusión mutua por clave. ok=false si otro dueño tiene el lock.
type Locker interface {
	TryLock(ctx context.Context, key string) (release func(context.Context) error, ok bool, err error)
}

// PendingCommit confirmación aceptada por el ERP cuyo registro local aún no se confirma.
type PendingCommit struct {
	FolioSAP          string                 `json:"folioSAP"`
	DocNum            string                 `json:"docNum"`
	TransactionNumber string                 `json:"transactionNumber"`
	MovementStatus    string                 `json:"movementStatus"`
	Logs              []*entity.ReceptionLog `json:"logs"`
	CreatedAt         time.Time              `json:"createdAt"`
}

// Journal bitácora de confirmaciones pendientes de registrar localmente.
type Journal interface {
	Save(ctx context.Context, pc PendingCommit) error
	// Get devuelve nil, nil si el folio no tiene entrada.
	Get(ctx context.Context, folioSAP string) (*PendingCommit, error)
	Delete(ctx context.Context, folioSAP string) error
	List(ctx context.Context) ([]PendingCommit, error)
}

// AcusePDFGenerator genera el acuse de recepción en PDF.
type AcusePDFGenerator interface {
	GenerateAcusePDF(ctx context.Context, acuse Acuse) ([]byte, error)
}
