package repository

import (
	"context"

	"github.com/jhoicas/Recepciones-api/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia para el libro de movimientos.
type MovementRepository interface {
	// GetByDocumentNumber devuelve nil, nil si el folio no existe.
	GetByDocumentNumber(ctx context.Context, documentNumber string) (*entity.Movement, error)
	// GetByDocumentNumberForUpdate igual que GetByDocumentNumber pero bloquea la fila (dentro de tx).
	GetByDocumentNumberForUpdate(ctx context.Context, documentNumber string) (*entity.Movement, error)
	// UpsertPending crea el movimiento en EN_PREPARACION o refresca la cabecera si sigue pendiente.
	UpsertPending(ctx context.Context, movement *entity.Movement) error
	UpdateStatus(ctx context.Context, id, statusName string) error
	ListProcessed(ctx context.Context, filter ProcessedFilter) ([]*entity.ProcessedMovement, error)
	// CatalogReady verifica que existan el estatus y el tipo requeridos.
	CatalogReady(ctx context.Context, statusName, typeName string) (bool, error)
}

// ProcessedFilter filtro del listado de traslados procesados.
// DestinationStoreIDs vacío con AllStores=false no devuelve nada.
type ProcessedFilter struct {
	AllStores           bool
	DestinationStoreIDs []string
	TypeName            string
	Limit               int
}
