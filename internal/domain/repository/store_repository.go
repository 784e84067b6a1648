package repository

import (
	"context"

	"github.com/jhoicas/Recepciones-api/internal/domain/entity"
)

// StoreRepository define el puerto de persistencia para Store.
type StoreRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Store, error)
	// Upsert crea la tienda o actualiza su nombre (la reactiva).
	Upsert(ctx context.Context, store *entity.Store) error
	// EnsureExists crea la tienda solo si no existe; no toca el nombre de una existente.
	EnsureExists(ctx context.Context, store *entity.Store) error
}
