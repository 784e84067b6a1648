package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Recepciones-api/internal/domain/entity"
	"github.com/jhoicas/Recepciones-api/internal/domain/repository"
)

var _ repository.StoreRepository = (*StoreRepo)(nil)

// StoreRepo implementación del puerto StoreRepository sobre PostgreSQL.
type StoreRepo struct {
	q Querier
}

// NewStoreRepository construye el adaptador de persistencia para tiendas.
func NewStoreRepository(q Querier) *StoreRepo {
	return &StoreRepo{q: q}
}

// GetByID obtiene una tienda por su código de almacén.
func (r *StoreRepo) GetByID(ctx context.Context, id string) (*entity.Store, error) {
	var s entity.Store
	err := r.q.QueryRow(ctx, `SELECT id, name, is_active FROM stores WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get store: %w", err)
	}
	return &s, nil
}

// Upsert crea la tienda o refresca su nombre y la reactiva.
func (r *StoreRepo) Upsert(ctx context.Context, s *entity.Store) error {
	query := `
		INSERT INTO stores (id, name, is_active)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			is_active = TRUE,
			updated_at = now()`
	if _, err := r.q.Exec(ctx, query, s.ID, s.Name); err != nil {
		return fmt.Errorf("upsert store: %w", err)
	}
	return nil
}

// EnsureExists crea la tienda si no existe.
func (r *StoreRepo) EnsureExists(ctx context.Context, s *entity.Store) error {
	query := `
		INSERT INTO stores (id, name, is_active)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (id) DO NOTHING`
	if _, err := r.q.Exec(ctx, query, s.ID, s.Name); err != nil {
		return fmt.Errorf("ensure store: %w", err)
	}
	return nil
}
