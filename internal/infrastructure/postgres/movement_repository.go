package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Recepciones-api/internal/domain"
	"github.com/jhoicas/Recepciones-api/internal/domain/entity"
	"github.com/jhoicas/Recepciones-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del puerto MovementRepository sobre PostgreSQL.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador; q puede ser el pool o una tx.
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementSelect = `
	SELECT m.id, m.document_number, t.name, s.name,
	       COALESCE(m.origin_store_id, ''), COALESCE(m.destination_store_id, ''),
	       COALESCE(m.observations, ''), m.created_at, m.updated_at
	FROM movements m
	JOIN movement_types t ON t.id = m.type_id
	JOIN movement_statuses s ON s.id = m.status_id
	WHERE m.document_number = $1`

// GetByDocumentNumber obtiene el movimiento por folio. nil, nil si no existe.
func (r *MovementRepo) GetByDocumentNumber(ctx context.Context, documentNumber string) (*entity.Movement, error) {
	return r.get(ctx, movementSelect, documentNumber)
}

// GetByDocumentNumberForUpdate bloquea la fila del movimiento hasta el fin de la tx.
func (r *MovementRepo) GetByDocumentNumberForUpdate(ctx context.Context, documentNumber string) (*entity.Movement, error) {
	return r.get(ctx, movementSelect+` FOR UPDATE OF m`, documentNumber)
}

func (r *MovementRepo) get(ctx context.Context, query, documentNumber string) (*entity.Movement, error) {
	var m entity.Movement
	err := r.q.QueryRow(ctx, query, documentNumber).Scan(
		&m.ID, &m.DocumentNumber, &m.TypeName, &m.StatusName,
		&m.OriginStoreID, &m.DestinationStoreID, &m.Observations,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return &m, nil
}

// UpsertPending inserta el movimiento en EN_PREPARACION. Si el folio ya existe solo
// refresca cabecera y fechas mientras siga en EN_PREPARACION; el estatus nunca se toca.
func (r *MovementRepo) UpsertPending(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movements (id, document_number, type_id, status_id,
		                       origin_store_id, destination_store_id, observations,
		                       created_at, updated_at)
		SELECT $1, $2, t.id, s.id, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7
		FROM movement_types t, movement_statuses s
		WHERE t.name = $8 AND s.name = $9
		ON CONFLICT (document_number) DO UPDATE SET
			origin_store_id      = EXCLUDED.origin_store_id,
			destination_store_id = EXCLUDED.destination_store_id,
			observations         = EXCLUDED.observations,
			updated_at           = EXCLUDED.updated_at
		WHERE movements.status_id = EXCLUDED.status_id`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.DocumentNumber, m.OriginStoreID, m.DestinationStoreID, m.Observations,
		m.CreatedAt, m.UpdatedAt, m.TypeName, entity.MovementStatusEnPreparacion,
	)
	if err != nil {
		if isMissingReference(err) {
			return fmt.Errorf("upsert movement %s: %w", m.DocumentNumber, domain.ErrNotFound)
		}
		return fmt.Errorf("upsert movement: %w", err)
	}
	return nil
}

// UpdateStatus cambia el estatus del movimiento y marca updated_at.
func (r *MovementRepo) UpdateStatus(ctx context.Context, id, statusName string) error {
	query := `
		UPDATE movements
		SET status_id = (SELECT id FROM movement_statuses WHERE name = $2),
		    updated_at = now()
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, id, statusName)
	if err != nil {
		if isMissingReference(err) {
			return fmt.Errorf("update movement status %s: %w", statusName, domain.ErrMissingCatalog)
		}
		return fmt.Errorf("update movement status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update movement status: %w", domain.ErrNotFound)
	}
	return nil
}

// ListProcessed lista los movimientos ya conciliados, más recientes primero.
func (r *MovementRepo) ListProcessed(ctx context.Context, f repository.ProcessedFilter) ([]*entity.ProcessedMovement, error) {
	if !f.AllStores && len(f.DestinationStoreIDs) == 0 {
		return []*entity.ProcessedMovement{}, nil
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 200
	}

	query := `
		SELECT m.id, m.document_number, s.name,
		       COALESCE(o.name, ''), COALESCE(d.name, ''), m.updated_at
		FROM movements m
		JOIN movement_types t ON t.id = m.type_id
		JOIN movement_statuses s ON s.id = m.status_id
		LEFT JOIN stores o ON o.id = m.origin_store_id
		LEFT JOIN stores d ON d.id = m.destination_store_id
		WHERE t.name = $1
		  AND s.name <> $2
		  AND ($3 OR m.destination_store_id = ANY($4))
		ORDER BY m.updated_at DESC
		LIMIT $5`
	stores := f.DestinationStoreIDs
	if stores == nil {
		stores = []string{}
	}
	rows, err := r.q.Query(ctx, query, f.TypeName, entity.MovementStatusEnPreparacion, f.AllStores, stores, limit)
	if err != nil {
		return nil, fmt.Errorf("list processed movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.ProcessedMovement
	for rows.Next() {
		var p entity.ProcessedMovement
		if err := rows.Scan(&p.ID, &p.DocumentNumber, &p.StatusName,
			&p.OriginStoreName, &p.DestinationStoreName, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan processed movement: %w", err)
		}
		list = append(list, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list processed movements: %w", err)
	}
	return list, nil
}

// CatalogReady indica si existen el estatus y el tipo en los catálogos.
func (r *MovementRepo) CatalogReady(ctx context.Context, statusName, typeName string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM movement_statuses WHERE name = $1)
		   AND EXISTS (SELECT 1 FROM movement_types WHERE name = $2)`
	var ok bool
	if err := r.q.QueryRow(ctx, query, statusName, typeName).Scan(&ok); err != nil {
		return false, fmt.Errorf("check catalog: %w", err)
	}
	return ok, nil
}
