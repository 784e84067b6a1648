package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Recepciones-api/internal/domain"
	"github.com/jhoicas/Recepciones-api/internal/domain/entity"
	"github.com/jhoicas/Recepciones-api/internal/domain/repository"
)

var _ repository.ReceptionLogRepository = (*ReceptionLogRepo)(nil)

// ReceptionLogRepo implementación del puerto ReceptionLogRepository sobre PostgreSQL.
type ReceptionLogRepo struct {
	q Querier
}

// NewReceptionLogRepository construye el adaptador de la bitácora de recepción.
func NewReceptionLogRepository(q Querier) *ReceptionLogRepo {
	return &ReceptionLogRepo{q: q}
}

var receptionLogColumns = []string{
	"id", "folio_sap", "linenum", "articulo",
	"cantidad_esperada", "cantidad_recibida", "diferencia",
	"motivo", "observaciones", "created_at",
}

// ListByFolio devuelve las líneas registradas del folio ordenadas por linenum.
func (r *ReceptionLogRepo) ListByFolio(ctx context.Context, folioSAP string) ([]*entity.ReceptionLog, error) {
	query := `
		SELECT id, folio_sap, linenum, articulo, cantidad_esperada, cantidad_recibida,
		       diferencia, motivo, COALESCE(observaciones, ''), created_at
		FROM reception_logs
		WHERE folio_sap = $1
		ORDER BY linenum`
	rows, err := r.q.Query(ctx, query, folioSAP)
	if err != nil {
		return nil, fmt.Errorf("list reception logs: %w", err)
	}
	defer rows.Close()

	var list []*entity.ReceptionLog
	for rows.Next() {
		var l entity.ReceptionLog
		if err := rows.Scan(&l.ID, &l.FolioSAP, &l.Linenum, &l.Articulo,
			&l.CantidadEsperada, &l.CantidadRecibida, &l.Diferencia,
			&l.Motivo, &l.Observaciones, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reception log: %w", err)
		}
		list = append(list, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reception logs: %w", err)
	}
	return list, nil
}

// LoggedFolios devuelve qué folios del listado ya tienen bitácora.
func (r *ReceptionLogRepo) LoggedFolios(ctx context.Context, folios []string) (map[string]bool, error) {
	logged := make(map[string]bool)
	if len(folios) == 0 {
		return logged, nil
	}
	rows, err := r.q.Query(ctx, `SELECT DISTINCT folio_sap FROM reception_logs WHERE folio_sap = ANY($1)`, folios)
	if err != nil {
		return nil, fmt.Errorf("logged folios: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var folio string
		if err := rows.Scan(&folio); err != nil {
			return nil, fmt.Errorf("scan folio: %w", err)
		}
		logged[folio] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("logged folios: %w", err)
	}
	return logged, nil
}

// DeleteByFolio elimina la bitácora previa del folio.
func (r *ReceptionLogRepo) DeleteByFolio(ctx context.Context, folioSAP string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM reception_logs WHERE folio_sap = $1`, folioSAP); err != nil {
		return fmt.Errorf("delete reception logs: %w", err)
	}
	return nil
}

// CreateMany inserta las líneas con COPY. Asigna ID a las que no lo traen.
func (r *ReceptionLogRepo) CreateMany(ctx context.Context, logs []*entity.ReceptionLog) error {
	if len(logs) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(logs))
	for _, l := range logs {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		rows = append(rows, []any{
			l.ID, l.FolioSAP, l.Linenum, l.Articulo,
			l.CantidadEsperada, l.CantidadRecibida, l.Diferencia,
			l.Motivo, l.Observaciones, l.CreatedAt,
		})
	}
	_, err := r.q.CopyFrom(ctx, pgx.Identifier{"reception_logs"}, receptionLogColumns, pgx.CopyFromRows(rows))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert reception logs: %w", domain.ErrConflict)
		}
		return fmt.Errorf("insert reception logs: %w", err)
	}
	return nil
}
