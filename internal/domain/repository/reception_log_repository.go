package repository

import (
	"context"

	"github.com/jhoicas/Recepciones-api/internal/domain/entity"
)

// ReceptionLogRepository define el puerto de persistencia para la bitácora de recepción.
type ReceptionLogRepository interface {
	ListByFolio(ctx context.Context, folioSAP string) ([]*entity.ReceptionLog, error)
	// LoggedFolios devuelve el subconjunto de folios que ya tienen bitácora.
	LoggedFolios(ctx context.Context, folios []string) (map[string]bool, error)
	DeleteByFolio(ctx context.Context, folioSAP string) error
	CreateMany(ctx context.Context, logs []*entity.ReceptionLog) error
}
