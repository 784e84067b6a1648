// Package bootstrap arma las dependencias compartidas por la API y el worker.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Recepciones-api/internal/application/reception"
	"github.com/jhoicas/Recepciones-api/internal/infrastructure/erp"
	infrapdf "github.com/jhoicas/Recepciones-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Recepciones-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Recepciones-api/internal/infrastructure/redisstore"
	"github.com/jhoicas/Recepciones-api/pkg/config"
	"github.com/jhoicas/Recepciones-api/pkg/logger"
)

// Components dependencias construidas. Redis es nil si no está configurado.
type Components struct {
	Pool       *pgxpool.Pool
	Redis      *redis.Client
	Receptions *reception.UseCase
}

// Build conecta PostgreSQL (y aplica migraciones), Redis si está configurado, y
// construye el caso de uso de recepción.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Components, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	applied, err := postgres.Migrate(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("migraciones: %w", err)
	}
	for _, name := range applied {
		log.Info().Str("migration", name).Msg("migración aplicada")
	}

	c := &Components{Pool: pool}

	deps := reception.Deps{
		Source:    erp.NewClient(cfg.ERP),
		Movements: postgres.NewMovementRepository(pool),
		Logs:      postgres.NewReceptionLogRepository(pool),
		Stores:    postgres.NewStoreRepository(pool),
		Tx:        postgres.NewTxRunner(pool),
		PDF:       infrapdf.NewMarotoAcuseGenerator(),
		Logger:    log,
	}

	if cfg.Redis.Enabled() {
		rdb, err := redisstore.New(ctx, cfg.Redis)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("conexión a Redis: %w", err)
		}
		c.Redis = rdb
		deps.Locker = redisstore.NewLocker(rdb, cfg.Reception.LockTTL)
		deps.Journal = redisstore.NewJournal(rdb)
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: lock y journal en memoria, solo válido con una instancia")
	}

	c.Receptions = reception.NewUseCase(deps)
	return c, nil
}

// Close libera conexiones.
func (c *Components) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	c.Pool.Close()
}
