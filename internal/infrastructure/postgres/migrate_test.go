package postgres_test

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Recepciones-api/internal/infrastructure/postgres"
)

func TestMigrations_AnotadasParaGoose(t *testing.T) {
	names, err := fs.Glob(postgres.Migrations(), "*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"001_recepciones.sql", "002_seed_catalogos.sql"}, names)

	for _, name := range names {
		raw, err := fs.ReadFile(postgres.Migrations(), name)
		require.NoError(t, err)
		sql := string(raw)
		up := strings.Index(sql, "-- +goose Up")
		down := strings.Index(sql, "-- +goose Down")
		require.GreaterOrEqual(t, up, 0, name)
		assert.Greater(t, down, up, name)
	}
}

func TestMigrations_SeedIncluyeCatalogosDeRecepcion(t *testing.T) {
	raw, err := fs.ReadFile(postgres.Migrations(), "002_seed_catalogos.sql")
	require.NoError(t, err)
	for _, name := range []string{"TRASLADO_INTERNO", "EN_PREPARACION", "RECIBIDO_PARCIAL", "CERRADO", "CANCELADO"} {
		assert.Contains(t, string(raw), "'"+name+"'")
	}
}
