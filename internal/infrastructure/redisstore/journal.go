package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Recepciones-api/internal/application/reception"
)

var _ reception.Journal = (*Journal)(nil)

// PendingKey hash con una entrada por folio.
const PendingKey = "reception:pending"

// Journal bitácora de confirmaciones pendientes en un hash de Redis.
type Journal struct {
	client *redis.Client
}

// NewJournal construye la bitácora.
func NewJournal(client *redis.Client) *Journal {
	return &Journal{client: client}
}

func (j *Journal) Save(ctx context.Context, pc reception.PendingCommit) error {
	raw, err := json.Marshal(pc)
	if err != nil {
		return fmt.Errorf("redis: serializar pendiente: %w", err)
	}
	if err := j.client.HSet(ctx, PendingKey, pc.FolioSAP, raw).Err(); err != nil {
		return fmt.Errorf("redis: guardar pendiente %s: %w", pc.FolioSAP, err)
	}
	return nil
}

func (j *Journal) Get(ctx context.Context, folioSAP string) (*reception.PendingCommit, error) {
	raw, err := j.client.HGet(ctx, PendingKey, folioSAP).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis: leer pendiente %s: %w", folioSAP, err)
	}
	var pc reception.PendingCommit
	if err := json.Unmarshal(raw, &pc); err != nil {
		return nil, fmt.Errorf("redis: pendiente %s corrupto: %w", folioSAP, err)
	}
	return &pc, nil
}

func (j *Journal) Delete(ctx context.Context, folioSAP string) error {
	if err := j.client.HDel(ctx, PendingKey, folioSAP).Err(); err != nil {
		return fmt.Errorf("redis: borrar pendiente %s: %w", folioSAP, err)
	}
	return nil
}

// List devuelve las entradas ordenadas por antigüedad. Las que no se pueden
// decodificar se omiten.
func (j *Journal) List(ctx context.Context) ([]reception.PendingCommit, error) {
	all, err := j.client.HGetAll(ctx, PendingKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: listar pendientes: %w", err)
	}
	out := make([]reception.PendingCommit, 0, len(all))
	for _, raw := range all {
		var pc reception.PendingCommit
		if err := json.Unmarshal([]byte(raw), &pc); err != nil {
			continue
		}
		out = append(out, pc)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.Before(out[b].CreatedAt) })
	return out, nil
}
