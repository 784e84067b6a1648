package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Recepciones-api/internal/application/reception"
)

var _ reception.Locker = (*Locker)(nil)

// releaseScript borra la clave solo si sigue perteneciendo al dueño.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Locker lock distribuido con SET NX PX y token de dueño. El TTL debe superar
// el timeout de la llamada al ERP para que el lock no expire a mitad de la confirmación.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLocker construye el locker.
func NewLocker(client *redis.Client, ttl time.Duration) *Locker {
	return &Locker{client: client, ttl: ttl}
}

// TryLock intenta tomar la clave. ok=false si ya tiene dueño.
func (l *Locker) TryLock(ctx context.Context, key string) (func(context.Context) error, bool, error) {
	token := uuid.New().String()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis: lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("redis: unlock %s: %w", key, err)
		}
		return nil
	}
	return release, true, nil
}
