package reception

import (
	"context"
	"sort"
	"sync"
)

var (
	_ Locker  = (*LocalLocker)(nil)
	_ Journal = (*MemoryJournal)(nil)
)

// LocalLocker lock en memoria del proceso. Sirve para despliegues de una sola
// instancia sin Redis.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocalLocker construye el locker en memoria.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]struct{})}
}

// TryLock toma la clave si está libre.
func (l *LocalLocker) TryLock(_ context.Context, key string) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[key]; busy {
		return nil, false, nil
	}
	l.held[key] = struct{}{}
	var once sync.Once
	release := func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
		return nil
	}
	return release, true, nil
}

// MemoryJournal bitácora de pendientes en memoria; se pierde al reiniciar.
type MemoryJournal struct {
	mu      sync.Mutex
	entries map[string]PendingCommit
}

// NewMemoryJournal construye la bitácora en memoria.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{entries: make(map[string]PendingCommit)}
}

func (j *MemoryJournal) Save(_ context.Context, pc PendingCommit) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries[pc.FolioSAP] = pc
	return nil
}

func (j *MemoryJournal) Get(_ context.Context, folioSAP string) (*PendingCommit, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	pc, ok := j.entries[folioSAP]
	if !ok {
		return nil, nil
	}
	return &pc, nil
}

func (j *MemoryJournal) Delete(_ context.Context, folioSAP string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.entries, folioSAP)
	return nil
}

// List devuelve las entradas ordenadas por antigüedad.
func (j *MemoryJournal) List(_ context.Context) ([]PendingCommit, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]PendingCommit, 0, len(j.entries))
	for _, pc := range j.entries {
		out = append(out, pc)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.Before(out[b].CreatedAt) })
	return out, nil
}
