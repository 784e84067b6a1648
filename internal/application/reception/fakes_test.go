package reception_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/jhoicas/Recepciones-api/internal/application/reception"
	"github.com/jhoicas/Recepciones-api/internal/domain"
	"github.com/jhoicas/Recepciones-api/internal/domain/entity"
	domainrec "github.com/jhoicas/Recepciones-api/internal/domain/reception"
	"github.com/jhoicas/Recepciones-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// ERP falso
// ──────────────────────────────────────────────────────────────────────────────

type fakeSource struct {
	mu sync.Mutex

	byStore    map[string][]domainrec.TransferHeader
	storeErrs  map[string]error
	headers    map[string]domainrec.TransferHeader
	details    map[string][]domainrec.ExternalLine
	detailsErr error

	confirmDocNum string
	confirmErr    error
	confirmations []domainrec.Confirmation

	calls int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		byStore:       map[string][]domainrec.TransferHeader{},
		storeErrs:     map[string]error{},
		headers:       map[string]domainrec.TransferHeader{},
		details:       map[string][]domainrec.ExternalLine{},
		confirmDocNum: "90001",
	}
}

func (f *fakeSource) ListTransfersToStore(_ context.Context, storeID string) ([]domainrec.TransferHeader, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.storeErrs[storeID]; err != nil {
		return nil, err
	}
	return f.byStore[storeID], nil
}

func (f *fakeSource) GetTransferHeader(_ context.Context, folio string) (*domainrec.TransferHeader, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	h, ok := f.headers[folio]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &h, nil
}

func (f *fakeSource) GetTransferDetails(_ context.Context, folio string) ([]domainrec.ExternalLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	return f.details[folio], nil
}

func (f *fakeSource) ConfirmReceipt(_ context.Context, c domainrec.Confirmation) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.confirmations = append(f.confirmations, c)
	if f.confirmErr != nil {
		return "", f.confirmErr
	}
	return f.confirmDocNum, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Persistencia en memoria
// ──────────────────────────────────────────────────────────────────────────────

type store struct {
	mu        sync.Mutex
	movements map[string]*entity.Movement
	logs      map[string][]*entity.ReceptionLog
	stores    map[string]*entity.Store
	catalogOK bool

	// failCommit hace fallar la siguiente transacción.
	failCommit error
	commits    int
}

func newStore() *store {
	return &store{
		movements: map[string]*entity.Movement{},
		logs:      map[string][]*entity.ReceptionLog{},
		stores:    map[string]*entity.Store{},
		catalogOK: true,
	}
}

func (s *store) putMovement(folio, status, destination string) {
	s.movements[folio] = &entity.Movement{
		ID:                 "mov-" + folio,
		DocumentNumber:     folio,
		TypeName:           entity.MovementTypeTrasladoInterno,
		StatusName:         status,
		OriginStoreID:      "A01",
		DestinationStoreID: destination,
	}
}

type movementRepo struct{ s *store }

var _ repository.MovementRepository = movementRepo{}

func (r movementRepo) GetByDocumentNumber(_ context.Context, folio string) (*entity.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.movements[folio]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r movementRepo) GetByDocumentNumberForUpdate(ctx context.Context, folio string) (*entity.Movement, error) {
	return r.GetByDocumentNumber(ctx, folio)
}

func (r movementRepo) UpsertPending(_ context.Context, m *entity.Movement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.movements[m.DocumentNumber]
	if !ok {
		cp := *m
		cp.StatusName = entity.MovementStatusEnPreparacion
		r.s.movements[m.DocumentNumber] = &cp
		return nil
	}
	if existing.IsPending() {
		existing.OriginStoreID = m.OriginStoreID
		existing.DestinationStoreID = m.DestinationStoreID
		existing.Observations = m.Observations
		existing.UpdatedAt = m.UpdatedAt
	}
	return nil
}

func (r movementRepo) UpdateStatus(_ context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.movements {
		if m.ID == id {
			m.StatusName = status
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r movementRepo) ListProcessed(_ context.Context, f repository.ProcessedFilter) ([]*entity.ProcessedMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.ProcessedMovement
	for _, m := range r.s.movements {
		if m.IsPending() || m.TypeName != f.TypeName {
			continue
		}
		if !f.AllStores && !contains(f.DestinationStoreIDs, m.DestinationStoreID) {
			continue
		}
		out = append(out, &entity.ProcessedMovement{ID: m.ID, DocumentNumber: m.DocumentNumber, StatusName: m.StatusName})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].DocumentNumber < out[b].DocumentNumber })
	return out, nil
}

func (r movementRepo) CatalogReady(context.Context, string, string) (bool, error) {
	return r.s.catalogOK, nil
}

type logRepo struct{ s *store }

var _ repository.ReceptionLogRepository = logRepo{}

func (r logRepo) ListByFolio(_ context.Context, folio string) ([]*entity.ReceptionLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]*entity.ReceptionLog(nil), r.s.logs[folio]...), nil
}

func (r logRepo) LoggedFolios(_ context.Context, folios []string) (map[string]bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[string]bool{}
	for _, f := range folios {
		if len(r.s.logs[f]) > 0 {
			out[f] = true
		}
	}
	return out, nil
}

func (r logRepo) DeleteByFolio(_ context.Context, folio string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.logs, folio)
	return nil
}

func (r logRepo) CreateMany(_ context.Context, logs []*entity.ReceptionLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range logs {
		r.s.logs[l.FolioSAP] = append(r.s.logs[l.FolioSAP], l)
	}
	return nil
}

type storeRepo struct{ s *store }

var _ repository.StoreRepository = storeRepo{}

func (r storeRepo) GetByID(_ context.Context, id string) (*entity.Store, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.stores[id]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (r storeRepo) Upsert(_ context.Context, st *entity.Store) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *st
	cp.IsActive = true
	r.s.stores[st.ID] = &cp
	return nil
}

func (r storeRepo) EnsureExists(_ context.Context, st *entity.Store) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.stores[st.ID]; !ok {
		cp := *st
		r.s.stores[st.ID] = &cp
	}
	return nil
}

// txRunner aplica los cambios sobre una copia y solo los publica si fn no falla.
type txRunner struct{ s *store }

var _ reception.TxRunner = txRunner{}

func (t txRunner) RunReception(ctx context.Context, fn func(repository.MovementRepository, repository.ReceptionLogRepository) error) error {
	t.s.mu.Lock()
	if err := t.s.failCommit; err != nil {
		t.s.failCommit = nil
		t.s.mu.Unlock()
		return err
	}
	shadow := newStore()
	for k, m := range t.s.movements {
		cp := *m
		shadow.movements[k] = &cp
	}
	for k, l := range t.s.logs {
		shadow.logs[k] = append([]*entity.ReceptionLog(nil), l...)
	}
	t.s.mu.Unlock()

	if err := fn(movementRepo{shadow}, logRepo{shadow}); err != nil {
		return err
	}

	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.movements = shadow.movements
	t.s.logs = shadow.logs
	t.s.commits++
	return nil
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

var errBoom = errors.New("boom")

// ──────────────────────────────────────────────────────────────────────────────
// Armado del caso de uso
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	uc      *reception.UseCase
	source  *fakeSource
	db      *store
	journal *reception.MemoryJournal
	locker  *reception.LocalLocker
}

func newFixture() *fixture {
	src := newFakeSource()
	db := newStore()
	journal := reception.NewMemoryJournal()
	locker := reception.NewLocalLocker()
	uc := reception.NewUseCase(reception.Deps{
		Source:    src,
		Movements: movementRepo{db},
		Logs:      logRepo{db},
		Stores:    storeRepo{db},
		Tx:        txRunner{db},
		Locker:    locker,
		Journal:   journal,
		PDF:       &fakePDF{},
	})
	return &fixture{uc: uc, source: src, db: db, journal: journal, locker: locker}
}

type fakePDF struct {
	last *reception.Acuse
}

func (p *fakePDF) GenerateAcusePDF(_ context.Context, a reception.Acuse) ([]byte, error) {
	p.last = &a
	return []byte("%PDF-1.4 fake"), nil
}

func vendedor(stores ...string) entity.Actor {
	return entity.Actor{UserID: "u-1", Role: entity.RoleVendedor, StoreIDs: stores}
}
