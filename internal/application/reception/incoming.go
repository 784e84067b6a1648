package reception

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Recepciones-api/internal/domain"
	"github.com/jhoicas/Recepciones-api/internal/domain/entity"
	"github.com/jhoicas/Recepciones-api/internal/domain/reception"
)

var fechaLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ListIncoming consulta en el ERP los traslados abiertos hacia las tiendas del actor,
// descarta los que ya tienen bitácora y registra el resto en el libro de movimientos.
// Una tienda cuya consulta falla aporta una lista vacía; no aborta el listado.
func (uc *UseCase) ListIncoming(ctx context.Context, actor entity.Actor) ([]reception.TransferHeader, error) {
	if !actor.CanReceive() || len(actor.StoreIDs) == 0 {
		return []reception.TransferHeader{}, nil
	}

	// ── 1. Consulta concurrente por tienda ───────────────────────────────────
	perStore := make([][]reception.TransferHeader, len(actor.StoreIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, storeID := range actor.StoreIDs {
		g.Go(func() error {
			headers, err := uc.source.ListTransfersToStore(gctx, storeID)
			if err != nil {
				uc.log.Warn().Err(err).Str("store_id", storeID).Msg("traslados de la tienda no disponibles")
				return nil
			}
			perStore[i] = headers
			return nil
		})
	}
	_ = g.Wait()

	// ── 2. Solo abiertos, un folio una vez ───────────────────────────────────
	var open []reception.TransferHeader
	seen := make(map[string]struct{})
	for _, headers := range perStore {
		for _, h := range headers {
			if !h.IsOpen() || h.FolioSAP == "" {
				continue
			}
			if _, dup := seen[h.FolioSAP]; dup {
				continue
			}
			seen[h.FolioSAP] = struct{}{}
			open = append(open, h)
		}
	}
	if len(open) == 0 {
		return []reception.TransferHeader{}, nil
	}

	// ── 3. Descartar los que ya tienen bitácora ──────────────────────────────
	folios := make([]string, 0, len(open))
	for _, h := range open {
		folios = append(folios, h.FolioSAP)
	}
	logged, err := uc.logs.LoggedFolios(ctx, folios)
	if err != nil {
		return nil, fmt.Errorf("reception: folios con bitácora: %w", err)
	}
	toProcess := make([]reception.TransferHeader, 0, len(open))
	for _, h := range open {
		if !logged[h.FolioSAP] {
			toProcess = append(toProcess, h)
		}
	}
	if len(toProcess) == 0 {
		return toProcess, nil
	}

	// ── 4. Registrar tiendas y movimientos ───────────────────────────────────
	ready, err := uc.movements.CatalogReady(ctx, entity.MovementStatusEnPreparacion, entity.MovementTypeTrasladoInterno)
	if err != nil {
		return nil, fmt.Errorf("reception: catálogos: %w", err)
	}
	if !ready {
		return nil, fmt.Errorf("%w: %s o %s", domain.ErrMissingCatalog,
			entity.MovementStatusEnPreparacion, entity.MovementTypeTrasladoInterno)
	}

	for _, h := range toProcess {
		if err := uc.registerIncoming(ctx, h); err != nil {
			return nil, err
		}
	}
	return toProcess, nil
}

func (uc *UseCase) registerIncoming(ctx context.Context, h reception.TransferHeader) error {
	if h.AlmacenOrigen != "" {
		name := h.NombreOrigen
		if name == "" {
			name = "Tienda " + h.AlmacenOrigen
		}
		if err := uc.stores.Upsert(ctx, &entity.Store{ID: h.AlmacenOrigen, Name: name, IsActive: true}); err != nil {
			return fmt.Errorf("reception: tienda origen %s: %w", h.AlmacenOrigen, err)
		}
	}
	if h.AlmacenDestino != "" {
		placeholder := &entity.Store{ID: h.AlmacenDestino, Name: "Tienda " + h.AlmacenDestino, IsActive: true}
		if err := uc.stores.EnsureExists(ctx, placeholder); err != nil {
			return fmt.Errorf("reception: tienda destino %s: %w", h.AlmacenDestino, err)
		}
	}

	fecha := uc.parseFecha(h.Fecha)
	m := &entity.Movement{
		ID:                 uc.newID(),
		DocumentNumber:     h.FolioSAP,
		TypeName:           entity.MovementTypeTrasladoInterno,
		StatusName:         entity.MovementStatusEnPreparacion,
		OriginStoreID:      h.AlmacenOrigen,
		DestinationStoreID: h.AlmacenDestino,
		Observations:       h.Memo,
		CreatedAt:          fecha,
		UpdatedAt:          fecha,
	}
	if err := uc.movements.UpsertPending(ctx, m); err != nil {
		return fmt.Errorf("reception: movimiento %s: %w", h.FolioSAP, err)
	}
	return nil
}

func (uc *UseCase) parseFecha(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range fechaLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return uc.now()
}
