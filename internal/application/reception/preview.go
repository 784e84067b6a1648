package reception

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Recepciones-api/internal/domain"
	"github.com/jhoicas/Recepciones-api/internal/domain/entity"
	"github.com/jhoicas/Recepciones-api/internal/domain/reception"
)

const unknownOrigin = "Origen Desconocido"

// Preview vista conciliada de un traslado. ReadOnly indica que el movimiento ya
// fue procesado y las cantidades vienen de la bitácora registrada.
type Preview struct {
	FolioSAP       string
	OriginName     string
	MovementStatus string
	ReadOnly       bool
	Result         reception.Result
}

// StartReception abre la captura de un traslado: rechaza folios ya procesados y
// devuelve las líneas del ERP con recibido = esperado.
func (uc *UseCase) StartReception(ctx context.Context, actor entity.Actor, folioSAP string) (*Preview, error) {
	folioSAP = strings.TrimSpace(folioSAP)
	if folioSAP == "" {
		return nil, fmt.Errorf("%w: Falta el folio SAP.", domain.ErrInvalidInput)
	}
	if !actor.CanReceive() {
		return nil, domain.ErrForbidden
	}

	mov, err := uc.movements.GetByDocumentNumber(ctx, folioSAP)
	if err != nil {
		return nil, fmt.Errorf("reception: obtener movimiento: %w", err)
	}
	if mov != nil {
		if !mov.IsPending() {
			return nil, alreadyProcessed(folioSAP)
		}
		if !actor.HasStore(mov.DestinationStoreID) {
			return nil, domain.ErrForbidden
		}
	}

	lines, err := uc.source.GetTransferDetails(ctx, folioSAP)
	if err != nil {
		return nil, err
	}

	p := &Preview{
		FolioSAP:       folioSAP,
		OriginName:     uc.originName(ctx, mov),
		MovementStatus: entity.MovementStatusEnPreparacion,
		Result:         reception.Reconcile(lines, nil, false),
	}
	return p, nil
}

// Preview concilia las líneas del ERP con las cantidades capturadas. Si el movimiento
// ya no está en EN_PREPARACION se ignora lo capturado y se usa la bitácora registrada.
func (uc *UseCase) Preview(ctx context.Context, actor entity.Actor, folioSAP string, entered map[int]int64, cancel bool) (*Preview, error) {
	folioSAP = strings.TrimSpace(folioSAP)
	if folioSAP == "" {
		return nil, fmt.Errorf("%w: Falta el folio SAP.", domain.ErrInvalidInput)
	}
	for ln, v := range entered {
		if v < 0 {
			return nil, fmt.Errorf("%w: cantidad recibida negativa en la línea %d", domain.ErrInvalidInput, ln)
		}
	}

	mov, err := uc.movements.GetByDocumentNumber(ctx, folioSAP)
	if err != nil {
		return nil, fmt.Errorf("reception: obtener movimiento: %w", err)
	}
	if mov != nil && !actor.HasStore(mov.DestinationStoreID) {
		return nil, domain.ErrForbidden
	}

	lines, err := uc.source.GetTransferDetails(ctx, folioSAP)
	if err != nil {
		return nil, err
	}

	p := &Preview{
		FolioSAP:       folioSAP,
		OriginName:     uc.originName(ctx, mov),
		MovementStatus: entity.MovementStatusEnPreparacion,
	}
	if mov != nil && !mov.IsPending() {
		logs, err := uc.logs.ListByFolio(ctx, folioSAP)
		if err != nil {
			return nil, fmt.Errorf("reception: bitácora: %w", err)
		}
		overrides := make(map[int]int64, len(logs))
		for _, l := range logs {
			overrides[l.Linenum] = l.CantidadRecibida
		}
		p.ReadOnly = true
		p.MovementStatus = mov.StatusName
		p.Result = reception.Reconcile(lines, overrides, mov.StatusName == entity.MovementStatusCancelado)
		return p, nil
	}

	p.Result = reception.Reconcile(lines, entered, cancel)
	return p, nil
}

func (uc *UseCase) originName(ctx context.Context, mov *entity.Movement) string {
	if mov == nil || mov.OriginStoreID == "" {
		return unknownOrigin
	}
	store, err := uc.stores.GetByID(ctx, mov.OriginStoreID)
	if err != nil {
		uc.log.Warn().Err(err).Str("store_id", mov.OriginStoreID).Msg("no se pudo obtener la tienda origen")
		return unknownOrigin
	}
	if store == nil || store.Name == "" {
		return unknownOrigin
	}
	return store.Name
}

func alreadyProcessed(folioSAP string) error {
	return fmt.Errorf("%w: La recepción para el folio %s ya fue procesada.", domain.ErrAlreadyProcessed, folioSAP)
}
