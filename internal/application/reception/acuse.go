package reception

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Recepciones-api/internal/domain"
	"github.com/jhoicas/Recepciones-api/internal/domain/entity"
	"github.com/jhoicas/Recepciones-api/internal/domain/reception"
)

// Acuse datos del acuse de recepción de un folio ya procesado.
type Acuse struct {
	FolioSAP        string
	OriginName      string
	DestinationName string
	MovementStatus  string
	Observaciones   string
	ProcessedAt     time.Time
	GeneratedAt     time.Time
	Result          reception.Result
}

// DownloadAcuse genera el PDF del acuse a partir de la bitácora registrada.
// Solo aplica a folios que ya salieron de EN_PREPARACION.
func (uc *UseCase) DownloadAcuse(ctx context.Context, actor entity.Actor, folioSAP string) ([]byte, string, error) {
	folioSAP = strings.TrimSpace(folioSAP)
	if folioSAP == "" {
		return nil, "", fmt.Errorf("%w: Falta el folio SAP.", domain.ErrInvalidInput)
	}
	if uc.pdf == nil {
		return nil, "", fmt.Errorf("reception: generador de PDF no configurado")
	}

	mov, err := uc.movements.GetByDocumentNumber(ctx, folioSAP)
	if err != nil {
		return nil, "", fmt.Errorf("reception: obtener movimiento: %w", err)
	}
	if mov == nil {
		return nil, "", domain.ErrNotFound
	}
	if !actor.HasStore(mov.DestinationStoreID) {
		return nil, "", domain.ErrForbidden
	}
	if mov.IsPending() {
		return nil, "", fmt.Errorf("%w: el folio %s aún no se ha recibido", domain.ErrInvalidInput, folioSAP)
	}

	logs, err := uc.logs.ListByFolio(ctx, folioSAP)
	if err != nil {
		return nil, "", fmt.Errorf("reception: bitácora: %w", err)
	}

	acuse := Acuse{
		FolioSAP:        folioSAP,
		OriginName:      uc.originName(ctx, mov),
		DestinationName: uc.storeName(ctx, mov.DestinationStoreID),
		MovementStatus:  mov.StatusName,
		ProcessedAt:     mov.UpdatedAt,
		GeneratedAt:     uc.now(),
		Result:          resultFromLogs(logs, mov.StatusName == entity.MovementStatusCancelado),
	}
	if len(logs) > 0 {
		acuse.Observaciones = logs[0].Observaciones
	}

	pdf, err := uc.pdf.GenerateAcusePDF(ctx, acuse)
	if err != nil {
		return nil, "", fmt.Errorf("reception: generar acuse: %w", err)
	}
	return pdf, fmt.Sprintf("acuse-recepcion-%s.pdf", folioSAP), nil
}

// resultFromLogs reconstruye la conciliación con la bitácora como única fuente.
func resultFromLogs(logs []*entity.ReceptionLog, cancelled bool) reception.Result {
	lines := make([]reception.ExternalLine, 0, len(logs))
	overrides := make(map[int]int64, len(logs))
	for _, l := range logs {
		lines = append(lines, reception.ExternalLine{
			Linenum:  l.Linenum,
			Articulo: l.Articulo,
			Cantidad: l.CantidadEsperada,
		})
		overrides[l.Linenum] = l.CantidadRecibida
	}
	return reception.Reconcile(lines, overrides, cancelled)
}

func (uc *UseCase) storeName(ctx context.Context, id string) string {
	if id == "" {
		return ""
	}
	store, err := uc.stores.GetByID(ctx, id)
	if err != nil || store == nil {
		return "Tienda " + id
	}
	return store.Name
}
