package reception

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jhoicas/Recepciones-api/internal/domain"
	"github.com/jhoicas/Recepciones-api/internal/domain/entity"
	"github.com/jhoicas/Recepciones-api/internal/domain/reception"
	"github.com/jhoicas/Recepciones-api/internal/domain/repository"
)

// ConfirmLine línea capturada. CodeBars puede ir vacío.
type ConfirmLine struct {
	Linenum  int    `validate:"gte=0"`
	Articulo string `validate:"required"`
	Esperado int64  `validate:"gte=0"`
	Recibido int64  `validate:"gte=0"`
	CodeBars string
}

// ConfirmInput entrada de la confirmación de recepción.
type ConfirmInput struct {
	FolioSAP      string        `validate:"required"`
	Observaciones string        `validate:"max=2000"`
	Cancel        bool
	Lines         []ConfirmLine `validate:"required,min=1,unique=Linenum,dive"`
}

// ConfirmResult resultado de una confirmación aceptada y registrada.
type ConfirmResult struct {
	FolioSAP          string
	DocNum            string
	TransactionNumber string
	Status            reception.Classification
	MovementStatus    string
	Receipt           reception.Receipt
}

// Confirm envía la recepción al ERP y, solo si el ERP la acepta, registra en una
// transacción la bitácora del folio y el estatus final del movimiento.
// El folio queda bloqueado desde la validación de estatus hasta el registro local.
func (uc *UseCase) Confirm(ctx context.Context, actor entity.Actor, in ConfirmInput) (*ConfirmResult, error) {
	// ── 1. Validación de entrada ─────────────────────────────────────────────
	in.FolioSAP = strings.TrimSpace(in.FolioSAP)
	if err := uc.validateConfirm(in); err != nil {
		return nil, err
	}
	if !actor.CanReceive() {
		return nil, domain.ErrForbidden
	}

	// ── 2. Lock por folio ────────────────────────────────────────────────────
	release, ok, err := uc.locker.TryLock(ctx, lockKey(in.FolioSAP))
	if err != nil {
		return nil, fmt.Errorf("reception: lock de confirmación: %w", err)
	}
	if !ok {
		return nil, domain.ErrConfirmationInProgress
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			uc.log.Warn().Err(err).Str("folio", in.FolioSAP).Msg("no se pudo liberar el lock de confirmación")
		}
	}()

	// ── 3. Estatus y alcance ─────────────────────────────────────────────────
	mov, err := uc.movements.GetByDocumentNumber(ctx, in.FolioSAP)
	if err != nil {
		return nil, fmt.Errorf("reception: obtener movimiento: %w", err)
	}
	if mov != nil {
		if !mov.IsPending() {
			return nil, alreadyProcessed(in.FolioSAP)
		}
		if !actor.HasStore(mov.DestinationStoreID) {
			return nil, domain.ErrForbidden
		}
	}
	pending, err := uc.journal.Get(ctx, in.FolioSAP)
	if err != nil {
		return nil, fmt.Errorf("reception: consultar pendientes: %w", err)
	}
	if pending != nil {
		return nil, fmt.Errorf("%w: el ERP ya aceptó el folio %s (DocNum %s) y su registro local está pendiente",
			domain.ErrAlreadyProcessed, in.FolioSAP, pending.DocNum)
	}
	// Sin movimiento local la bitácora es la única marca de folio procesado.
	logged, err := uc.logs.LoggedFolios(ctx, []string{in.FolioSAP})
	if err != nil {
		return nil, fmt.Errorf("reception: consultar bitácora: %w", err)
	}
	if logged[in.FolioSAP] {
		return nil, alreadyProcessed(in.FolioSAP)
	}

	// ── 4. Cabecera vigente del ERP ──────────────────────────────────────────
	header, err := uc.source.GetTransferHeader(ctx, in.FolioSAP)
	if err != nil {
		return nil, err
	}
	if mov == nil && !actor.HasStore(header.AlmacenDestino) {
		return nil, domain.ErrForbidden
	}

	// ── 5. Payload ───────────────────────────────────────────────────────────
	counted := make([]reception.CountedLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		counted = append(counted, reception.CountedLine{
			Linenum:  l.Linenum,
			Articulo: l.Articulo,
			Esperado: l.Esperado,
			Recibido: l.Recibido,
			CodeBars: l.CodeBars,
		})
	}
	receipt := reception.BuildReceipt(counted, in.Cancel)
	txNumber := "RC-" + uuid.New().String()

	// ── 6. Envío al ERP (antes de cualquier escritura local) ─────────────────
	docNum, err := uc.source.ConfirmReceipt(ctx, reception.Confirmation{
		Header:            *header,
		Memo:              in.Observaciones,
		TransactionNumber: txNumber,
		Receipt:           receipt,
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("folio", in.FolioSAP).Str("transaction", txNumber).Msg("el ERP no aceptó la confirmación")
		return nil, err
	}

	// ── 7. Registro local ────────────────────────────────────────────────────
	logs := receipt.ReceptionLogs(in.FolioSAP, in.Observaciones, uc.now())
	for _, l := range logs {
		l.ID = uc.newID()
	}
	pc := PendingCommit{
		FolioSAP:          in.FolioSAP,
		DocNum:            docNum,
		TransactionNumber: txNumber,
		MovementStatus:    receipt.Status.MovementStatus(),
		Logs:              logs,
		CreatedAt:         uc.now(),
	}

	// La confirmación ya existe en el ERP: el registro local no depende de la petición.
	localCtx := context.WithoutCancel(ctx)
	if err := uc.journal.Save(localCtx, pc); err != nil {
		uc.log.Error().Err(err).Str("folio", pc.FolioSAP).Str("doc_num", docNum).Msg("no se pudo guardar la confirmación pendiente")
	}
	if err := uc.commit(localCtx, pc); err != nil {
		uc.log.Error().Err(err).
			Str("folio", pc.FolioSAP).
			Str("doc_num", docNum).
			Str("transaction", txNumber).
			Msg("el ERP aceptó la recepción pero falló el registro local; queda pendiente de replay")
		return nil, fmt.Errorf("%w: folio %s, DocNum %s: %w", domain.ErrPersistence, pc.FolioSAP, docNum, err)
	}
	if err := uc.journal.Delete(localCtx, pc.FolioSAP); err != nil {
		uc.log.Warn().Err(err).Str("folio", pc.FolioSAP).Msg("no se pudo borrar la confirmación pendiente")
	}

	uc.log.Info().
		Str("folio", pc.FolioSAP).
		Str("doc_num", docNum).
		Str("status", string(receipt.Status)).
		Str("user_id", actor.UserID).
		Msg("recepción confirmada")

	return &ConfirmResult{
		FolioSAP:          pc.FolioSAP,
		DocNum:            docNum,
		TransactionNumber: txNumber,
		Status:            receipt.Status,
		MovementStatus:    pc.MovementStatus,
		Receipt:           receipt,
	}, nil
}

// commit reemplaza la bitácora del folio y fija el estatus final del movimiento.
// Es idempotente: repetirlo con la misma entrada deja el mismo estado.
func (uc *UseCase) commit(ctx context.Context, pc PendingCommit) error {
	return uc.tx.RunReception(ctx, func(
		movements repository.MovementRepository,
		logs repository.ReceptionLogRepository,
	) error {
		if err := logs.DeleteByFolio(ctx, pc.FolioSAP); err != nil {
			return err
		}
		if err := logs.CreateMany(ctx, pc.Logs); err != nil {
			return err
		}
		mov, err := movements.GetByDocumentNumberForUpdate(ctx, pc.FolioSAP)
		if err != nil {
			return err
		}
		if mov == nil {
			uc.log.Warn().Str("folio", pc.FolioSAP).Msg("folio sin movimiento registrado; solo se guarda la bitácora")
			return nil
		}
		return movements.UpdateStatus(ctx, mov.ID, pc.MovementStatus)
	})
}

func (uc *UseCase) validateConfirm(in ConfirmInput) error {
	err := uc.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	fe := verrs[0]
	switch {
	case fe.StructField() == "FolioSAP":
		return fmt.Errorf("%w: Falta el folio SAP.", domain.ErrInvalidInput)
	case fe.StructField() == "Lines" && fe.Tag() == "unique":
		return fmt.Errorf("%w: hay números de línea repetidos", domain.ErrInvalidInput)
	case fe.StructField() == "Lines":
		return fmt.Errorf("%w: No se enviaron artículos.", domain.ErrInvalidInput)
	default:
		return fmt.Errorf("%w: %s inválido (%s)", domain.ErrInvalidInput, fe.Namespace(), fe.Tag())
	}
}

func lockKey(folioSAP string) string {
	return "reception:confirm:" + folioSAP
}
