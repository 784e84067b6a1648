package reception

import (
	"context"
	"fmt"
)

// ReplayReport resultado de una pasada de replay.
type ReplayReport struct {
	Pending  int
	Replayed int
	Failed   int
}

// Replay reintenta el registro local de las confirmaciones que el ERP ya aceptó.
// Una entrada se borra solo cuando su registro se confirma. Cada folio se procesa
// bajo el mismo lock que Confirm.
func (uc *UseCase) Replay(ctx context.Context) (ReplayReport, error) {
	pending, err := uc.journal.List(ctx)
	if err != nil {
		return ReplayReport{}, fmt.Errorf("reception: listar pendientes: %w", err)
	}
	report := ReplayReport{Pending: len(pending)}

	for _, pc := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		release, ok, err := uc.locker.TryLock(ctx, lockKey(pc.FolioSAP))
		if err != nil || !ok {
			// Otro proceso lo tiene; se reintenta en la siguiente pasada.
			report.Failed++
			continue
		}
		err = uc.commit(ctx, pc)
		if err == nil {
			err = uc.journal.Delete(ctx, pc.FolioSAP)
		}
		if relErr := release(context.WithoutCancel(ctx)); relErr != nil {
			uc.log.Warn().Err(relErr).Str("folio", pc.FolioSAP).Msg("no se pudo liberar el lock de replay")
		}
		if err != nil {
			report.Failed++
			uc.log.Error().Err(err).Str("folio", pc.FolioSAP).Str("doc_num", pc.DocNum).Msg("replay de confirmación fallido")
			continue
		}
		report.Replayed++
		uc.log.Info().Str("folio", pc.FolioSAP).Str("doc_num", pc.DocNum).Msg("confirmación pendiente registrada")
	}
	return report, nil
}
