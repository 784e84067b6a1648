package reception

import (
	"context"
	"fmt"

	"github.com/jhoicas/Recepciones-api/internal/domain/entity"
	"github.com/jhoicas/Recepciones-api/internal/domain/repository"
)

// ListProcessed traslados internos ya conciliados. ADMINISTRADOR ve todas las
// tiendas; el resto solo las suyas.
func (uc *UseCase) ListProcessed(ctx context.Context, actor entity.Actor) ([]*entity.ProcessedMovement, error) {
	filter := repository.ProcessedFilter{
		AllStores:           actor.IsAdmin(),
		DestinationStoreIDs: actor.StoreIDs,
		TypeName:            entity.MovementTypeTrasladoInterno,
		Limit:               ProcessedLimit,
	}
	if !filter.AllStores && len(filter.DestinationStoreIDs) == 0 {
		return []*entity.ProcessedMovement{}, nil
	}
	list, err := uc.movements.ListProcessed(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("reception: listar procesados: %w", err)
	}
	return list, nil
}
