package inmemory

import (
	"context"

	"github.com/tdex-network/tdex-otc/internal/core/domain"
)

type paramsRepositoryImpl struct {
	store *store
}

// NewParamsRepositoryImpl returns a new inmemory ParamsRepository
// implementation.
func NewParamsRepositoryImpl(store *store) domain.ParamsRepository {
	return &paramsRepositoryImpl{store}
}

func (r *paramsRepositoryImpl) InitParams(
	ctx context.Context, params *domain.Params,
) (*domain.Params, error) {
	var stored domain.Params
	err := r.store.update(ctx, func(tx *memoryTx) error {
		if p, ok := tx.params(); ok {
			stored = p
			return nil
		}
		record := *params
		tx.paramsRecord = &record
		stored = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *paramsRepositoryImpl) GetParams(
	ctx context.Context,
) (*domain.Params, error) {
	var params domain.Params
	err := r.store.view(ctx, func(rd reader) error {
		p, ok := rd.params()
		if !ok {
			return domain.ErrParamsNotFound
		}
		params = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &params, nil
}

func (r *paramsRepositoryImpl) UpdateParams(
	ctx context.Context, updateFn func(p *domain.Params) (*domain.Params, error),
) error {
	return r.store.update(ctx, func(tx *memoryTx) error {
		current, ok := tx.params()
		if !ok {
			return domain.ErrParamsNotFound
		}

		updated, err := updateFn(&current)
		if err != nil {
			return err
		}
		params := *updated
		tx.paramsRecord = &params
		return nil
	})
}
