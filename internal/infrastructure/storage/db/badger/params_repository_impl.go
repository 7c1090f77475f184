package dbbadger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v3"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const paramsKey = "params"

type paramsRepositoryImpl struct {
	db *DbManager
}

// NewParamsRepositoryImpl initialize a badger implementation of the
// domain.ParamsRepository.
func NewParamsRepositoryImpl(db *DbManager) domain.ParamsRepository {
	return paramsRepositoryImpl{db}
}

func (r paramsRepositoryImpl) InitParams(
	ctx context.Context, params *domain.Params,
) (*domain.Params, error) {
	var stored domain.Params
	if err := r.db.update(ctx, func(tx *badger.Txn) error {
		err := r.db.Store.TxGet(tx, paramsKey, &stored)
		if err == nil {
			return nil
		}
		if !errors.Is(err, badgerhold.ErrNotFound) {
			return err
		}
		stored = *params
		return r.db.Store.TxInsert(tx, paramsKey, &stored)
	}); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r paramsRepositoryImpl) GetParams(
	ctx context.Context,
) (*domain.Params, error) {
	var params domain.Params
	if err := r.db.view(ctx, func(tx *badger.Txn) error {
		return r.getParams(tx, &params)
	}); err != nil {
		return nil, err
	}
	return &params, nil
}

func (r paramsRepositoryImpl) UpdateParams(
	ctx context.Context, updateFn func(p *domain.Params) (*domain.Params, error),
) error {
	return r.db.update(ctx, func(tx *badger.Txn) error {
		var current domain.Params
		if err := r.getParams(tx, &current); err != nil {
			return err
		}

		updated, err := updateFn(&current)
		if err != nil {
			return err
		}
		return r.db.Store.TxUpdate(tx, paramsKey, updated)
	})
}

func (r paramsRepositoryImpl) getParams(
	tx *badger.Txn, params *domain.Params,
) error {
	if err := r.db.Store.TxGet(tx, paramsKey, params); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return domain.ErrParamsNotFound
		}
		return err
	}
	return nil
}
