package dbbadger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v3"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type profileRepositoryImpl struct {
	db *DbManager
}

// NewProfileRepositoryImpl initialize a badger implementation of the
// domain.ProfileRepository.
func NewProfileRepositoryImpl(db *DbManager) domain.ProfileRepository {
	return profileRepositoryImpl{db}
}

func (r profileRepositoryImpl) GetProfile(
	ctx context.Context, account domain.Account,
) (*domain.TraderProfile, error) {
	profile := domain.NewTraderProfile(account)
	if err := r.db.view(ctx, func(tx *badger.Txn) error {
		return r.getProfile(tx, account, profile)
	}); err != nil {
		return nil, err
	}
	return profile, nil
}

func (r profileRepositoryImpl) UpdateProfile(
	ctx context.Context,
	account domain.Account,
	updateFn func(p *domain.TraderProfile) (*domain.TraderProfile, error),
) error {
	return r.db.update(ctx, func(tx *badger.Txn) error {
		current := domain.NewTraderProfile(account)
		if err := r.getProfile(tx, account, current); err != nil {
			return err
		}

		updated, err := updateFn(current)
		if err != nil {
			return err
		}
		return r.db.Store.TxUpsert(tx, string(account), updated)
	})
}

func (r profileRepositoryImpl) getProfile(
	tx *badger.Txn, account domain.Account, profile *domain.TraderProfile,
) error {
	err := r.db.Store.TxGet(tx, string(account), profile)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil
	}
	return err
}
