package inmemory

import (
	"context"

	"github.com/tdex-network/tdex-otc/internal/core/domain"
)

type profileRepositoryImpl struct {
	store *store
}

// NewProfileRepositoryImpl returns a new inmemory ProfileRepository
// implementation.
func NewProfileRepositoryImpl(store *store) domain.ProfileRepository {
	return &profileRepositoryImpl{store}
}

func (r *profileRepositoryImpl) GetProfile(
	ctx context.Context, account domain.Account,
) (*domain.TraderProfile, error) {
	profile := domain.NewTraderProfile(account)
	err := r.store.view(ctx, func(rd reader) error {
		if p, ok := rd.profile(account); ok {
			*profile = p
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *profileRepositoryImpl) UpdateProfile(
	ctx context.Context,
	account domain.Account,
	updateFn func(p *domain.TraderProfile) (*domain.TraderProfile, error),
) error {
	return r.store.update(ctx, func(tx *memoryTx) error {
		current, ok := tx.profile(account)
		if !ok {
			current = *domain.NewTraderProfile(account)
		}

		updated, err := updateFn(&current)
		if err != nil {
			return err
		}
		tx.profiles[account] = *updated
		return nil
	})
}
