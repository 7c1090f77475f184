package inmemory

import (
	"context"

	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/tdex-network/tdex-otc/internal/core/ports"
)

type RepoManager struct {
	store *store

	offerRepository   domain.OfferRepository
	profileRepository domain.ProfileRepository
	paramsRepository  domain.ParamsRepository
}

// NewRepoManager returns a RepoManager keeping everything in memory. Write
// transactions are serialized.
func NewRepoManager() ports.RepoManager {
	store := newStore()

	return &RepoManager{
		store:             store,
		offerRepository:   NewOfferRepositoryImpl(store),
		profileRepository: NewProfileRepositoryImpl(store),
		paramsRepository:  NewParamsRepositoryImpl(store),
	}
}

func (d *RepoManager) OfferRepository() domain.OfferRepository {
	return d.offerRepository
}

func (d *RepoManager) ProfileRepository() domain.ProfileRepository {
	return d.profileRepository
}

func (d *RepoManager) ParamsRepository() domain.ParamsRepository {
	return d.paramsRepository
}

func (d *RepoManager) RunTransaction(
	ctx context.Context,
	readOnly bool,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	return d.store.runTransaction(ctx, readOnly, handler)
}

func (d *RepoManager) Close() {}
