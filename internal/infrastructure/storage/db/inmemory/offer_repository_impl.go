package inmemory

import (
	"context"

	"github.com/tdex-network/tdex-otc/internal/core/domain"
)

type offerRepositoryImpl struct {
	store *store
}

// NewOfferRepositoryImpl returns a new inmemory OfferRepository implementation.
func NewOfferRepositoryImpl(store *store) domain.OfferRepository {
	return &offerRepositoryImpl{store}
}

func (r *offerRepositoryImpl) AddOffer(
	ctx context.Context, offer *domain.Offer,
) (uint64, error) {
	var id uint64
	err := r.store.update(ctx, func(tx *memoryTx) error {
		id = tx.addOffer(*offer)
		return nil
	})
	if err != nil {
		return 0, err
	}
	offer.ID = id
	return id, nil
}

func (r *offerRepositoryImpl) GetOffer(
	ctx context.Context, id uint64,
) (*domain.Offer, error) {
	var offer domain.Offer
	err := r.store.view(ctx, func(rd reader) error {
		o, ok := rd.offer(id)
		if !ok {
			return domain.ErrOfferNotFound
		}
		offer = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *offerRepositoryImpl) GetActiveOffers(
	ctx context.Context, now int64, page domain.Page,
) ([]*domain.Offer, uint64, error) {
	active := make([]domain.Offer, 0)
	err := r.store.view(ctx, func(rd reader) error {
		last := rd.lastOfferID()
		for id := uint64(1); id <= last; id++ {
			if o, ok := rd.offer(id); ok && o.IsActive(now) {
				active = append(active, o)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	total := uint64(len(active))
	start, end := page.Bounds(total)
	offers := make([]*domain.Offer, 0, end-start)
	for i := start; i < end; i++ {
		o := active[i]
		offers = append(offers, &o)
	}
	return offers, total, nil
}

func (r *offerRepositoryImpl) GetOfferIDsByAccount(
	ctx context.Context, account domain.Account,
) ([]uint64, error) {
	var ids []uint64
	err := r.store.view(ctx, func(rd reader) error {
		ids = rd.accountOffers(account)
		return nil
	})
	return ids, err
}

func (r *offerRepositoryImpl) UpdateOffer(
	ctx context.Context,
	id uint64,
	updateFn func(o *domain.Offer) (*domain.Offer, error),
) error {
	return r.store.update(ctx, func(tx *memoryTx) error {
		current, ok := tx.offer(id)
		if !ok {
			return domain.ErrOfferNotFound
		}
		hadTaker := !current.Taker.IsZero()

		updated, err := updateFn(&current)
		if err != nil {
			return err
		}

		if !hadTaker && !updated.Taker.IsZero() {
			tx.indexOffer(updated.Taker, id)
		}
		tx.offers[id] = *updated
		return nil
	})
}
