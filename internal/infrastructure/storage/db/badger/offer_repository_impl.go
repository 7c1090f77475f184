package dbbadger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v3"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const offerCounterKey = "offer_counter"

type offerCounter struct {
	LastID uint64
}

// accountOffers is the index of the offers of an account, in insertion
// order.
type accountOffers struct {
	Account  domain.Account
	OfferIDs []uint64
}

type offerRepositoryImpl struct {
	db *DbManager
}

// NewOfferRepositoryImpl initialize a badger implementation of the
// domain.OfferRepository.
func NewOfferRepositoryImpl(db *DbManager) domain.OfferRepository {
	return offerRepositoryImpl{db}
}

func (r offerRepositoryImpl) AddOffer(
	ctx context.Context, offer *domain.Offer,
) (uint64, error) {
	var id uint64
	if err := r.db.update(ctx, func(tx *badger.Txn) error {
		var counter offerCounter
		if err := r.db.Store.TxGet(tx, offerCounterKey, &counter); err != nil {
			if !errors.Is(err, badgerhold.ErrNotFound) {
				return err
			}
		}
		counter.LastID++

		o := *offer
		o.ID = counter.LastID
		if err := r.db.Store.TxInsert(tx, o.ID, &o); err != nil {
			return err
		}
		if err := r.db.Store.TxUpsert(tx, offerCounterKey, &counter); err != nil {
			return err
		}
		if err := r.indexOffer(tx, o.Maker, o.ID); err != nil {
			return err
		}
		id = o.ID
		return nil
	}); err != nil {
		return 0, err
	}

	offer.ID = id
	return id, nil
}

func (r offerRepositoryImpl) GetOffer(
	ctx context.Context, id uint64,
) (*domain.Offer, error) {
	var offer domain.Offer
	if err := r.db.view(ctx, func(tx *badger.Txn) error {
		return r.getOffer(tx, id, &offer)
	}); err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r offerRepositoryImpl) GetActiveOffers(
	ctx context.Context, now int64, page domain.Page,
) ([]*domain.Offer, uint64, error) {
	var offers []domain.Offer
	var total uint64

	activeQuery := func() *badgerhold.Query {
		return badgerhold.
			Where("Status").Eq(domain.OfferStatusOpen).
			And("Expiry").Gt(now)
	}

	if err := r.db.view(ctx, func(tx *badger.Txn) error {
		count, err := r.db.Store.TxCount(tx, &domain.Offer{}, activeQuery())
		if err != nil {
			return err
		}
		total = count

		start, end := page.Bounds(total)
		if start == end {
			return nil
		}
		return r.db.Store.TxFind(
			tx, &offers,
			activeQuery().SortBy("ID").Skip(int(start)).Limit(int(end-start)),
		)
	}); err != nil {
		return nil, 0, err
	}

	res := make([]*domain.Offer, 0, len(offers))
	for i := range offers {
		res = append(res, &offers[i])
	}
	return res, total, nil
}

func (r offerRepositoryImpl) GetOfferIDsByAccount(
	ctx context.Context, account domain.Account,
) ([]uint64, error) {
	var index accountOffers
	if err := r.db.view(ctx, func(tx *badger.Txn) error {
		err := r.db.Store.TxGet(tx, string(account), &index)
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil
		}
		return err
	}); err != nil {
		return nil, err
	}

	return append([]uint64{}, index.OfferIDs...), nil
}

func (r offerRepositoryImpl) UpdateOffer(
	ctx context.Context,
	id uint64,
	updateFn func(o *domain.Offer) (*domain.Offer, error),
) error {
	return r.db.update(ctx, func(tx *badger.Txn) error {
		var current domain.Offer
		if err := r.getOffer(tx, id, &current); err != nil {
			return err
		}
		hadTaker := !current.Taker.IsZero()

		updated, err := updateFn(&current)
		if err != nil {
			return err
		}

		if err := r.db.Store.TxUpdate(tx, id, updated); err != nil {
			return err
		}
		if !hadTaker && !updated.Taker.IsZero() {
			return r.indexOffer(tx, updated.Taker, id)
		}
		return nil
	})
}

func (r offerRepositoryImpl) getOffer(
	tx *badger.Txn, id uint64, offer *domain.Offer,
) error {
	if err := r.db.Store.TxGet(tx, id, offer); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return domain.ErrOfferNotFound
		}
		return err
	}
	return nil
}

func (r offerRepositoryImpl) indexOffer(
	tx *badger.Txn, account domain.Account, id uint64,
) error {
	index := accountOffers{Account: account}
	if err := r.db.Store.TxGet(tx, string(account), &index); err != nil {
		if !errors.Is(err, badgerhold.ErrNotFound) {
			return err
		}
	}
	index.OfferIDs = append(index.OfferIDs, id)
	return r.db.Store.TxUpsert(tx, string(account), &index)
}
