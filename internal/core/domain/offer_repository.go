package domain

import "context"

// OfferRepository is the abstraction for any kind of database intended to
// persist Offers. Offers are never deleted.
type OfferRepository interface {
	// AddOffer assigns the next monotonic id to the given offer, persists it
	// and indexes it under its maker. The id is returned and set on the offer.
	AddOffer(ctx context.Context, offer *Offer) (uint64, error)
	// GetOffer returns the offer with the given id, or ErrOfferNotFound.
	GetOffer(ctx context.Context, id uint64) (*Offer, error)
	// GetActiveOffers returns the given page of Open offers not yet expired at
	// the given time, in ascending id order, along with the total count of
	// such offers.
	GetActiveOffers(
		ctx context.Context, now int64, page Page,
	) ([]*Offer, uint64, error)
	// GetOfferIDsByAccount returns the ids of all the offers where the account
	// was either maker or taker, in insertion order.
	GetOfferIDsByAccount(ctx context.Context, account Account) ([]uint64, error)
	// UpdateOffer allows to commit multiple changes to the same offer in a
	// transactional way. The offer is indexed under its taker once set.
	UpdateOffer(
		ctx context.Context,
		id uint64,
		updateFn func(o *Offer) (*Offer, error),
	) error
}
