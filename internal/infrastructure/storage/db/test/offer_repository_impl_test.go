package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
)

func TestOfferRepositoryImplementations(t *testing.T) {
	tests := []struct {
		name string
		test func(t *testing.T, repo repoManager)
	}{
		{"testAddAndGetOffer", testAddAndGetOffer},
		{"testGetActiveOffers", testGetActiveOffers},
		{"testUpdateOffer", testUpdateOffer},
		{"testUpdateOffer_rollback", testUpdateOfferRollback},
		{"testAddOffer_rollback", testAddOfferRollback},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			for _, repo := range newRepoManagers(t) {
				repo := repo
				t.Run(repo.Name, func(t *testing.T) {
					tt.test(t, repo)
				})
			}
		})
	}
}

func testAddAndGetOffer(t *testing.T, repo repoManager) {
	offerRepo := repo.DBManager.OfferRepository()

	for i := 1; i <= 3; i++ {
		offer := newOffer("maker", now+3600)
		id, err := offerRepo.AddOffer(ctx, offer)
		require.NoError(t, err)
		require.Equal(t, uint64(i), id)
		require.Equal(t, id, offer.ID)
	}

	offer, err := offerRepo.GetOffer(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, uint64(2), offer.ID)
	require.Equal(t, domain.Account("maker"), offer.Maker)
	require.True(t, offer.MakerAsset.Equal(tokenA))
	require.True(t, offer.TakerAsset.Equal(tokenB))
	require.Equal(t, uint64(100), offer.MakerAmount)
	require.Equal(t, uint64(50), offer.TakerAmount)
	require.Equal(t, uint64(10), offer.Stake)
	require.Equal(t, domain.OfferStatusOpen, offer.Status)

	offer, err = offerRepo.GetOffer(ctx, 4)
	require.ErrorIs(t, err, domain.ErrOfferNotFound)
	require.Nil(t, offer)

	ids, err := offerRepo.GetOfferIDsByAccount(ctx, "maker")
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2, 3}, ids)

	ids, err = offerRepo.GetOfferIDsByAccount(ctx, "nobody")
	require.NoError(t, err)
	require.Empty(t, ids)
}

func testGetActiveOffers(t *testing.T, repo repoManager) {
	offerRepo := repo.DBManager.OfferRepository()

	// Offers 1, 3 and 5 expire before the others.
	for i := 1; i <= 6; i++ {
		expiry := now + 7200
		if i%2 == 1 {
			expiry = now + 60
		}
		_, err := offerRepo.AddOffer(ctx, newOffer("maker", expiry))
		require.NoError(t, err)
	}
	err := offerRepo.UpdateOffer(
		ctx, 6, func(o *domain.Offer) (*domain.Offer, error) {
			o.Status = domain.OfferStatusCancelled
			return o, nil
		},
	)
	require.NoError(t, err)

	offers, total, err := offerRepo.GetActiveOffers(ctx, now, domain.NewPage(0, 10))
	require.NoError(t, err)
	require.Equal(t, uint64(5), total)
	require.Equal(t, []uint64{1, 2, 3, 4, 5}, offerIDs(offers))

	offers, total, err = offerRepo.GetActiveOffers(ctx, now, domain.NewPage(1, 2))
	require.NoError(t, err)
	require.Equal(t, uint64(5), total)
	require.Equal(t, []uint64{2, 3}, offerIDs(offers))

	// An offer is no longer active once its expiry is reached.
	offers, total, err = offerRepo.GetActiveOffers(ctx, now+60, domain.NewPage(0, 10))
	require.NoError(t, err)
	require.Equal(t, uint64(2), total)
	require.Equal(t, []uint64{2, 4}, offerIDs(offers))

	offers, total, err = offerRepo.GetActiveOffers(ctx, now, domain.NewPage(10, 10))
	require.NoError(t, err)
	require.Equal(t, uint64(5), total)
	require.Empty(t, offers)

	offers, total, err = offerRepo.GetActiveOffers(ctx, now, domain.NewPage(0, 0))
	require.NoError(t, err)
	require.Equal(t, uint64(5), total)
	require.Empty(t, offers)
}

func testUpdateOffer(t *testing.T, repo repoManager) {
	offerRepo := repo.DBManager.OfferRepository()

	_, err := repo.write(func(ctx context.Context) (interface{}, error) {
		if _, err := offerRepo.AddOffer(ctx, newOffer("maker", now+3600)); err != nil {
			return nil, err
		}
		return nil, offerRepo.UpdateOffer(
			ctx, 1, func(o *domain.Offer) (*domain.Offer, error) {
				o.Taker = "taker"
				o.Status = domain.OfferStatusSettled
				o.MakerFee = 1
				o.TakerFee = 2
				o.SettledAt = now + 10
				return o, nil
			},
		)
	})
	require.NoError(t, err)

	iOffer, err := repo.read(func(ctx context.Context) (interface{}, error) {
		return offerRepo.GetOffer(ctx, 1)
	})
	require.NoError(t, err)
	offer := iOffer.(*domain.Offer)
	require.Equal(t, domain.OfferStatusSettled, offer.Status)
	require.Equal(t, domain.Account("taker"), offer.Taker)
	require.Equal(t, uint64(1), offer.MakerFee)
	require.Equal(t, uint64(2), offer.TakerFee)
	require.Equal(t, now+10, offer.SettledAt)

	ids, err := offerRepo.GetOfferIDsByAccount(ctx, "taker")
	require.NoError(t, err)
	require.Equal(t, []uint64{1}, ids)

	err = offerRepo.UpdateOffer(
		ctx, 2, func(o *domain.Offer) (*domain.Offer, error) { return o, nil },
	)
	require.ErrorIs(t, err, domain.ErrOfferNotFound)
}

func testUpdateOfferRollback(t *testing.T, repo repoManager) {
	offerRepo := repo.DBManager.OfferRepository()
	_, err := offerRepo.AddOffer(ctx, newOffer("maker", now+3600))
	require.NoError(t, err)

	errSomethingWentWrong := errors.New("something went wrong")
	_, err = repo.write(func(ctx context.Context) (interface{}, error) {
		if err := offerRepo.UpdateOffer(
			ctx, 1, func(o *domain.Offer) (*domain.Offer, error) {
				o.Taker = "taker"
				o.Status = domain.OfferStatusSettled
				return o, nil
			},
		); err != nil {
			return nil, err
		}
		return nil, errSomethingWentWrong
	})
	require.ErrorIs(t, err, errSomethingWentWrong)

	offer, err := offerRepo.GetOffer(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, domain.OfferStatusOpen, offer.Status)
	require.True(t, offer.Taker.IsZero())

	ids, err := offerRepo.GetOfferIDsByAccount(ctx, "taker")
	require.NoError(t, err)
	require.Empty(t, ids)
}

func testAddOfferRollback(t *testing.T, repo repoManager) {
	offerRepo := repo.DBManager.OfferRepository()

	errSomethingWentWrong := errors.New("something went wrong")
	_, err := repo.write(func(ctx context.Context) (interface{}, error) {
		if _, err := offerRepo.AddOffer(ctx, newOffer("maker", now+3600)); err != nil {
			return nil, err
		}
		return nil, errSomethingWentWrong
	})
	require.ErrorIs(t, err, errSomethingWentWrong)

	_, err = offerRepo.GetOffer(ctx, 1)
	require.ErrorIs(t, err, domain.ErrOfferNotFound)

	// Ids stay dense.
	id, err := offerRepo.AddOffer(ctx, newOffer("maker", now+3600))
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)

	ids, err := offerRepo.GetOfferIDsByAccount(ctx, "maker")
	require.NoError(t, err)
	require.Equal(t, []uint64{1}, ids)
}

func offerIDs(offers []*domain.Offer) []uint64 {
	ids := make([]uint64, 0, len(offers))
	for _, o := range offers {
		ids = append(ids, o.ID)
	}
	return ids
}
