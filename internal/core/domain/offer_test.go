package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
)

const (
	now         = int64(1_700_000_000)
	minLifetime = time.Hour
	cooldown    = 30 * time.Minute
	maker       = domain.Account("maker")
	taker       = domain.Account("taker")
)

var (
	tokenA = domain.FungibleAsset("AAA")
	tokenB = domain.FungibleAsset("BBB")
	native = domain.NativeAsset()
)

func TestNewOffer(t *testing.T) {
	tests := []struct {
		name  string
		terms domain.OfferTerms
	}{
		{
			name:  "public_token_for_token",
			terms: newTerms(tokenA, 100, tokenB, 50),
		},
		{
			name:  "native_for_token",
			terms: newTerms(native, 100, tokenB, 50),
		},
		{
			name: "private_token_for_native",
			terms: func() domain.OfferTerms {
				terms := newTerms(tokenA, 100, native, 50)
				terms.AllowedTaker = taker
				return terms
			}(),
		},
		{
			name: "expiry_at_min_lifetime",
			terms: func() domain.OfferTerms {
				terms := newTerms(tokenA, 100, tokenB, 50)
				terms.Expiry = now + int64(minLifetime/time.Second)
				return terms
			}(),
		},
	}

	for i := range tests {
		tt := tests[i]

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			offer, err := domain.NewOffer(maker, tt.terms, 5, now, minLifetime)
			require.NoError(t, err)
			require.NotNil(t, offer)
			require.True(t, offer.IsOpen())
			require.True(t, offer.IsActive(now))
			require.False(t, offer.IsCancelRequested())
			require.Equal(t, uint64(5), offer.Stake)
			require.Equal(t, now, offer.CreatedAt)
			require.Zero(t, offer.ID)
			require.True(t, offer.Taker.IsZero())
		})
	}
}

func TestFailingNewOffer(t *testing.T) {
	tests := []struct {
		name          string
		maker         domain.Account
		terms         domain.OfferTerms
		expectedError error
	}{
		{
			name:          "zero_maker_amount",
			maker:         maker,
			terms:         newTerms(tokenA, 0, tokenB, 50),
			expectedError: domain.ErrOfferInvalidMakerAmount,
		},
		{
			name:          "zero_taker_amount",
			maker:         maker,
			terms:         newTerms(tokenA, 100, tokenB, 0),
			expectedError: domain.ErrOfferInvalidTakerAmount,
		},
		{
			name:          "same_assets",
			maker:         maker,
			terms:         newTerms(tokenA, 100, tokenA, 50),
			expectedError: domain.ErrOfferSameAssets,
		},
		{
			name:          "both_native",
			maker:         maker,
			terms:         newTerms(native, 100, native, 50),
			expectedError: domain.ErrOfferSameAssets,
		},
		{
			name:          "undefined_asset",
			maker:         maker,
			terms:         newTerms(domain.Asset{}, 100, tokenB, 50),
			expectedError: domain.ErrAssetInvalid,
		},
		{
			name:          "empty_token_id",
			maker:         maker,
			terms:         newTerms(tokenA, 100, domain.FungibleAsset(""), 50),
			expectedError: domain.ErrAssetInvalid,
		},
		{
			name:  "expiry_in_the_past",
			maker: maker,
			terms: func() domain.OfferTerms {
				terms := newTerms(tokenA, 100, tokenB, 50)
				terms.Expiry = now - 1
				return terms
			}(),
			expectedError: domain.ErrOfferExpiryTooSoon,
		},
		{
			name:  "expiry_too_soon",
			maker: maker,
			terms: func() domain.OfferTerms {
				terms := newTerms(tokenA, 100, tokenB, 50)
				terms.Expiry = now + int64(minLifetime/time.Second) - 1
				return terms
			}(),
			expectedError: domain.ErrOfferExpiryTooSoon,
		},
		{
			name:  "maker_as_allowed_taker",
			maker: maker,
			terms: func() domain.OfferTerms {
				terms := newTerms(tokenA, 100, tokenB, 50)
				terms.AllowedTaker = maker
				return terms
			}(),
			expectedError: domain.ErrOfferInvalidAllowedTaker,
		},
		{
			name:          "empty_maker",
			maker:         "",
			terms:         newTerms(tokenA, 100, tokenB, 50),
			expectedError: domain.ErrAccountInvalid,
		},
	}

	for i := range tests {
		tt := tests[i]

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			offer, err := domain.NewOffer(tt.maker, tt.terms, 5, now, minLifetime)
			require.ErrorIs(t, err, tt.expectedError)
			require.Nil(t, offer)
		})
	}
}

func TestOfferAccept(t *testing.T) {
	t.Run("example_scenario", func(t *testing.T) {
		offer := newOpenOffer(t, newTerms(tokenA, 100, tokenB, 50))

		settlement, err := offer.Accept(taker, now+10, 30)
		require.NoError(t, err)
		require.Equal(t, domain.Settlement{
			MakerFee:      0,
			TakerFee:      0,
			MakerReceives: 50,
			TakerReceives: 100,
		}, *settlement)
		require.True(t, offer.IsSettled())
		require.Equal(t, taker, offer.Taker)
		require.Equal(t, now+10, offer.SettledAt)
		require.False(t, offer.IsActive(now+10))
	})

	t.Run("fees_truncate", func(t *testing.T) {
		offer := newOpenOffer(t, newTerms(tokenA, 3333, tokenB, 10000))

		settlement, err := offer.Accept(taker, now, 25)
		require.NoError(t, err)
		require.Equal(t, uint64(25), settlement.MakerFee)
		require.Equal(t, uint64(8), settlement.TakerFee)
		require.Equal(t, uint64(9975), settlement.MakerReceives)
		require.Equal(t, uint64(3325), settlement.TakerReceives)
		require.Equal(t, settlement.MakerFee, offer.MakerFee)
		require.Equal(t, settlement.TakerFee, offer.TakerFee)
	})

	t.Run("voids_pending_cancellation", func(t *testing.T) {
		offer := newOpenOffer(t, newTerms(tokenA, 100, tokenB, 50))
		require.NoError(t, offer.RequestCancel(maker, now))

		_, err := offer.Accept(taker, now+int64(cooldown/time.Second)-1, 30)
		require.NoError(t, err)
		require.False(t, offer.IsCancelRequested())

		err = offer.FinalizeCancel(maker, now+int64(cooldown/time.Second), cooldown)
		require.ErrorIs(t, err, domain.ErrOfferNotOpen)
	})

	t.Run("private_offer", func(t *testing.T) {
		terms := newTerms(tokenA, 100, tokenB, 50)
		terms.AllowedTaker = taker
		offer := newOpenOffer(t, terms)

		_, err := offer.Accept(taker, now, 30)
		require.NoError(t, err)
	})
}

func TestFailingOfferAccept(t *testing.T) {
	tests := []struct {
		name          string
		offer         func(t *testing.T) *domain.Offer
		taker         domain.Account
		now           int64
		bps           uint64
		expectedError error
	}{
		{
			name:          "self_accept",
			offer:         func(t *testing.T) *domain.Offer { return newOpenOffer(t, newTerms(tokenA, 100, tokenB, 50)) },
			taker:         maker,
			now:           now,
			expectedError: domain.ErrOfferSelfAccept,
		},
		{
			name:          "expired",
			offer:         func(t *testing.T) *domain.Offer { return newOpenOffer(t, newTerms(tokenA, 100, tokenB, 50)) },
			taker:         taker,
			now:           now + 2*int64(minLifetime/time.Second),
			expectedError: domain.ErrOfferExpired,
		},
		{
			name: "not_allowed_taker",
			offer: func(t *testing.T) *domain.Offer {
				terms := newTerms(tokenA, 100, tokenB, 50)
				terms.AllowedTaker = "someone"
				return newOpenOffer(t, terms)
			},
			taker:         taker,
			now:           now,
			expectedError: domain.ErrOfferTakerNotAllowed,
		},
		{
			name: "already_settled",
			offer: func(t *testing.T) *domain.Offer {
				offer := newOpenOffer(t, newTerms(tokenA, 100, tokenB, 50))
				_, err := offer.Accept("other", now, 0)
				require.NoError(t, err)
				return offer
			},
			taker:         taker,
			now:           now,
			expectedError: domain.ErrOfferNotOpen,
		},
		{
			name:          "fee_above_denominator",
			offer:         func(t *testing.T) *domain.Offer { return newOpenOffer(t, newTerms(tokenA, 100, tokenB, 50)) },
			taker:         taker,
			now:           now,
			bps:           10001,
			expectedError: domain.ErrInvariantViolation,
		},
	}

	for i := range tests {
		tt := tests[i]

		t.Run(tt.name, func(t *testing.T) {
			offer := tt.offer(t)
			status := offer.Status

			settlement, err := offer.Accept(tt.taker, tt.now, tt.bps)
			require.ErrorIs(t, err, tt.expectedError)
			require.Nil(t, settlement)
			require.Equal(t, status, offer.Status)
		})
	}
}

func TestOfferCancel(t *testing.T) {
	offer := newOpenOffer(t, newTerms(tokenA, 100, tokenB, 50))
	requestedAt := now + 100
	deadline := requestedAt + int64(cooldown/time.Second)

	err := offer.FinalizeCancel(maker, requestedAt, cooldown)
	require.ErrorIs(t, err, domain.ErrOfferCancelNotRequested)

	err = offer.RequestCancel(taker, requestedAt)
	require.ErrorIs(t, err, domain.ErrOfferNotMaker)

	require.NoError(t, offer.RequestCancel(maker, requestedAt))
	require.Equal(t, deadline, offer.CancelDeadline(cooldown))
	require.True(t, offer.IsActive(requestedAt))

	err = offer.RequestCancel(maker, requestedAt+1)
	require.ErrorIs(t, err, domain.ErrOfferCancelAlreadyRequested)

	err = offer.FinalizeCancel(maker, deadline-1, cooldown)
	require.ErrorIs(t, err, domain.ErrOfferCooldownNotElapsed)

	err = offer.FinalizeCancel(taker, deadline, cooldown)
	require.ErrorIs(t, err, domain.ErrOfferNotMaker)

	require.NoError(t, offer.FinalizeCancel(maker, deadline, cooldown))
	require.True(t, offer.IsCancelled())
	require.Equal(t, deadline, offer.ClosedAt)

	err = offer.Reclaim(maker, offer.Expiry)
	require.ErrorIs(t, err, domain.ErrOfferNotOpen)
	_, err = offer.Accept(taker, deadline, 0)
	require.ErrorIs(t, err, domain.ErrOfferNotOpen)
}

func TestOfferReclaim(t *testing.T) {
	offer := newOpenOffer(t, newTerms(native, 100, tokenB, 50))

	err := offer.Reclaim(maker, offer.Expiry-1)
	require.ErrorIs(t, err, domain.ErrOfferNotExpired)

	err = offer.Reclaim(taker, offer.Expiry)
	require.ErrorIs(t, err, domain.ErrOfferNotMaker)

	require.False(t, offer.IsActive(offer.Expiry))
	require.NoError(t, offer.Reclaim(maker, offer.Expiry))
	require.True(t, offer.IsExpired())

	nativeRefund, principal := offer.Refund()
	require.Equal(t, uint64(105), nativeRefund)
	require.Zero(t, principal)

	err = offer.Reclaim(maker, offer.Expiry+1)
	require.ErrorIs(t, err, domain.ErrOfferNotOpen)
}

func TestOfferRefund(t *testing.T) {
	offer := newOpenOffer(t, newTerms(tokenA, 100, native, 50))

	nativeRefund, principal := offer.Refund()
	require.Equal(t, uint64(5), nativeRefund)
	require.Equal(t, uint64(100), principal)
}

func TestParseAsset(t *testing.T) {
	asset, err := domain.ParseAsset("native")
	require.NoError(t, err)
	require.True(t, asset.IsNative())

	asset, err = domain.ParseAsset("token:AAA")
	require.NoError(t, err)
	require.True(t, asset.Equal(tokenA))
	require.Equal(t, "token:AAA", asset.String())

	for _, str := range []string{"", "token:", "AAA", "nativ"} {
		_, err := domain.ParseAsset(str)
		require.ErrorIs(t, err, domain.ErrAssetInvalid, str)
	}
}

func newTerms(
	makerAsset domain.Asset, makerAmount uint64,
	takerAsset domain.Asset, takerAmount uint64,
) domain.OfferTerms {
	return domain.OfferTerms{
		MakerAsset:  makerAsset,
		MakerAmount: makerAmount,
		TakerAsset:  takerAsset,
		TakerAmount: takerAmount,
		Expiry:      now + 2*int64(minLifetime/time.Second),
	}
}

func newOpenOffer(t *testing.T, terms domain.OfferTerms) *domain.Offer {
	offer, err := domain.NewOffer(maker, terms, 5, now, minLifetime)
	require.NoError(t, err)
	offer.ID = 1
	return offer
}
