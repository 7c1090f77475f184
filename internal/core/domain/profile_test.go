package domain_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/tdex-network/tdex-otc/pkg/mathutil"
)

const day = int64(24 * 60 * 60)

func TestReliabilityScore(t *testing.T) {
	tests := []struct {
		name              string
		profile           domain.TraderProfile
		now               int64
		expectedBreakdown domain.ScoreBreakdown
	}{
		{
			name:    "empty",
			profile: domain.TraderProfile{},
			now:     now,
		},
		{
			name: "only_cancellations",
			profile: domain.TraderProfile{
				OffersCancelled: 3,
				OffersExpired:   1,
			},
			now: now,
		},
		{
			name: "first_trade_today",
			profile: domain.TraderProfile{
				TradesCompleted: 1,
				TotalVolume:     mathutil.BigOne,
				FirstTradeAt:    now,
			},
			now:               now + day - 1,
			expectedBreakdown: domain.ScoreBreakdown{Completion: 80, Age: 0, Volume: 1},
		},
		{
			name: "mixed_history",
			profile: domain.TraderProfile{
				TradesCompleted: 2,
				OffersCancelled: 1,
				TotalVolume:     5 * mathutil.BigOne,
				FirstTradeAt:    now,
			},
			now:               now + 45*day,
			expectedBreakdown: domain.ScoreBreakdown{Completion: 53, Age: 5, Volume: 5},
		},
		{
			name: "veteran",
			profile: domain.TraderProfile{
				TradesCompleted: 100,
				TotalVolume:     math.MaxUint64,
				FirstTradeAt:    now,
			},
			now:               now + 365*day,
			expectedBreakdown: domain.ScoreBreakdown{Completion: 80, Age: 10, Volume: 10},
		},
		{
			name: "age_truncates",
			profile: domain.TraderProfile{
				TradesCompleted: 1,
				OffersExpired:   3,
				TotalVolume:     domain.VolumeCap - 1,
				FirstTradeAt:    now,
			},
			now:               now + 89*day,
			expectedBreakdown: domain.ScoreBreakdown{Completion: 20, Age: 9, Volume: 9},
		},
		{
			name: "age_first_point",
			profile: domain.TraderProfile{
				TradesCompleted: 1,
				FirstTradeAt:    now,
			},
			now:               now + 9*day,
			expectedBreakdown: domain.ScoreBreakdown{Completion: 80, Age: 1, Volume: 0},
		},
		{
			name: "age_full",
			profile: domain.TraderProfile{
				TradesCompleted: 1,
				FirstTradeAt:    now,
			},
			now:               now + 90*day,
			expectedBreakdown: domain.ScoreBreakdown{Completion: 80, Age: 10, Volume: 0},
		},
	}

	for i := range tests {
		tt := tests[i]

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			breakdown := tt.profile.ScoreBreakdown(tt.now)
			require.Equal(t, tt.expectedBreakdown, breakdown)
			require.Equal(t, breakdown.Total(), tt.profile.ReliabilityScore(tt.now))
		})
	}
}

func TestReliabilityScoreBounds(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		profile := domain.TraderProfile{
			TradesCompleted: uint64(rnd.Intn(3)) * rnd.Uint64(),
			OffersCancelled: rnd.Uint64(),
			OffersExpired:   uint64(rnd.Intn(1000)),
		}
		if profile.TradesCompleted > 0 {
			profile.TotalVolume = rnd.Uint64()
			profile.FirstTradeAt = rnd.Int63n(now)
		}

		score := profile.ReliabilityScore(now)
		require.LessOrEqual(t, score, uint64(100))
		if profile.TradesCompleted == 0 {
			require.Zero(t, score)
		}
	}
}

func TestRecordTrade(t *testing.T) {
	profile := domain.NewTraderProfile(maker)
	require.True(t, profile.IsEmpty())

	profile.RecordTrade(100, now)
	profile.RecordTrade(math.MaxUint64, now+day)
	profile.RecordCancel()
	profile.RecordExpire()

	require.False(t, profile.IsEmpty())
	require.Equal(t, uint64(2), profile.TradesCompleted)
	require.Equal(t, uint64(math.MaxUint64), profile.TotalVolume)
	require.Equal(t, now, profile.FirstTradeAt)
	require.Equal(t, uint64(1), profile.OffersCancelled)
	require.Equal(t, uint64(1), profile.OffersExpired)
}
