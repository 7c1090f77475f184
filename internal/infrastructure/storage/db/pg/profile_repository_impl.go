package postgresdb

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
)

type profileRepositoryImpl struct {
	querier querierFunc
	execTx  execTxFunc
}

// NewProfileRepositoryImpl returns a postgres implementation of the
// domain.ProfileRepository.
func NewProfileRepositoryImpl(
	querier querierFunc, execTx execTxFunc,
) domain.ProfileRepository {
	return &profileRepositoryImpl{querier, execTx}
}

func (r *profileRepositoryImpl) GetProfile(
	ctx context.Context, account domain.Account,
) (*domain.TraderProfile, error) {
	return getProfile(ctx, r.querier(ctx), account, false)
}

func (r *profileRepositoryImpl) UpdateProfile(
	ctx context.Context,
	account domain.Account,
	updateFn func(p *domain.TraderProfile) (*domain.TraderProfile, error),
) error {
	return r.execTx(ctx, func(q querier) error {
		// Make sure the row exists so that it can be locked.
		if _, err := q.Exec(
			ctx,
			`INSERT INTO profile (account) VALUES ($1)
ON CONFLICT (account) DO NOTHING`,
			account.String(),
		); err != nil {
			return err
		}

		current, err := getProfile(ctx, q, account, true)
		if err != nil {
			return err
		}

		updated, err := updateFn(current)
		if err != nil {
			return err
		}

		_, err = q.Exec(
			ctx,
			`UPDATE profile SET trades_completed = $2, total_volume = $3,
offers_cancelled = $4, offers_expired = $5, first_trade_at = $6
WHERE account = $1`,
			account.String(), int64(updated.TradesCompleted),
			int64(updated.TotalVolume), int64(updated.OffersCancelled),
			int64(updated.OffersExpired), updated.FirstTradeAt,
		)
		return err
	})
}

func getProfile(
	ctx context.Context, q querier, account domain.Account, forUpdate bool,
) (*domain.TraderProfile, error) {
	query := `SELECT trades_completed, total_volume, offers_cancelled,
offers_expired, first_trade_at FROM profile WHERE account = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var trades, volume, cancelled, expired int64
	profile := domain.NewTraderProfile(account)
	if err := q.QueryRow(ctx, query, account.String()).Scan(
		&trades, &volume, &cancelled, &expired, &profile.FirstTradeAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile, nil
		}
		return nil, err
	}

	profile.TradesCompleted = uint64(trades)
	profile.TotalVolume = uint64(volume)
	profile.OffersCancelled = uint64(cancelled)
	profile.OffersExpired = uint64(expired)
	return profile, nil
}
