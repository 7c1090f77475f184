package postgresdb

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
)

type offerRepositoryImpl struct {
	querier querierFunc
	execTx  execTxFunc
}

// NewOfferRepositoryImpl returns a postgres implementation of the
// domain.OfferRepository.
func NewOfferRepositoryImpl(
	querier querierFunc, execTx execTxFunc,
) domain.OfferRepository {
	return &offerRepositoryImpl{querier, execTx}
}

func (r *offerRepositoryImpl) AddOffer(
	ctx context.Context, offer *domain.Offer,
) (uint64, error) {
	var id int64
	txBody := func(q querier) error {
		// The counter row lock serializes concurrent inserts and keeps ids
		// dense even if a tx is rolled back.
		if err := q.QueryRow(
			ctx,
			`UPDATE offer_counter SET last_id = last_id + 1 WHERE id = 1
RETURNING last_id`,
		).Scan(&id); err != nil {
			return err
		}

		o := *offer
		o.ID = uint64(id)
		if _, err := q.Exec(
			ctx,
			`INSERT INTO offer (`+offerColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
			offerArgs(&o)...,
		); err != nil {
			return err
		}
		return indexOffer(ctx, q, o.Maker, o.ID)
	}

	if err := r.execTx(ctx, txBody); err != nil {
		return 0, err
	}

	offer.ID = uint64(id)
	return offer.ID, nil
}

func (r *offerRepositoryImpl) GetOffer(
	ctx context.Context, id uint64,
) (*domain.Offer, error) {
	return getOffer(ctx, r.querier(ctx), id, false)
}

func (r *offerRepositoryImpl) GetActiveOffers(
	ctx context.Context, now int64, page domain.Page,
) ([]*domain.Offer, uint64, error) {
	q := r.querier(ctx)

	var total int64
	if err := q.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM offer WHERE status = $1 AND expiry > $2`,
		int32(domain.OfferStatusOpen), now,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	start, end := page.Bounds(uint64(total))
	if start == end {
		return []*domain.Offer{}, uint64(total), nil
	}

	rows, err := q.Query(
		ctx,
		`SELECT `+offerColumns+` FROM offer
WHERE status = $1 AND expiry > $2
ORDER BY id ASC LIMIT $3 OFFSET $4`,
		int32(domain.OfferStatusOpen), now, int64(end-start), int64(start),
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	offers := make([]*domain.Offer, 0, end-start)
	for rows.Next() {
		var row offerRow
		if err := rows.Scan(row.fields()...); err != nil {
			return nil, 0, err
		}
		offer, err := row.toDomain()
		if err != nil {
			return nil, 0, err
		}
		offers = append(offers, offer)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return offers, uint64(total), nil
}

func (r *offerRepositoryImpl) GetOfferIDsByAccount(
	ctx context.Context, account domain.Account,
) ([]uint64, error) {
	rows, err := r.querier(ctx).Query(
		ctx,
		`SELECT offer_id FROM account_offer WHERE account = $1 ORDER BY seq ASC`,
		account.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uint64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, uint64(id))
	}
	return ids, rows.Err()
}

func (r *offerRepositoryImpl) UpdateOffer(
	ctx context.Context,
	id uint64,
	updateFn func(o *domain.Offer) (*domain.Offer, error),
) error {
	return r.execTx(ctx, func(q querier) error {
		current, err := getOffer(ctx, q, id, true)
		if err != nil {
			return err
		}
		hadTaker := !current.Taker.IsZero()

		updated, err := updateFn(current)
		if err != nil {
			return err
		}

		if _, err := q.Exec(
			ctx,
			`UPDATE offer SET cancel_requested_at = $2, taker = $3, status = $4,
maker_fee = $5, taker_fee = $6, settled_at = $7, closed_at = $8
WHERE id = $1`,
			int64(id), updated.CancelRequestedAt, updated.Taker.String(),
			int32(updated.Status), int64(updated.MakerFee),
			int64(updated.TakerFee), updated.SettledAt, updated.ClosedAt,
		); err != nil {
			return err
		}

		if !hadTaker && !updated.Taker.IsZero() {
			return indexOffer(ctx, q, updated.Taker, id)
		}
		return nil
	})
}

func getOffer(
	ctx context.Context, q querier, id uint64, forUpdate bool,
) (*domain.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offer WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var row offerRow
	if err := q.QueryRow(ctx, query, int64(id)).Scan(row.fields()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOfferNotFound
		}
		return nil, err
	}
	return row.toDomain()
}

func indexOffer(
	ctx context.Context, q querier, account domain.Account, id uint64,
) error {
	_, err := q.Exec(
		ctx,
		`INSERT INTO account_offer (account, offer_id) VALUES ($1, $2)`,
		account.String(), int64(id),
	)
	return err
}
