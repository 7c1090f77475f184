package postgresdb

import (
	"context"

	"github.com/tdex-network/tdex-otc/internal/core/domain"
)

// Amounts are stored as BIGINT. The conversion between uint64 and int64 is
// lossless both ways, amounts are never compared by the db.

type execTxFunc func(ctx context.Context, txBody func(querier) error) error

type querierFunc func(ctx context.Context) querier

const offerColumns = `id, maker, maker_asset, maker_amount, taker_asset,
taker_amount, expiry, allowed_taker, stake, created_at, cancel_requested_at,
taker, status, maker_fee, taker_fee, settled_at, closed_at`

type offerRow struct {
	id                int64
	maker             string
	makerAsset        string
	makerAmount       int64
	takerAsset        string
	takerAmount       int64
	expiry            int64
	allowedTaker      string
	stake             int64
	createdAt         int64
	cancelRequestedAt int64
	taker             string
	status            int32
	makerFee          int64
	takerFee          int64
	settledAt         int64
	closedAt          int64
}

func (r *offerRow) fields() []any {
	return []any{
		&r.id, &r.maker, &r.makerAsset, &r.makerAmount, &r.takerAsset,
		&r.takerAmount, &r.expiry, &r.allowedTaker, &r.stake, &r.createdAt,
		&r.cancelRequestedAt, &r.taker, &r.status, &r.makerFee, &r.takerFee,
		&r.settledAt, &r.closedAt,
	}
}

func (r offerRow) toDomain() (*domain.Offer, error) {
	makerAsset, err := domain.ParseAsset(r.makerAsset)
	if err != nil {
		return nil, err
	}
	takerAsset, err := domain.ParseAsset(r.takerAsset)
	if err != nil {
		return nil, err
	}

	return &domain.Offer{
		ID:    uint64(r.id),
		Maker: domain.Account(r.maker),
		OfferTerms: domain.OfferTerms{
			MakerAsset:   makerAsset,
			MakerAmount:  uint64(r.makerAmount),
			TakerAsset:   takerAsset,
			TakerAmount:  uint64(r.takerAmount),
			Expiry:       r.expiry,
			AllowedTaker: domain.Account(r.allowedTaker),
		},
		Stake:             uint64(r.stake),
		CreatedAt:         r.createdAt,
		CancelRequestedAt: r.cancelRequestedAt,
		Taker:             domain.Account(r.taker),
		Status:            domain.OfferStatus(r.status),
		MakerFee:          uint64(r.makerFee),
		TakerFee:          uint64(r.takerFee),
		SettledAt:         r.settledAt,
		ClosedAt:          r.closedAt,
	}, nil
}

func offerArgs(o *domain.Offer) []any {
	return []any{
		int64(o.ID), o.Maker.String(), o.MakerAsset.String(),
		int64(o.MakerAmount), o.TakerAsset.String(), int64(o.TakerAmount),
		o.Expiry, o.AllowedTaker.String(), int64(o.Stake), o.CreatedAt,
		o.CancelRequestedAt, o.Taker.String(), int32(o.Status),
		int64(o.MakerFee), int64(o.TakerFee), o.SettledAt, o.ClosedAt,
	}
}
