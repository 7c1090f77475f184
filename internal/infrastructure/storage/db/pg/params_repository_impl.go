package postgresdb

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
)

const paramsID = 1

type paramsRepositoryImpl struct {
	querier querierFunc
	execTx  execTxFunc
}

// NewParamsRepositoryImpl returns a postgres implementation of the
// domain.ParamsRepository.
func NewParamsRepositoryImpl(
	querier querierFunc, execTx execTxFunc,
) domain.ParamsRepository {
	return &paramsRepositoryImpl{querier, execTx}
}

func (r *paramsRepositoryImpl) InitParams(
	ctx context.Context, params *domain.Params,
) (*domain.Params, error) {
	var stored *domain.Params
	if err := r.execTx(ctx, func(q querier) error {
		if _, err := q.Exec(
			ctx,
			`INSERT INTO params (id, admin, min_stake, fee_basis_points,
fee_recipient, accrued_native_fees) VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO NOTHING`,
			paramsID, params.Admin.String(), int64(params.MinStake),
			int64(params.FeeBasisPoints), params.FeeRecipient.String(),
			int64(params.AccruedNativeFees),
		); err != nil {
			return err
		}

		p, err := getParams(ctx, q, false)
		if err != nil {
			return err
		}
		stored = p
		return nil
	}); err != nil {
		return nil, err
	}
	return stored, nil
}

func (r *paramsRepositoryImpl) GetParams(
	ctx context.Context,
) (*domain.Params, error) {
	return getParams(ctx, r.querier(ctx), false)
}

func (r *paramsRepositoryImpl) UpdateParams(
	ctx context.Context, updateFn func(p *domain.Params) (*domain.Params, error),
) error {
	return r.execTx(ctx, func(q querier) error {
		current, err := getParams(ctx, q, true)
		if err != nil {
			return err
		}

		updated, err := updateFn(current)
		if err != nil {
			return err
		}

		_, err = q.Exec(
			ctx,
			`UPDATE params SET admin = $2, min_stake = $3, fee_basis_points = $4,
fee_recipient = $5, accrued_native_fees = $6 WHERE id = $1`,
			paramsID, updated.Admin.String(), int64(updated.MinStake),
			int64(updated.FeeBasisPoints), updated.FeeRecipient.String(),
			int64(updated.AccruedNativeFees),
		)
		return err
	})
}

func getParams(
	ctx context.Context, q querier, forUpdate bool,
) (*domain.Params, error) {
	query := `SELECT admin, min_stake, fee_basis_points, fee_recipient,
accrued_native_fees FROM params WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var admin, recipient string
	var minStake, bps, accrued int64
	if err := q.QueryRow(ctx, query, paramsID).Scan(
		&admin, &minStake, &bps, &recipient, &accrued,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrParamsNotFound
		}
		return nil, err
	}

	return &domain.Params{
		Admin:             domain.Account(admin),
		MinStake:          uint64(minStake),
		FeeBasisPoints:    uint64(bps),
		FeeRecipient:      domain.Account(recipient),
		AccruedNativeFees: uint64(accrued),
	}, nil
}
