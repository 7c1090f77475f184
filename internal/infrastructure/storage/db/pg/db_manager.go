package postgresdb

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/tdex-network/tdex-otc/internal/core/ports"
)

//go:embed migration/schema.sql
var schema string

// querier is satisfied by both the connection pool and a db transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type repoManager struct {
	pgxPool *pgxpool.Pool

	offerRepository   domain.OfferRepository
	profileRepository domain.ProfileRepository
	paramsRepository  domain.ParamsRepository
}

// NewRepoManager connects to the postgres db at the given connection string
// and creates the tables if missing.
func NewRepoManager(ctx context.Context, dsn string) (ports.RepoManager, error) {
	pgxPool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	if err := pgxPool.Ping(ctx); err != nil {
		pgxPool.Close()
		return nil, fmt.Errorf("pg: connect: %w", err)
	}
	if _, err := pgxPool.Exec(ctx, schema); err != nil {
		pgxPool.Close()
		return nil, fmt.Errorf("pg: migrate db: %w", err)
	}

	rm := &repoManager{pgxPool: pgxPool}
	rm.offerRepository = NewOfferRepositoryImpl(rm.querier, rm.execTx)
	rm.profileRepository = NewProfileRepositoryImpl(rm.querier, rm.execTx)
	rm.paramsRepository = NewParamsRepositoryImpl(rm.querier, rm.execTx)

	return rm, nil
}

func (r *repoManager) OfferRepository() domain.OfferRepository {
	return r.offerRepository
}

func (r *repoManager) ProfileRepository() domain.ProfileRepository {
	return r.profileRepository
}

func (r *repoManager) ParamsRepository() domain.ParamsRepository {
	return r.paramsRepository
}

func (r *repoManager) RunTransaction(
	ctx context.Context,
	readOnly bool,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	// Nested transactions join the outer one.
	if _, ok := ctx.Value("tx").(pgx.Tx); ok {
		return handler(ctx)
	}

	var res interface{}
	opts := pgx.TxOptions{}
	if readOnly {
		opts.AccessMode = pgx.ReadOnly
	}
	if err := r.withTx(ctx, opts, func(tx pgx.Tx) error {
		var err error
		res, err = handler(context.WithValue(ctx, "tx", tx))
		return err
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *repoManager) Close() {
	r.pgxPool.Close()
}

// querier returns the transaction carried by the context, if any, or the
// connection pool.
func (r *repoManager) querier(ctx context.Context) querier {
	if tx, ok := ctx.Value("tx").(pgx.Tx); ok {
		return tx
	}
	return r.pgxPool
}

// execTx runs txBody within the transaction carried by the context, if any,
// or within a new one committed right after.
func (r *repoManager) execTx(
	ctx context.Context, txBody func(querier) error,
) error {
	if tx, ok := ctx.Value("tx").(pgx.Tx); ok {
		return txBody(tx)
	}
	return r.withTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return txBody(tx)
	})
}

func (r *repoManager) withTx(
	ctx context.Context, opts pgx.TxOptions, txBody func(pgx.Tx) error,
) error {
	conn, err := r.pgxPool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	// Rollback is safe to call even if the tx is already closed, so if
	// the tx commits successfully, this is a no-op.
	defer func() {
		err := tx.Rollback(ctx)
		switch {
		// If the tx was already closed (it was successfully executed)
		// we do not need to log that error.
		case errors.Is(err, pgx.ErrTxClosed):
			return

		// If this is an unexpected error, log it.
		case err != nil:
			log.Errorf("unable to rollback db tx: %v", err)
		}
	}()

	if err := txBody(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
