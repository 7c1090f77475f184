package db_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/tdex-network/tdex-otc/internal/core/ports"
	dbbadger "github.com/tdex-network/tdex-otc/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/tdex-otc/internal/infrastructure/storage/db/inmemory"
	postgresdb "github.com/tdex-network/tdex-otc/internal/infrastructure/storage/db/pg"
)

// pgDsnEnv is the env var with the connection string of a test postgres db.
// The postgres implementation is tested only if it's defined.
const pgDsnEnv = "OTC_TEST_PG_DSN"

const now = int64(1_700_000_000)

var (
	ctx = context.Background()

	tokenA = domain.FungibleAsset("token-a")
	tokenB = domain.FungibleAsset("token-b")
)

type repoManager struct {
	Name      string
	DBManager ports.RepoManager
}

func (r repoManager) read(
	query func(context.Context) (interface{}, error),
) (interface{}, error) {
	return r.DBManager.RunTransaction(context.Background(), true, query)
}

func (r repoManager) write(
	query func(context.Context) (interface{}, error),
) (interface{}, error) {
	return r.DBManager.RunTransaction(context.Background(), false, query)
}

// newRepoManagers returns a fresh, empty repo manager for every supported
// implementation.
func newRepoManagers(t *testing.T) []repoManager {
	t.Helper()

	badgerDB, err := dbbadger.NewRepoManager(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(badgerDB.Close)

	managers := []repoManager{
		{Name: "inmemory", DBManager: inmemory.NewRepoManager()},
		{Name: "badger", DBManager: badgerDB},
	}

	if dsn := os.Getenv(pgDsnEnv); dsn != "" {
		pgDB, err := postgresdb.NewRepoManager(ctx, dsn)
		require.NoError(t, err)
		t.Cleanup(pgDB.Close)
		truncatePgDB(t, dsn)

		managers = append(managers, repoManager{Name: "postgres", DBManager: pgDB})
	}
	return managers
}

func truncatePgDB(t *testing.T, dsn string) {
	conn, err := pgx.Connect(ctx, dsn)
	require.NoError(t, err)
	defer conn.Close(ctx)

	_, err = conn.Exec(
		ctx,
		`TRUNCATE account_offer, offer, profile, params;
UPDATE offer_counter SET last_id = 0;`,
	)
	require.NoError(t, err)
}

func newOffer(maker domain.Account, expiry int64) *domain.Offer {
	return &domain.Offer{
		Maker: maker,
		OfferTerms: domain.OfferTerms{
			MakerAsset:  tokenA,
			MakerAmount: 100,
			TakerAsset:  tokenB,
			TakerAmount: 50,
			Expiry:      expiry,
		},
		Stake:     10,
		CreatedAt: now,
		Status:    domain.OfferStatusOpen,
	}
}
