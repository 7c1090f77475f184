package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-otc/internal/core/application"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/tdex-network/tdex-otc/internal/core/ports"
	assetledger "github.com/tdex-network/tdex-otc/internal/infrastructure/asset-ledger"
	profilecache "github.com/tdex-network/tdex-otc/internal/infrastructure/cache"
	"github.com/tdex-network/tdex-otc/internal/infrastructure/clock"
	"github.com/tdex-network/tdex-otc/internal/infrastructure/storage/db/inmemory"
)

const (
	admin    = domain.Account("admin")
	treasury = domain.Account("treasury")
	maker    = domain.Account("maker")
	taker    = domain.Account("taker")
	stranger = domain.Account("stranger")

	minStake       = 5
	feeBasisPoints = 30
	initialFunds   = 1_000_000

	cancelCooldown   = 30 * time.Minute
	minOfferLifetime = time.Hour
)

var (
	ctxBackground = context.Background()

	native = domain.NativeAsset()
	tokenA = domain.FungibleAsset("tokenA")
	tokenB = domain.FungibleAsset("tokenB")

	startTime = time.Unix(1_700_000_000, 0)
	expiry    = startTime.Add(2 * time.Hour).Unix()
)

type testEnv struct {
	ctx        context.Context
	repo       ports.RepoManager
	ledger     *assetledger.Ledger
	transfer   *faultyTransfer
	clock      *clock.ManualClock
	cache      ports.ProfileCache
	publisher  *mockPublisher
	settlement application.SettlementService
	admin      application.AdminService
	query      application.QueryService
}

func newTestEnv(t *testing.T, webhooks ports.WebhookPubSub) *testEnv {
	t.Helper()
	ctx := ctxBackground

	repo := inmemory.NewRepoManager()
	params, err := domain.NewParams(admin, minStake, feeBasisPoints, treasury)
	require.NoError(t, err)
	_, err = repo.ParamsRepository().InitParams(ctx, params)
	require.NoError(t, err)

	ledger := assetledger.NewLedger()
	for _, account := range []domain.Account{maker, taker, stranger} {
		for _, asset := range []domain.Asset{native, tokenA, tokenB} {
			require.NoError(t, ledger.Credit(account, asset, initialFunds))
			if !asset.IsNative() {
				require.NoError(t, ledger.Approve(account, asset, initialFunds))
			}
		}
	}
	transfer := &faultyTransfer{Ledger: ledger}

	clk := clock.NewManualClock(startTime)
	cache := profilecache.NewLRUCache(
		profilecache.DefaultSize, profilecache.DefaultTTL,
	)

	publisher := &mockPublisher{}
	publisher.On("PublishEvent", mock.Anything, mock.Anything).Return(nil)

	settlement, err := application.NewSettlementService(
		repo, transfer, clk, cache, cancelCooldown, minOfferLifetime, publisher,
	)
	require.NoError(t, err)
	adminSvc, err := application.NewAdminService(
		repo, transfer, clk, webhooks, publisher,
	)
	require.NoError(t, err)
	query, err := application.NewQueryService(repo, clk, cache, cancelCooldown)
	require.NoError(t, err)

	return &testEnv{
		ctx:        ctx,
		repo:       repo,
		ledger:     ledger,
		transfer:   transfer,
		clock:      clk,
		cache:      cache,
		publisher:  publisher,
		settlement: settlement,
		admin:      adminSvc,
		query:      query,
	}
}

// defaultTerms are the terms of the reference trade: 100 tokenA for 50
// tokenB.
func defaultTerms() domain.OfferTerms {
	return domain.OfferTerms{
		MakerAsset:  tokenA,
		MakerAmount: 100,
		TakerAsset:  tokenB,
		TakerAmount: 50,
		Expiry:      expiry,
	}
}

func (e *testEnv) createOffer(
	t *testing.T, terms domain.OfferTerms, value uint64,
) uint64 {
	t.Helper()
	id, err := e.settlement.CreateOffer(e.ctx, maker, terms, value)
	require.NoError(t, err)
	return id
}

func (e *testEnv) offer(t *testing.T, id uint64) *domain.Offer {
	t.Helper()
	offer, err := e.query.GetOffer(e.ctx, id)
	require.NoError(t, err)
	return offer
}

func (e *testEnv) profile(
	t *testing.T, account domain.Account,
) domain.TraderProfile {
	t.Helper()
	info, err := e.query.GetProfile(e.ctx, account)
	require.NoError(t, err)
	return info.Profile
}

// supply returns the total amount of asset held by the test accounts, the
// fee recipient and the escrow.
func (e *testEnv) supply(asset domain.Asset) uint64 {
	total := e.ledger.EscrowBalance(asset)
	for _, account := range []domain.Account{
		maker, taker, stranger, treasury, admin,
	} {
		total += e.ledger.Balance(account, asset)
	}
	return total
}

func (e *testEnv) requireSupplyUnchanged(t *testing.T) {
	t.Helper()
	for _, asset := range []domain.Asset{native, tokenA, tokenB} {
		require.Equal(t, uint64(3*initialFunds), e.supply(asset), asset.String())
	}
}
