package assetledger_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
	assetledger "github.com/tdex-network/tdex-otc/internal/infrastructure/asset-ledger"
)

var (
	ctx    = context.Background()
	native = domain.NativeAsset()
	token  = domain.FungibleAsset("usd")
)

func TestTransferIn(t *testing.T) {
	ledger := assetledger.NewLedger()
	require.NoError(t, ledger.Credit("alice", native, 100))
	require.NoError(t, ledger.Credit("alice", token, 100))

	t.Run("native needs no approval", func(t *testing.T) {
		err := ledger.TransferIn(ctx, native, "alice", 40)
		require.NoError(t, err)
		require.Equal(t, uint64(60), ledger.Balance("alice", native))
		require.Equal(t, uint64(40), ledger.EscrowBalance(native))
	})

	t.Run("fungible needs approval", func(t *testing.T) {
		err := ledger.TransferIn(ctx, token, "alice", 10)
		require.ErrorIs(t, err, assetledger.ErrInsufficientAllowance)

		require.NoError(t, ledger.Approve("alice", token, 30))
		err = ledger.TransferIn(ctx, token, "alice", 10)
		require.NoError(t, err)
		require.Equal(t, uint64(90), ledger.Balance("alice", token))
		require.Equal(t, uint64(20), ledger.Allowance("alice", token))
		require.Equal(t, uint64(10), ledger.EscrowBalance(token))
	})

	t.Run("insufficient balance", func(t *testing.T) {
		err := ledger.TransferIn(ctx, native, "alice", 61)
		require.ErrorIs(t, err, assetledger.ErrInsufficientBalance)
		err = ledger.TransferIn(ctx, native, "bob", 1)
		require.ErrorIs(t, err, assetledger.ErrInsufficientBalance)
		require.Equal(t, uint64(60), ledger.Balance("alice", native))
	})

	t.Run("zero amount is a no-op", func(t *testing.T) {
		require.NoError(t, ledger.TransferIn(ctx, token, "bob", 0))
	})
}

func TestTransferOut(t *testing.T) {
	ledger := assetledger.NewLedger()
	require.NoError(t, ledger.Credit("alice", native, 100))
	require.NoError(t, ledger.TransferIn(ctx, native, "alice", 100))

	err := ledger.TransferOut(ctx, native, "bob", 101)
	require.ErrorIs(t, err, assetledger.ErrEscrowInsufficientFunds)

	require.NoError(t, ledger.TransferOut(ctx, native, "bob", 70))
	require.Equal(t, uint64(70), ledger.Balance("bob", native))
	require.Equal(t, uint64(30), ledger.EscrowBalance(native))

	require.NoError(t, ledger.RevertTransferOut(ctx, native, "bob", 70))
	require.Zero(t, ledger.Balance("bob", native))
	require.Equal(t, uint64(100), ledger.EscrowBalance(native))

	require.NoError(t, ledger.TransferOut(ctx, token, "bob", 0))
}

func TestRevertTransferIn(t *testing.T) {
	ledger := assetledger.NewLedger()
	require.NoError(t, ledger.Credit("alice", token, 100))
	require.NoError(t, ledger.Approve("alice", token, 60))
	require.NoError(t, ledger.TransferIn(ctx, token, "alice", 40))
	require.Equal(t, uint64(20), ledger.Allowance("alice", token))

	require.NoError(t, ledger.RevertTransferIn(ctx, token, "alice", 40))
	require.Equal(t, uint64(100), ledger.Balance("alice", token))
	require.Equal(t, uint64(60), ledger.Allowance("alice", token))
	require.Zero(t, ledger.EscrowBalance(token))

	err := ledger.RevertTransferIn(ctx, token, "alice", 1)
	require.ErrorIs(t, err, assetledger.ErrEscrowInsufficientFunds)

	t.Run("allowance overflow", func(t *testing.T) {
		require.NoError(t, ledger.Approve("alice", token, math.MaxUint64))
		require.NoError(t, ledger.TransferIn(ctx, token, "alice", 40))
		require.NoError(t, ledger.Approve("alice", token, math.MaxUint64))

		err := ledger.RevertTransferIn(ctx, token, "alice", 40)
		require.ErrorIs(t, err, assetledger.ErrBalanceOverflow)
		require.Equal(t, uint64(60), ledger.Balance("alice", token))
		require.Equal(t, uint64(40), ledger.EscrowBalance(token))
		require.Equal(t, uint64(math.MaxUint64), ledger.Allowance("alice", token))
	})
}

type failingStore struct {
	assetledger.Store
}

func (s failingStore) Save(...assetledger.Entry) error {
	return errors.New("disk full")
}

func TestPersistentLedger(t *testing.T) {
	datadir := t.TempDir()
	genesis := assetledger.Genesis{"alice": {"native": "1", "token:usd": "1"}}

	store, err := assetledger.NewBadgerStore(datadir, nil)
	require.NoError(t, err)
	ledger, err := assetledger.NewPersistentLedger(store, genesis)
	require.NoError(t, err)

	require.NoError(t, ledger.Approve("alice", token, 50))
	require.NoError(t, ledger.TransferIn(ctx, native, "alice", 30))
	require.NoError(t, ledger.TransferIn(ctx, token, "alice", 20))
	require.NoError(t, ledger.TransferOut(ctx, native, "bob", 10))
	require.NoError(t, ledger.Close())

	store, err = assetledger.NewBadgerStore(datadir, nil)
	require.NoError(t, err)
	ledger, err = assetledger.NewPersistentLedger(store, genesis)
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })

	tests := []struct {
		name     string
		got      uint64
		expected uint64
	}{
		{"alice native", ledger.Balance("alice", native), 100_000_000 - 30},
		{"alice token", ledger.Balance("alice", token), 100_000_000 - 20},
		{"alice allowance", ledger.Allowance("alice", token), 30},
		{"bob native", ledger.Balance("bob", native), 10},
		{"escrow native", ledger.EscrowBalance(native), 20},
		{"escrow token", ledger.EscrowBalance(token), 20},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.got)
		})
	}

	t.Run("failed save changes nothing", func(t *testing.T) {
		store, err := assetledger.NewBadgerStore("", nil)
		require.NoError(t, err)
		failing, err := assetledger.NewPersistentLedger(failingStore{store}, nil)
		require.NoError(t, err)
		t.Cleanup(func() { failing.Close() })

		require.Error(t, failing.Credit("alice", native, 10))
		require.Zero(t, failing.Balance("alice", native))
	})
}

func TestApprove(t *testing.T) {
	ledger := assetledger.NewLedger()

	require.Error(t, ledger.Approve("alice", native, 10))
	require.Error(t, ledger.Approve("", token, 10))

	require.NoError(t, ledger.Approve("alice", token, 10))
	require.NoError(t, ledger.Approve("alice", token, 5))
	require.Equal(t, uint64(5), ledger.Allowance("alice", token))
}

func TestGenesis(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.json")
	err := os.WriteFile(path, []byte(`{
		"alice": {"native": "1.5", "token:usd": "100"},
		"bob": {"native": "0.00000001"}
	}`), 0600)
	require.NoError(t, err)

	genesis, err := assetledger.LoadGenesis(path)
	require.NoError(t, err)

	ledger, err := assetledger.NewLedgerFromGenesis(genesis)
	require.NoError(t, err)
	require.Equal(t, uint64(150_000_000), ledger.Balance("alice", native))
	require.Equal(t, uint64(10_000_000_000), ledger.Balance("alice", token))
	require.Equal(t, uint64(1), ledger.Balance("bob", native))

	tests := []struct {
		name    string
		genesis assetledger.Genesis
	}{
		{"invalid asset", assetledger.Genesis{"alice": {"gold": "1"}}},
		{"invalid amount", assetledger.Genesis{"alice": {"native": "-1"}}},
		{"too precise amount", assetledger.Genesis{"alice": {"native": "0.000000001"}}},
		{"invalid account", assetledger.Genesis{"al ice": {"native": "1"}}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := assetledger.NewLedgerFromGenesis(tt.genesis)
			require.Error(t, err)
		})
	}
}
