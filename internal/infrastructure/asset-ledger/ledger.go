package assetledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/tdex-network/tdex-otc/pkg/mathutil"
)

var (
	// ErrInsufficientBalance is returned if an account does not hold enough
	// of the asset to transfer.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInsufficientAllowance is returned if the escrow is not allowed to
	// pull enough of a fungible asset from an account.
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	// ErrEscrowInsufficientFunds is returned if the escrow is asked to pay
	// more than it holds.
	ErrEscrowInsufficientFunds = errors.New("escrow holds insufficient funds")
	// ErrBalanceOverflow is returned if crediting a balance, an allowance or
	// the escrow would exceed the max uint64 amount. Nothing is changed.
	ErrBalanceOverflow = errors.New("balance overflow")
)

type balances map[domain.Asset]uint64

// Ledger is an asset ledger tracking the balances of accounts and the
// escrow, along with the allowances that accounts granted to the escrow.
// Native asset can always be pulled from an account, while fungible assets
// require a prior approval.
// If the ledger has a Store, every change is persisted before being applied
// in memory.
type Ledger struct {
	lock  *sync.RWMutex
	store Store

	accounts   map[domain.Account]balances
	allowances map[domain.Account]balances
	escrow     balances
}

// NewLedger returns an empty ledger that lives in memory only.
func NewLedger() *Ledger {
	return &Ledger{
		lock:       &sync.RWMutex{},
		accounts:   make(map[domain.Account]balances),
		allowances: make(map[domain.Account]balances),
		escrow:     make(balances),
	}
}

// NewPersistentLedger returns a ledger restored from the given store. The
// genesis balances are credited only if the store is empty, ie. the first
// time the ledger is opened.
func NewPersistentLedger(store Store, genesis Genesis) (*Ledger, error) {
	if store == nil {
		return nil, fmt.Errorf("missing ledger store")
	}

	entries, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	ledger := NewLedger()
	ledger.store = store

	if len(entries) <= 0 {
		if err := ledger.creditGenesis(genesis); err != nil {
			return nil, err
		}
		log.Info("ledger: initialized from genesis")
		return ledger, nil
	}

	for _, e := range entries {
		ledger.set(e)
	}
	log.Infof("ledger: restored %d entries", len(entries))
	return ledger, nil
}

// Close closes the underlying store, if any.
func (l *Ledger) Close() error {
	if l.store == nil {
		return nil
	}
	return l.store.Close()
}

// Credit adds the given amount of asset to the account's balance.
func (l *Ledger) Credit(
	account domain.Account, asset domain.Asset, amount uint64,
) error {
	if err := account.Validate(); err != nil {
		return err
	}
	if err := asset.Validate(); err != nil {
		return err
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	balance, err := add(l.accounts[account][asset], amount, asset)
	if err != nil {
		return err
	}
	return l.apply(newEntry(entryBalance, account, asset, balance))
}

// Approve sets the amount of fungible asset the escrow is allowed to pull
// from the account, replacing any previous allowance.
func (l *Ledger) Approve(
	account domain.Account, asset domain.Asset, amount uint64,
) error {
	if err := account.Validate(); err != nil {
		return err
	}
	if err := asset.Validate(); err != nil {
		return err
	}
	if asset.IsNative() {
		return fmt.Errorf("%w: native asset needs no approval", domain.ErrAssetInvalid)
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	return l.apply(newEntry(entryAllowance, account, asset, amount))
}

// Balance returns the balance of asset held by the account.
func (l *Ledger) Balance(account domain.Account, asset domain.Asset) uint64 {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.accounts[account][asset]
}

// Balances returns a copy of all the balances of the account.
func (l *Ledger) Balances(account domain.Account) map[domain.Asset]uint64 {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return copyBalances(l.accounts[account])
}

// Allowance returns the amount of asset the escrow can pull from account.
func (l *Ledger) Allowance(account domain.Account, asset domain.Asset) uint64 {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.allowances[account][asset]
}

// EscrowBalance returns the amount of asset held by the escrow.
func (l *Ledger) EscrowBalance(asset domain.Asset) uint64 {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.escrow[asset]
}

// TransferIn moves amount of asset from the account to the escrow.
func (l *Ledger) TransferIn(
	_ context.Context, asset domain.Asset, from domain.Account, amount uint64,
) error {
	if amount == 0 {
		return nil
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	balance := l.accounts[from][asset]
	if balance < amount {
		return fmt.Errorf(
			"%w: %s has %d %s, needs %d",
			ErrInsufficientBalance, from, balance, asset, amount,
		)
	}
	allowance := l.allowances[from][asset]
	if !asset.IsNative() && allowance < amount {
		return fmt.Errorf(
			"%w: %s allowed %d %s, needs %d",
			ErrInsufficientAllowance, from, allowance, asset, amount,
		)
	}
	escrow, err := add(l.escrow[asset], amount, asset)
	if err != nil {
		return err
	}

	entries := []Entry{
		newEntry(entryBalance, from, asset, balance-amount),
		newEntry(entryEscrow, "", asset, escrow),
	}
	if !asset.IsNative() {
		entries = append(
			entries, newEntry(entryAllowance, from, asset, allowance-amount),
		)
	}
	if err := l.apply(entries...); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"account": from,
		"asset":   asset,
		"amount":  amount,
	}).Trace("ledger: transfer in")
	return nil
}

// TransferOut moves amount of asset from the escrow to the account.
func (l *Ledger) TransferOut(
	_ context.Context, asset domain.Asset, to domain.Account, amount uint64,
) error {
	if amount == 0 {
		return nil
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	if err := l.payOut(asset, to, amount); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"account": to,
		"asset":   asset,
		"amount":  amount,
	}).Trace("ledger: transfer out")
	return nil
}

// RevertTransferIn gives back to the account what a previous TransferIn
// moved to the escrow, restoring the consumed allowance.
func (l *Ledger) RevertTransferIn(
	_ context.Context, asset domain.Asset, from domain.Account, amount uint64,
) error {
	if amount == 0 {
		return nil
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	if asset.IsNative() {
		return l.payOut(asset, from, amount)
	}

	if l.escrow[asset] < amount {
		return fmt.Errorf(
			"%w: has %d %s, needs %d",
			ErrEscrowInsufficientFunds, l.escrow[asset], asset, amount,
		)
	}
	balance, err := add(l.accounts[from][asset], amount, asset)
	if err != nil {
		return err
	}
	allowance, err := add(l.allowances[from][asset], amount, asset)
	if err != nil {
		return err
	}
	return l.apply(
		newEntry(entryBalance, from, asset, balance),
		newEntry(entryAllowance, from, asset, allowance),
		newEntry(entryEscrow, "", asset, l.escrow[asset]-amount),
	)
}

// RevertTransferOut gives back to the escrow what a previous TransferOut
// paid to the account. Allowances are left untouched.
func (l *Ledger) RevertTransferOut(
	_ context.Context, asset domain.Asset, to domain.Account, amount uint64,
) error {
	if amount == 0 {
		return nil
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	balance := l.accounts[to][asset]
	if balance < amount {
		return fmt.Errorf(
			"%w: %s has %d %s, needs %d",
			ErrInsufficientBalance, to, balance, asset, amount,
		)
	}
	escrow, err := add(l.escrow[asset], amount, asset)
	if err != nil {
		return err
	}
	return l.apply(
		newEntry(entryBalance, to, asset, balance-amount),
		newEntry(entryEscrow, "", asset, escrow),
	)
}

// payOut moves amount from the escrow to the account balance. It must be
// called with the lock held.
func (l *Ledger) payOut(
	asset domain.Asset, to domain.Account, amount uint64,
) error {
	if l.escrow[asset] < amount {
		return fmt.Errorf(
			"%w: has %d %s, needs %d",
			ErrEscrowInsufficientFunds, l.escrow[asset], asset, amount,
		)
	}
	balance, err := add(l.accounts[to][asset], amount, asset)
	if err != nil {
		return err
	}
	return l.apply(
		newEntry(entryBalance, to, asset, balance),
		newEntry(entryEscrow, "", asset, l.escrow[asset]-amount),
	)
}

// apply persists the entries, if the ledger has a store, and then updates
// the in-memory state. Nothing changes if persisting fails. It must be
// called with the lock held.
func (l *Ledger) apply(entries ...Entry) error {
	if l.store != nil {
		if err := l.store.Save(entries...); err != nil {
			return fmt.Errorf("failed to persist ledger entries: %w", err)
		}
	}
	for _, e := range entries {
		l.set(e)
	}
	return nil
}

func (l *Ledger) set(e Entry) {
	switch e.Kind {
	case entryEscrow:
		l.escrow[e.Asset] = e.Amount
	case entryAllowance:
		if _, ok := l.allowances[e.Account]; !ok {
			l.allowances[e.Account] = make(balances)
		}
		l.allowances[e.Account][e.Asset] = e.Amount
	default:
		if _, ok := l.accounts[e.Account]; !ok {
			l.accounts[e.Account] = make(balances)
		}
		l.accounts[e.Account][e.Asset] = e.Amount
	}
}

func add(current, amount uint64, asset domain.Asset) (uint64, error) {
	sum, err := mathutil.SafeAdd(current, amount)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrBalanceOverflow, asset)
	}
	return sum, nil
}

func copyBalances(b balances) map[domain.Asset]uint64 {
	res := make(map[domain.Asset]uint64, len(b))
	for asset, amount := range b {
		res[asset] = amount
	}
	return res
}
