package assetledger

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
	dbbadger "github.com/tdex-network/tdex-otc/internal/infrastructure/storage/db/badger"
	"github.com/timshannon/badgerhold/v4"
)

const ledgerDir = "ledger"

type entryKind string

const (
	entryBalance   entryKind = "balance"
	entryAllowance entryKind = "allowance"
	entryEscrow    entryKind = "escrow"
)

// Entry is a single amount tracked by the ledger: the balance of an account,
// an allowance granted to the escrow, or the escrow balance of an asset.
// Escrow entries have no account.
type Entry struct {
	Key     string
	Kind    entryKind
	Account domain.Account
	Asset   domain.Asset
	Amount  uint64
}

func newEntry(
	kind entryKind, account domain.Account, asset domain.Asset, amount uint64,
) Entry {
	return Entry{
		Key:     fmt.Sprintf("%s/%s/%s", kind, account, asset),
		Kind:    kind,
		Account: account,
		Asset:   asset,
		Amount:  amount,
	}
}

// Store persists the ledger entries. Save must write all the given entries
// atomically.
type Store interface {
	Load() ([]Entry, error)
	Save(entries ...Entry) error
	Close() error
}

type badgerStore struct {
	store *badgerhold.Store
	lock  sync.Mutex
}

// NewBadgerStore returns a Store persisted in a badger db under the given
// datadir. An empty datadir makes the store live in memory only.
func NewBadgerStore(datadir string, logger badger.Logger) (Store, error) {
	var dbDir string
	if len(datadir) > 0 {
		dbDir = filepath.Join(datadir, ledgerDir)
	}
	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger
	if len(dbDir) <= 0 {
		opts.InMemory = true
	}

	store, err := badgerhold.Open(badgerhold.Options{
		Encoder: dbbadger.JSONEncode,
		Decoder: dbbadger.JSONDecode,
		Options: opts,
	})
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}
	return &badgerStore{store: store}, nil
}

func (s *badgerStore) Load() ([]Entry, error) {
	var entries []Entry
	if err := s.store.Find(
		&entries, (&badgerhold.Query{}).SortBy("Key"),
	); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *badgerStore) Save(entries ...Entry) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.store.Badger().Update(func(tx *badger.Txn) error {
		for _, e := range entries {
			if err := s.store.TxUpsert(tx, e.Key, e); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *badgerStore) Close() error {
	return s.store.Close()
}
