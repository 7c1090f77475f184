package dbbadger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/tdex-network/tdex-otc/internal/core/ports"
	"github.com/timshannon/badgerhold/v4"
)

const otcDir = "otc"

// DbManager holds the badgerhold store along with the lock that serializes
// write transactions, so that they never conflict with each other.
type DbManager struct {
	Store *badgerhold.Store

	writeLock sync.Mutex
}

type repoManager struct {
	db *DbManager

	offerRepository   domain.OfferRepository
	profileRepository domain.ProfileRepository
	paramsRepository  domain.ParamsRepository
}

// NewRepoManager opens (or creates if not exists) the badger store on disk.
// It expects a base data dir and an optional logger. An empty data dir
// makes the store live in memory only.
func NewRepoManager(baseDbDir string, logger badger.Logger) (ports.RepoManager, error) {
	db, err := NewDbManager(baseDbDir, logger)
	if err != nil {
		return nil, err
	}

	return &repoManager{
		db:                db,
		offerRepository:   NewOfferRepositoryImpl(db),
		profileRepository: NewProfileRepositoryImpl(db),
		paramsRepository:  NewParamsRepositoryImpl(db),
	}, nil
}

// NewDbManager opens the badgerhold store used by all the repositories.
func NewDbManager(baseDbDir string, logger badger.Logger) (*DbManager, error) {
	var dbDir string
	if len(baseDbDir) > 0 {
		dbDir = filepath.Join(baseDbDir, otcDir)
	}

	store, err := createDb(dbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening otc db: %w", err)
	}
	return &DbManager{Store: store}, nil
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
	if ctx.Value("tx") != nil {
		return handler(ctx)
	}

	if !readOnly {
		r.db.writeLock.Lock()
		defer r.db.writeLock.Unlock()
	}

	tx := r.db.Store.Badger().NewTransaction(!readOnly)
	defer tx.Discard()

	res, err := handler(context.WithValue(ctx, "tx", tx))
	if err != nil {
		return nil, err
	}

	if !readOnly {
		if err := tx.Commit(); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (r *repoManager) Close() {
	r.db.Store.Close()
}

// view runs fn within the transaction of the given context, if any, or
// within a new read-only one.
func (d *DbManager) view(ctx context.Context, fn func(tx *badger.Txn) error) error {
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		return fn(tx)
	}
	return d.Store.Badger().View(fn)
}

// update runs fn within the transaction of the given context, if any, or
// within a new one committed right after.
func (d *DbManager) update(ctx context.Context, fn func(tx *badger.Txn) error) error {
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		return fn(tx)
	}

	d.writeLock.Lock()
	defer d.writeLock.Unlock()
	return d.Store.Badger().Update(fn)
}

// JSONEncode is a custom JSON based encoder for badger
func JSONEncode(value interface{}) ([]byte, error) {
	var buff bytes.Buffer

	en := json.NewEncoder(&buff)

	err := en.Encode(value)
	if err != nil {
		return nil, err
	}

	return buff.Bytes(), nil
}

// JSONDecode is a custom JSON based decoder for badger
func JSONDecode(data []byte, value interface{}) error {
	var buff bytes.Buffer
	de := json.NewDecoder(&buff)

	_, err := buff.Write(data)
	if err != nil {
		return err
	}

	return de.Decode(value)
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger
	if isInMemory {
		opts.InMemory = true
	}

	return badgerhold.Open(badgerhold.Options{
		Encoder:          JSONEncode,
		Decoder:          JSONDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
