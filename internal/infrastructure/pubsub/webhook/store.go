package webhookpubsub

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/dgraph-io/badger/v3"
	dbbadger "github.com/tdex-network/tdex-otc/internal/infrastructure/storage/db/badger"
	"github.com/timshannon/badgerhold/v4"
)

const webhooksDir = "webhooks"

// SubscriptionStore persists the webhook subscriptions.
type SubscriptionStore interface {
	Add(sub Subscription) error
	// Get returns ErrSubscriptionNotFound if no subscription has the id.
	Get(id string) (*Subscription, error)
	Remove(id string) error
	// List returns all subscriptions sorted by id.
	List() ([]Subscription, error)
	Close() error
}

type inMemoryStore struct {
	lock *sync.RWMutex
	subs map[string]Subscription
}

// NewInMemoryStore returns a SubscriptionStore that does not survive
// restarts.
func NewInMemoryStore() SubscriptionStore {
	return &inMemoryStore{
		lock: &sync.RWMutex{},
		subs: make(map[string]Subscription),
	}
}

func (s *inMemoryStore) Add(sub Subscription) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.subs[sub.ID]; ok {
		return nil
	}
	s.subs[sub.ID] = sub
	return nil
}

func (s *inMemoryStore) Get(id string) (*Subscription, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	sub, ok := s.subs[id]
	if !ok {
		return nil, ErrSubscriptionNotFound
	}
	return &sub, nil
}

func (s *inMemoryStore) Remove(id string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.subs[id]; !ok {
		return ErrSubscriptionNotFound
	}
	delete(s.subs, id)
	return nil
}

func (s *inMemoryStore) List() ([]Subscription, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	subs := make([]Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].ID < subs[j].ID
	})
	return subs, nil
}

func (s *inMemoryStore) Close() error { return nil }

type badgerStore struct {
	store *badgerhold.Store
}

// NewBadgerStore returns a SubscriptionStore persisted in a badger db under
// the given datadir.
func NewBadgerStore(datadir string, logger badger.Logger) (SubscriptionStore, error) {
	opts := badger.DefaultOptions(filepath.Join(datadir, webhooksDir))
	opts.Logger = logger

	store, err := badgerhold.Open(badgerhold.Options{
		Encoder: dbbadger.JSONEncode,
		Decoder: dbbadger.JSONDecode,
		Options: opts,
	})
	if err != nil {
		return nil, fmt.Errorf("opening webhooks db: %w", err)
	}
	return &badgerStore{store}, nil
}

func (s *badgerStore) Add(sub Subscription) error {
	err := s.store.Insert(sub.ID, sub)
	if errors.Is(err, badgerhold.ErrKeyExists) {
		return nil
	}
	return err
}

func (s *badgerStore) Get(id string) (*Subscription, error) {
	var sub Subscription
	if err := s.store.Get(id, &sub); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (s *badgerStore) Remove(id string) error {
	err := s.store.Delete(id, Subscription{})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return ErrSubscriptionNotFound
	}
	return err
}

func (s *badgerStore) List() ([]Subscription, error) {
	var subs []Subscription
	if err := s.store.Find(&subs, (&badgerhold.Query{}).SortBy("ID")); err != nil {
		return nil, err
	}
	return subs, nil
}

func (s *badgerStore) Close() error {
	return s.store.Close()
}
