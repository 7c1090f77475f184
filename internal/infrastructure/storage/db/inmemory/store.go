package inmemory

import (
	"context"
	"sync"

	"github.com/tdex-network/tdex-otc/internal/core/domain"
)

type txKey struct{}

type readOnlyTx struct{}

// reader is implemented by both the committed state and a pending
// transaction, the latter falls back to the former for untouched records.
type reader interface {
	offer(id uint64) (domain.Offer, bool)
	lastOfferID() uint64
	accountOffers(account domain.Account) []uint64
	profile(account domain.Account) (domain.TraderProfile, bool)
	params() (domain.Params, bool)
}

type state struct {
	offers          map[uint64]domain.Offer
	lastID          uint64
	offersByAccount map[domain.Account][]uint64
	profiles        map[domain.Account]domain.TraderProfile
	paramsRecord    *domain.Params
}

func newState() *state {
	return &state{
		offers:          make(map[uint64]domain.Offer),
		offersByAccount: make(map[domain.Account][]uint64),
		profiles:        make(map[domain.Account]domain.TraderProfile),
	}
}

func (s *state) offer(id uint64) (domain.Offer, bool) {
	o, ok := s.offers[id]
	return o, ok
}

func (s *state) lastOfferID() uint64 {
	return s.lastID
}

func (s *state) accountOffers(account domain.Account) []uint64 {
	return append([]uint64{}, s.offersByAccount[account]...)
}

func (s *state) profile(account domain.Account) (domain.TraderProfile, bool) {
	p, ok := s.profiles[account]
	return p, ok
}

func (s *state) params() (domain.Params, bool) {
	if s.paramsRecord == nil {
		return domain.Params{}, false
	}
	return *s.paramsRecord, true
}

// memoryTx stages the changes of a write transaction. Records are stored by
// value so that nothing is shared with the committed state.
type memoryTx struct {
	base            *state
	offers          map[uint64]domain.Offer
	lastID          uint64
	offersByAccount map[domain.Account][]uint64
	profiles        map[domain.Account]domain.TraderProfile
	paramsRecord    *domain.Params
}

func newMemoryTx(base *state) *memoryTx {
	return &memoryTx{
		base:            base,
		offers:          make(map[uint64]domain.Offer),
		lastID:          base.lastID,
		offersByAccount: make(map[domain.Account][]uint64),
		profiles:        make(map[domain.Account]domain.TraderProfile),
	}
}

func (tx *memoryTx) offer(id uint64) (domain.Offer, bool) {
	if o, ok := tx.offers[id]; ok {
		return o, true
	}
	return tx.base.offer(id)
}

func (tx *memoryTx) lastOfferID() uint64 {
	return tx.lastID
}

func (tx *memoryTx) accountOffers(account domain.Account) []uint64 {
	return append(tx.base.accountOffers(account), tx.offersByAccount[account]...)
}

func (tx *memoryTx) profile(account domain.Account) (domain.TraderProfile, bool) {
	if p, ok := tx.profiles[account]; ok {
		return p, true
	}
	return tx.base.profile(account)
}

func (tx *memoryTx) params() (domain.Params, bool) {
	if tx.paramsRecord != nil {
		return *tx.paramsRecord, true
	}
	return tx.base.params()
}

func (tx *memoryTx) addOffer(offer domain.Offer) uint64 {
	tx.lastID++
	offer.ID = tx.lastID
	tx.offers[offer.ID] = offer
	tx.indexOffer(offer.Maker, offer.ID)
	return offer.ID
}

func (tx *memoryTx) indexOffer(account domain.Account, id uint64) {
	tx.offersByAccount[account] = append(tx.offersByAccount[account], id)
}

// store holds the committed state. Write transactions are serialized by
// txLock and applied to the state only at commit time.
type store struct {
	txLock sync.Mutex
	lock   sync.RWMutex
	state  *state
}

func newStore() *store {
	return &store{state: newState()}
}

func (s *store) view(ctx context.Context, fn func(r reader) error) error {
	switch tx := ctx.Value(txKey{}).(type) {
	case *memoryTx:
		return fn(tx)
	case readOnlyTx:
		return fn(s.state)
	}

	s.lock.RLock()
	defer s.lock.RUnlock()
	return fn(s.state)
}

func (s *store) update(ctx context.Context, fn func(tx *memoryTx) error) error {
	switch tx := ctx.Value(txKey{}).(type) {
	case *memoryTx:
		return fn(tx)
	case readOnlyTx:
		return ErrReadOnlyTx
	}

	s.txLock.Lock()
	defer s.txLock.Unlock()

	tx := newMemoryTx(s.state)
	if err := fn(tx); err != nil {
		return err
	}
	s.commit(tx)
	return nil
}

func (s *store) runTransaction(
	ctx context.Context,
	readOnly bool,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	// Nested transactions join the outer one.
	if ctx.Value(txKey{}) != nil {
		return handler(ctx)
	}

	if readOnly {
		s.lock.RLock()
		defer s.lock.RUnlock()
		return handler(context.WithValue(ctx, txKey{}, readOnlyTx{}))
	}

	s.txLock.Lock()
	defer s.txLock.Unlock()

	tx := newMemoryTx(s.state)
	res, err := handler(context.WithValue(ctx, txKey{}, tx))
	if err != nil {
		return nil, err
	}
	s.commit(tx)
	return res, nil
}

func (s *store) commit(tx *memoryTx) {
	s.lock.Lock()
	defer s.lock.Unlock()

	for id, o := range tx.offers {
		s.state.offers[id] = o
	}
	s.state.lastID = tx.lastID
	for account, ids := range tx.offersByAccount {
		s.state.offersByAccount[account] = append(
			s.state.offersByAccount[account], ids...,
		)
	}
	for account, p := range tx.profiles {
		s.state.profiles[account] = p
	}
	if tx.paramsRecord != nil {
		params := *tx.paramsRecord
		s.state.paramsRecord = &params
	}
}
