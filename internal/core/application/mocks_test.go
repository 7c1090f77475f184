package application_test

import (
	"context"
	"errors"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
	assetledger "github.com/tdex-network/tdex-otc/internal/infrastructure/asset-ledger"
)

var errTransferRejected = errors.New("transfer rejected")

// **** EventPublisher ****

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishEvent(
	ctx context.Context, event *domain.Event,
) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockPublisher) Close() {
	m.Called()
}

// events returns the events published so far, in order.
func (m *mockPublisher) events() []*domain.Event {
	events := make([]*domain.Event, 0)
	for _, call := range m.Calls {
		if call.Method != "PublishEvent" {
			continue
		}
		events = append(events, call.Arguments.Get(1).(*domain.Event))
	}
	return events
}

func (m *mockPublisher) eventTypes() []domain.EventType {
	types := make([]domain.EventType, 0)
	for _, e := range m.events() {
		types = append(types, e.Type)
	}
	return types
}

// blockingPublisher holds every event of the given type until unblocked.
type blockingPublisher struct {
	eventType domain.EventType
	started   chan struct{}
	unblock   chan struct{}
	once      sync.Once

	// ctxErr is the error of the publishing context once unblocked.
	ctxErr error
}

func newBlockingPublisher(eventType domain.EventType) *blockingPublisher {
	return &blockingPublisher{
		eventType: eventType,
		started:   make(chan struct{}),
		unblock:   make(chan struct{}),
	}
}

func (p *blockingPublisher) PublishEvent(
	ctx context.Context, event *domain.Event,
) error {
	if event.Type != p.eventType {
		return nil
	}
	p.once.Do(func() { close(p.started) })
	<-p.unblock
	p.ctxErr = ctx.Err()
	return nil
}

func (p *blockingPublisher) Close() {}

// **** AssetTransfer ****

// faultyTransfer wraps a ledger and rejects any outgoing transfer to the
// given account while failing is set.
type faultyTransfer struct {
	*assetledger.Ledger

	lock      sync.Mutex
	failOutTo domain.Account
}

func (f *faultyTransfer) failOutgoingTo(account domain.Account) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.failOutTo = account
}

func (f *faultyTransfer) TransferOut(
	ctx context.Context, asset domain.Asset, to domain.Account, amount uint64,
) error {
	f.lock.Lock()
	fail := !f.failOutTo.IsZero() && f.failOutTo == to
	f.lock.Unlock()

	if fail {
		return errTransferRejected
	}
	return f.Ledger.TransferOut(ctx, asset, to, amount)
}
