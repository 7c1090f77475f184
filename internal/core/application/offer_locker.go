package application

import "sync"

// offerLocker serializes operations on the same offer while letting
// operations on different offers proceed in parallel.
type offerLocker struct {
	lock  sync.Mutex
	locks map[uint64]*offerLock
}

type offerLock struct {
	sync.Mutex
	refs int
}

func newOfferLocker() *offerLocker {
	return &offerLocker{locks: make(map[uint64]*offerLock)}
}

// acquire blocks until the lock for the given offer is free and returns the
// function to release it. Calling release more than once is a no-op.
func (l *offerLocker) acquire(id uint64) func() {
	l.lock.Lock()
	ol, ok := l.locks[id]
	if !ok {
		ol = &offerLock{}
		l.locks[id] = ol
	}
	ol.refs++
	l.lock.Unlock()

	ol.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			ol.Unlock()

			l.lock.Lock()
			ol.refs--
			if ol.refs == 0 {
				delete(l.locks, id)
			}
			l.lock.Unlock()
		})
	}
}
