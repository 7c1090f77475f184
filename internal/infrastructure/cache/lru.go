package profilecache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/tdex-network/tdex-otc/internal/core/ports"
)

const (
	DefaultSize = 1024
	DefaultTTL  = time.Minute
)

type lruCache struct {
	lock  sync.Mutex
	cache *expirable.LRU[domain.Account, domain.TraderProfile]
}

// NewLRUCache returns an in-process ProfileCache keeping at most size
// profiles, each for at most ttl.
func NewLRUCache(size int, ttl time.Duration) ports.ProfileCache {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &lruCache{
		cache: expirable.NewLRU[domain.Account, domain.TraderProfile](size, nil, ttl),
	}
}

func (c *lruCache) Get(
	_ context.Context, account domain.Account,
) (*domain.TraderProfile, bool) {
	profile, ok := c.cache.Get(account)
	if !ok {
		return nil, false
	}
	return &profile, true
}

func (c *lruCache) Set(_ context.Context, profile *domain.TraderProfile) {
	if profile == nil {
		return
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	cached, ok := c.cache.Peek(profile.Account)
	if ok && cached.Outcomes() > profile.Outcomes() {
		return
	}
	c.cache.Add(profile.Account, *profile)
}
