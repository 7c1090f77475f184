package profilecache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/tdex-network/tdex-otc/internal/core/ports"
)

const keyPrefix = "otc:profile:"

// setProfileScript stores the profile, along with its number of outcomes, in
// a hash unless the one already stored has more outcomes.
var setProfileScript = redis.NewScript(`
local cached = redis.call('HGET', KEYS[1], 'outcomes')
if cached and tonumber(cached) > tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'outcomes', ARGV[1], 'profile', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache returns a ProfileCache shared among all the daemons
// connected to the same redis instance.
func NewRedisCache(
	ctx context.Context, addr, password string, db int, ttl time.Duration,
) (ports.ProfileCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		//nolint
		client.Close()
		return nil, err
	}
	return NewRedisCacheWithClient(client, ttl), nil
}

// NewRedisCacheWithClient is like NewRedisCache but uses the given client.
func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration) ports.ProfileCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisCache{client, ttl}
}

func key(account domain.Account) string { return keyPrefix + account.String() }

func (c *redisCache) Get(
	ctx context.Context, account domain.Account,
) (*domain.TraderProfile, bool) {
	buf, err := c.client.HGet(ctx, key(account), "profile").Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.WithError(err).Warn("cache: failed to get profile")
		}
		return nil, false
	}

	var profile domain.TraderProfile
	if err := json.Unmarshal(buf, &profile); err != nil {
		log.WithError(err).Warn("cache: failed to decode profile")
		return nil, false
	}
	return &profile, true
}

func (c *redisCache) Set(ctx context.Context, profile *domain.TraderProfile) {
	if profile == nil {
		return
	}
	buf, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := setProfileScript.Run(
		ctx, c.client, []string{key(profile.Account)},
		strconv.FormatUint(profile.Outcomes(), 10), buf, c.ttl.Milliseconds(),
	).Err(); err != nil {
		log.WithError(err).Warn("cache: failed to set profile")
	}
}
