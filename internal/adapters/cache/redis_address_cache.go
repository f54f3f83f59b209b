package cache

import (
	"context"
	"delivery-insertion-planner/internal/platform/obs"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const addressKeyPrefix = "planner:address:"

// RedisAddressCache shares resolved addresses between planner instances.
// Entries expire after TTL; zero keeps them forever.
type RedisAddressCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisAddressCache(client *redis.Client, ttl time.Duration) *RedisAddressCache {
	return &RedisAddressCache{Client: client, TTL: ttl}
}

func (r *RedisAddressCache) GetMany(ctx context.Context, keys []string) (_ map[string]string, err error) {
	defer obs.Time(ctx, "address.cache.redis.GetMany")(&err)

	if r.Client == nil {
		return nil, errors.New("address cache: redis client is nil")
	}

	uniq := uniqueKeys(keys)
	if len(uniq) == 0 {
		return map[string]string{}, nil
	}

	redisKeys := make([]string, 0, len(uniq))
	for _, k := range uniq {
		redisKeys = append(redisKeys, addressKeyPrefix+k)
	}

	vals, err := r.Client.MGet(ctx, redisKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get address cache: mget: %w", err)
	}

	out := make(map[string]string, len(uniq))
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[uniq[i]] = s
		}
	}
	return out, nil
}

func (r *RedisAddressCache) PutMany(ctx context.Context, addresses map[string]string) error {
	if r.Client == nil {
		return errors.New("address cache: redis client is nil")
	}

	if len(addresses) == 0 {
		return nil
	}

	pipe := r.Client.TxPipeline()
	for key, addr := range addresses {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("insert address cache: empty coordinate key")
		}
		pipe.Set(ctx, addressKeyPrefix+key, addr, r.TTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert address cache: exec pipeline: %w", err)
	}
	return nil
}
