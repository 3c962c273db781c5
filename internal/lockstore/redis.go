// Package lockstore provides the seat lock stores consumed by the
// reservation controller: a Redis store for multi-node deployments and
// an in-process store for a single node.
package lockstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLockStoreUnavailable wraps transport failures talking to the store.
var ErrLockStoreUnavailable = errors.New("lock store unavailable")

// releaseScript deletes KEYS[1] only while it still holds ARGV[1], so a
// late release never removes a lock another holder took after expiry.
var releaseScript = redis.NewScript(`
    if redis.call('GET', KEYS[1]) == ARGV[1] then
        return redis.call('DEL', KEYS[1])
    end
    return 0
`)

// RedisStore keeps locks as plain Redis strings: key -> holder, with a
// TTL set atomically on creation.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore returns a RedisStore using rdb.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	if rdb == nil {
		panic("nil redis client passed to NewRedisStore")
	}
	return &RedisStore{rdb: rdb}
}

// Acquire runs SET key holder NX EX ttl.
func (s *RedisStore) Acquire(ctx context.Context, key, holder string, ttl time.Duration) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, key, holder, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: acquire %s: %v", ErrLockStoreUnavailable, key, err)
	}
	return ok, nil
}

// Peek returns the current holder of key.
func (s *RedisStore) Peek(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: peek %s: %v", ErrLockStoreUnavailable, key, err)
	}
	return v, true, nil
}

// PeekMany returns the holders of every live lock among keys in one
// MGET round trip.  Absent keys are left out of the map.
func (s *RedisStore) PeekMany(ctx context.Context, keys []string) (map[string]string, error) {
	out := make(map[string]string)
	if len(keys) == 0 {
		return out, nil
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: mget %d keys: %v", ErrLockStoreUnavailable, len(keys), err)
	}
	for i, v := range vals {
		if holder, ok := v.(string); ok {
			out[keys[i]] = holder
		}
	}
	return out, nil
}

// Release deletes key if holder still owns it.  Releasing a lock that
// expired or changed hands is not an error.
func (s *RedisStore) Release(ctx context.Context, key, holder string) error {
	if err := releaseScript.Run(ctx, s.rdb, []string{key}, holder).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: release %s: %v", ErrLockStoreUnavailable, key, err)
	}
	return nil
}
