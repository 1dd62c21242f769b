package runguard

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisGuard holds the per-user import slot via SET NX with a TTL, so an
// orphaned run frees the slot on its own. A random ownership value and a
// Lua release script keep one server from freeing another's slot.
type RedisGuard struct {
	client *redis.Client
	key    string
	value  string
	ttl    time.Duration
}

// NewRedisGuard creates the Redis-backed guard for one user.
func NewRedisGuard(client *redis.Client, userID string, ttl time.Duration) *RedisGuard {
	b := make([]byte, 16)
	rand.Read(b)
	return &RedisGuard{
		client: client,
		key:    fmt.Sprintf("bookmark-sync:import-run:%s", userID),
		value:  hex.EncodeToString(b),
		ttl:    ttl,
	}
}

// Acquire tries to take the guard. Returns true if successful.
func (g *RedisGuard) Acquire(ctx context.Context) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key, g.value, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire import guard %s: %w", g.key, err)
	}
	return ok, nil
}

// Release frees the slot only if we still own it.
func (g *RedisGuard) Release(ctx context.Context) error {
	script := redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`)
	_, err := script.Run(ctx, g.client, []string{g.key}, g.value).Result()
	return err
}

// Extend pushes the TTL out for a long-running import. Fails silently on
// lost ownership: the run keeps going, it just loses its exclusivity.
func (g *RedisGuard) Extend(ctx context.Context, ttl time.Duration) error {
	script := redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("pexpire", KEYS[1], ARGV[2])
		else
			return 0
		end
	`)
	_, err := script.Run(ctx, g.client, []string{g.key}, g.value, ttl.Milliseconds()).Result()
	return err
}
