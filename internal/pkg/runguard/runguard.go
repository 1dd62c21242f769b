// Package runguard serializes import runs per user across server
// instances. A user who triggers an import from two browser windows gets
// one run; the second request sees the guard held and is rejected.
package runguard

import (
	"context"
	"database/sql"
	"hash/fnv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guard is a single-holder lock scoped to one user's import.
// Implementations must be safe for use from a single goroutine;
// concurrent use across goroutines requires separate guard instances.
type Guard interface {
	// Acquire tries to take the guard. Returns true if this caller now
	// owns the user's import slot.
	Acquire(ctx context.Context) (bool, error)
	// Release frees the slot if we still own it.
	Release(ctx context.Context) error
}

// New creates a guard using the best available backend. Redis is
// preferred for cross-host coverage; without it, PostgreSQL advisory
// locks serialize within one database.
func New(redisClient *redis.Client, db *sql.DB, userID string, ttl time.Duration) Guard {
	if redisClient != nil {
		return NewRedisGuard(redisClient, userID, ttl)
	}
	return NewPGAdvisoryGuard(db, userID)
}

// PGAdvisoryGuard implements Guard with pg_try_advisory_lock, which is
// session-scoped: a crashed holder's lock drops with its connection,
// matching the crash-safety the Redis TTL gives.
type PGAdvisoryGuard struct {
	db     *sql.DB
	lockID int64
}

// NewPGAdvisoryGuard derives a deterministic advisory lock ID from the
// user ID.
func NewPGAdvisoryGuard(db *sql.DB, userID string) *PGAdvisoryGuard {
	h := fnv.New64a()
	h.Write([]byte("import-run:" + userID))
	return &PGAdvisoryGuard{
		db:     db,
		lockID: int64(h.Sum64()),
	}
}

// Acquire tries to take the advisory lock, returning immediately.
func (g *PGAdvisoryGuard) Acquire(ctx context.Context) (bool, error) {
	var acquired bool
	err := g.db.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", g.lockID).Scan(&acquired)
	return acquired, err
}

// Release releases the advisory lock.
func (g *PGAdvisoryGuard) Release(ctx context.Context) error {
	_, err := g.db.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", g.lockID)
	return err
}
