// Package categorize groups raw items by purpose. The real grouping is a
// remote call; this package owns the policy around it: skip the call for
// trivial inputs, bound the batch size, and degrade to a local single
// "Imported" group whenever the remote side fails or is unavailable.
package categorize

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/ignite/bookmark-sync/internal/domain"
)

// Service groups items under the supplied purposes.
type Service interface {
	// Categorize returns named groups of the given items. Every returned
	// group's purpose is one of the supplied purposes. Empty items or
	// empty purposes is a no-op, not an error.
	Categorize(ctx context.Context, items []domain.RawItem, purposes []domain.Purpose) ([]domain.CategorizedGroup, error)
}

// Remote is the transport-level categorization call. Implementations
// return an error for any transport failure or non-success response.
type Remote interface {
	Categorize(ctx context.Context, items []domain.RawItem, purposes []domain.Purpose) ([]domain.CategorizedGroup, error)
}

const (
	// DefaultSmallInputThreshold is the item count below which the remote
	// call is skipped: a trivial import isn't worth the cost or latency.
	DefaultSmallInputThreshold = 4

	// DefaultMaxBatchSize bounds the number of items sent to the remote
	// call in one request.
	DefaultMaxBatchSize = 100

	// DefaultCallTimeout bounds a single remote categorization call. A
	// hanging categorizer stalls only this phase, and only this long.
	DefaultCallTimeout = 20 * time.Second
)

// PolicyOptions tunes the categorization policy. Zero values select the
// package defaults.
type PolicyOptions struct {
	SmallInputThreshold int
	MaxBatchSize        int
	CallTimeout         time.Duration
}

// Policy implements Service around a Remote, applying the small-input
// shortcut, batch truncation, a per-call timeout, and a circuit breaker
// so a flapping categorizer degrades to the fallback group without
// paying the timeout on every run.
type Policy struct {
	remote    Remote
	breaker   *gobreaker.CircuitBreaker
	threshold int
	maxBatch  int
	timeout   time.Duration
}

// NewPolicy wraps the given remote with the fallback policy.
func NewPolicy(remote Remote, opts PolicyOptions) *Policy {
	if opts.SmallInputThreshold <= 0 {
		opts.SmallInputThreshold = DefaultSmallInputThreshold
	}
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = DefaultMaxBatchSize
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}
	return &Policy{
		remote: remote,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "categorize",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 3
			},
		}),
		threshold: opts.SmallInputThreshold,
		maxBatch:  opts.MaxBatchSize,
		timeout:   opts.CallTimeout,
	}
}

// Categorize applies the policy. It never returns an error for remote
// failures; those degrade to the fallback group covering the full,
// untruncated item set.
func (p *Policy) Categorize(ctx context.Context, items []domain.RawItem, purposes []domain.Purpose) ([]domain.CategorizedGroup, error) {
	if len(items) == 0 || len(purposes) == 0 {
		return []domain.CategorizedGroup{}, nil
	}

	if len(items) < p.threshold {
		return []domain.CategorizedGroup{fallbackGroup(items, purposes[0])}, nil
	}

	batch := items
	if len(batch) > p.maxBatch {
		batch = batch[:p.maxBatch]
	}

	result, err := p.breaker.Execute(func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		return p.remote.Categorize(callCtx, batch, purposes)
	})
	if err != nil {
		log.Printf("[categorize] remote call failed, using fallback group: %v", err)
		return []domain.CategorizedGroup{fallbackGroup(items, purposes[0])}, nil
	}

	// Returned verbatim: validating that item ids are a subset of the
	// request is the registry write path's job.
	return result.([]domain.CategorizedGroup), nil
}

// fallbackGroup synthesizes the single "Imported" group used whenever the
// remote call is skipped or fails. It always covers the full item set.
func fallbackGroup(items []domain.RawItem, purpose domain.Purpose) domain.CategorizedGroup {
	return domain.CategorizedGroup{
		ID:      uuid.New().String(),
		Name:    "Imported",
		Purpose: purpose,
		Items:   items,
	}
}
