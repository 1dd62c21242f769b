// Package cache implements the fast read tiers in front of the durable
// workspace store.
//
// Three planes trade latency against freshness:
//
//   - Seed (tier 1a): a synchronous in-process snapshot, read before any
//     asynchronous work completes. May be stale. A miss is a clean
//     "no data" answer, never an error.
//   - Warm (tier 1b): a short-lived Redis snapshot refreshed on every
//     successful write, used to reconcile after the seed is shown.
//   - The durable store itself lives in repository/postgres and is not
//     this package's concern.
//
// A minimal groups index (id and display name only) is cached separately
// for list surfaces that don't need bookmark payloads.
//
// The single write rule: tiers are only ever overwritten with a non-empty
// group set. An empty result never clobbers a previously populated cache.
// Tier write failures are logged and swallowed; losing a cache write must
// not break a user-visible import.
package cache
