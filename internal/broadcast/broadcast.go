// Package broadcast carries the cross-surface "something changed" signal.
//
// Delivery is at-most-once and advisory: a listener that receives the
// message must re-read state from the durable store rather than trust
// the payload. Publish failures are swallowed; a lost notification only
// delays reconciliation until the next read.
package broadcast

import "context"

// TypeBookmarksUpdated is the one message type surfaces listen for.
const TypeBookmarksUpdated = "BOOKMARKS_UPDATED"

// Message is the broadcast payload. It intentionally carries no data
// beyond its type; the durable store is the source of truth.
type Message struct {
	Type string `json:"type"`
}

// Broadcaster publishes advisory change notifications.
type Broadcaster interface {
	// Publish sends the message best-effort. It never returns an error
	// and never blocks on slow listeners.
	Publish(ctx context.Context, msg Message)
}

// Subscriber receives advisory change notifications.
type Subscriber interface {
	// Subscribe registers a handler and returns an unsubscribe func.
	// Handlers must be fast; slow handlers may drop messages.
	Subscribe(handler func(Message)) (unsubscribe func())
}

// Noop discards everything. Used when no transport is configured.
type Noop struct{}

// Publish does nothing.
func (Noop) Publish(context.Context, Message) {}

// Multi fans a publish out to several broadcasters, mirroring the
// extension's dual path (same-origin channel plus runtime messaging).
type Multi []Broadcaster

// Publish forwards to every transport; each one is best-effort.
func (m Multi) Publish(ctx context.Context, msg Message) {
	for _, b := range m {
		b.Publish(ctx, msg)
	}
}
