package broadcast

import (
	"context"
	"sync"
)

// Hub is the in-process transport: surfaces running inside the same
// process subscribe directly. Slow subscribers are skipped, keeping the
// at-most-once contract honest.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Message
}

// NewHub creates an empty in-process hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Message)}
}

// Publish delivers to every subscriber whose buffer has room. Full
// buffers drop the message rather than block the publisher.
func (h *Hub) Publish(_ context.Context, msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Subscribe registers a handler. The returned func removes it.
func (h *Hub) Subscribe(handler func(Message)) func() {
	ch := make(chan Message, 8)
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		for {
			select {
			case msg := <-ch:
				handler(msg)
			case <-done:
				return
			}
		}
	}()

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
		close(done)
	}
}
