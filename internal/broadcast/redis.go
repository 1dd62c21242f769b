package broadcast

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

// Channel is the Redis pub/sub channel shared by all server processes.
const Channel = "bookmark-sync:updates"

// RedisBroadcaster carries notifications across processes via Redis
// pub/sub. Like every transport here it is best-effort: Redis being down
// means the message is simply lost.
type RedisBroadcaster struct {
	rdb *redis.Client
}

// NewRedisBroadcaster creates a Redis-backed broadcaster.
func NewRedisBroadcaster(rdb *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{rdb: rdb}
}

// Publish sends the message. Failures are logged and swallowed.
func (b *RedisBroadcaster) Publish(ctx context.Context, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[broadcast] encode failed: %v", err)
		return
	}
	if err := b.rdb.Publish(ctx, Channel, payload).Err(); err != nil {
		log.Printf("[broadcast] publish failed: %v", err)
	}
}

// Subscribe listens on the channel until the context is cancelled. Bad
// payloads are skipped.
func (b *RedisBroadcaster) Subscribe(ctx context.Context, handler func(Message)) {
	sub := b.rdb.Subscribe(ctx, Channel)
	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-ch:
				if !ok {
					return
				}
				var msg Message
				if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
					log.Printf("[broadcast] bad payload: %v", err)
					continue
				}
				handler(msg)
			}
		}
	}()
}
