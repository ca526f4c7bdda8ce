package authsync

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

const defaultChannel = "authsync:state"

// RedisBroadcaster fans auth-state changes out across API instances using
// Redis pub/sub. Redis does not retain messages, so Last reflects only what
// this process has published or observed since it started.
type RedisBroadcaster struct {
	rdb     *redis.Client
	channel string

	mu      sync.Mutex
	last    State
	hasLast bool
}

func NewRedisBroadcaster(rdb *redis.Client, channel string) (*RedisBroadcaster, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if channel == "" {
		channel = defaultChannel
	}
	return &RedisBroadcaster{rdb: rdb, channel: channel}, nil
}

func (b *RedisBroadcaster) Publish(ctx context.Context, s State) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal auth state: %w", err)
	}
	if err := b.rdb.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish auth state: %w", err)
	}
	// Record only states the peers were actually told about; a failed publish
	// must not surface through Last.
	b.observe(s)
	return nil
}

func (b *RedisBroadcaster) Subscribe(ctx context.Context) (<-chan State, func(), error) {
	sub := b.rdb.Subscribe(ctx, b.channel)
	// Confirm the subscription before handing out the channel so no publish
	// between "subscribe requested" and "subscribe active" is silently lost.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("subscribe auth state: %w", err)
	}

	out := make(chan State, 16)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var s State
			if err := json.Unmarshal([]byte(msg.Payload), &s); err != nil {
				continue
			}
			b.observe(s)
			select {
			case out <- s:
			default:
				// Slow consumer: drop, at-most-once.
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() { _ = sub.Close() })
	}
	return out, cancel, nil
}

func (b *RedisBroadcaster) Last() (State, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last, b.hasLast
}

func (b *RedisBroadcaster) observe(s State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.hasLast || s.NewerThan(b.last) {
		b.last = s
		b.hasLast = true
	}
}
