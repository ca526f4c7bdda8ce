package authsync

import (
	"context"
	"sync"
)

// MemoryBroadcaster is a process-local Broadcaster for tests and single-node
// deployments. Slow subscribers lose messages rather than block publishers,
// matching the at-most-once contract.
type MemoryBroadcaster struct {
	mu      sync.Mutex
	nextID  int
	subs    map[int]chan State
	last    State
	hasLast bool
}

func NewMemoryBroadcaster() *MemoryBroadcaster {
	return &MemoryBroadcaster{subs: make(map[int]chan State)}
}

func (b *MemoryBroadcaster) Publish(_ context.Context, s State) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.last = s
	b.hasLast = true
	for _, ch := range b.subs {
		select {
		case ch <- s:
		default:
		}
	}
	return nil
}

func (b *MemoryBroadcaster) Subscribe(_ context.Context) (<-chan State, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan State, 16)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
	return ch, cancel, nil
}

func (b *MemoryBroadcaster) Last() (State, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last, b.hasLast
}
