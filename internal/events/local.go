package events

import (
	"context"
	"sync"
	"sync/atomic"

	"pet-auction/utils"
)

const subscriberBuffer = 256

// LocalBus is an in-process Bus. Publish never blocks: an event is dropped
// for a subscriber whose buffer is full.
type LocalBus struct {
	mu      sync.RWMutex
	subs    map[int]chan Event
	nextID  int
	dropped atomic.Int64
}

func NewLocalBus() *LocalBus {
	return &LocalBus{subs: make(map[int]chan Event)}
}

func (b *LocalBus) Publish(_ context.Context, ev Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			n := b.dropped.Add(1)
			utils.Warn("Event dropped for slow subscriber", map[string]any{
				"subscriber": id,
				"kind":       string(ev.Kind),
				"auction_id": ev.AuctionID,
				"dropped":    n,
			})
		}
	}
	return nil
}

func (b *LocalBus) Subscribe(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		close(ch)
		b.mu.Unlock()
	}()
	return ch, nil
}

// Dropped returns how many deliveries were skipped
func (b *LocalBus) Dropped() int64 {
	return b.dropped.Load()
}

// Subscribers returns the number of live subscriptions
func (b *LocalBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

var _ Bus = (*LocalBus)(nil)
