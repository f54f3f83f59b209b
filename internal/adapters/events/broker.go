package events

import (
	"context"
	"delivery-insertion-planner/internal/ports"
	"sync"
)

const subscriberBuffer = 16

// Broker fans progress out to in-process subscribers. Slow subscribers
// miss events rather than block the publisher.
type Broker struct {
	mu   sync.Mutex
	subs map[chan ports.Progress]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: map[chan ports.Progress]struct{}{}}
}

func (b *Broker) Subscribe(ctx context.Context) (<-chan ports.Progress, func()) {
	ch := make(chan ports.Progress, subscriberBuffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

func (b *Broker) Report(ctx context.Context, p ports.Progress) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		select {
		case ch <- p:
		default:
		}
	}
}
