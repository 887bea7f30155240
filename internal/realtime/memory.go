package realtime

import (
	"context"
	"log/slog"
	"sync"
)

type memorySub struct {
	ch   chan Event
	done chan struct{}
}

// MemoryBroker delivers events inside a single process. Used when Redis is
// not configured and in tests.
type MemoryBroker struct {
	mu     sync.RWMutex
	topics map[string]map[*memorySub]struct{}
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{topics: make(map[string]map[*memorySub]struct{})}
}

func (b *MemoryBroker) Name() string { return "memory" }

func (b *MemoryBroker) Ping(context.Context) error { return nil }

func (b *MemoryBroker) Publish(_ context.Context, topic, eventType string, payload interface{}) error {
	ev, err := newEvent(eventType, payload)
	if err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.topics[topic] {
		select {
		case sub.ch <- ev:
		default:
			slog.Warn("dropping event for slow subscriber", "topic", topic, "type", eventType)
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	sub := &memorySub{ch: make(chan Event, subBuffer), done: make(chan struct{})}

	b.mu.Lock()
	if b.topics[topic] == nil {
		b.topics[topic] = make(map[*memorySub]struct{})
	}
	b.topics[topic][sub] = struct{}{}
	b.mu.Unlock()

	s := &Subscription{C: sub.ch}
	s.release = func() {
		b.mu.Lock()
		delete(b.topics[topic], sub)
		if len(b.topics[topic]) == 0 {
			delete(b.topics, topic)
		}
		close(sub.ch)
		b.mu.Unlock()
		close(sub.done)
	}

	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-sub.done:
		}
	}()
	return s, nil
}

// Subscribers reports the number of live subscriptions on topic.
func (b *MemoryBroker) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

func (b *MemoryBroker) Close() error { return nil }
