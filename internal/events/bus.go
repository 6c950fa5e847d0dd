package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Subscriber receives published events.
type Subscriber interface {
	Handle(ctx context.Context, e Event) error
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(ctx context.Context, e Event) error

func (f SubscriberFunc) Handle(ctx context.Context, e Event) error {
	return f(ctx, e)
}

type subscription struct {
	id    uint64
	name  string
	sub   Subscriber
	types []Type
}

func (s subscription) wants(t Type) bool {
	return len(s.types) == 0 || slices.Contains(s.types, t)
}

// Bus delivers events synchronously to subscribers in registration order.
// A failing or panicking subscriber does not prevent delivery to the rest.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
	seq    atomic.Uint64
	logger *slog.Logger
	now    func() time.Time
}

// NewBus returns an empty bus. A nil logger selects slog.Default.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Subscribe registers sub for the given types, or all types when none are
// given. The returned func removes the subscription.
func (b *Bus) Subscribe(name string, sub Subscriber, types ...Type) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, name: name, sub: sub, types: slices.Clone(types)})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.subs = slices.DeleteFunc(b.subs, func(s subscription) bool { return s.id == id })
		})
	}
}

// Len returns the number of subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish stamps e and delivers it. Subscriber failures are logged and
// returned joined.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	e.Seq = b.seq.Add(1)
	if e.OccurredAt.IsZero() {
		e.OccurredAt = b.now()
	}

	b.mu.RLock()
	subs := slices.Clone(b.subs)
	b.mu.RUnlock()

	var errs []error
	for _, s := range subs {
		if !s.wants(e.Type) {
			continue
		}
		if err := deliver(ctx, s, e); err != nil {
			b.logger.Warn("event subscriber failed", "subscriber", s.name, "event", e.Type, "seq", e.Seq, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}

func deliver(ctx context.Context, s subscription, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.sub.Handle(ctx, e)
}
