package broadcast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/tracepanic/compyle/pkg/logger"
)

// Message is a payload delivered on a topic.
type Message[T any] struct {
	Topic string
	Data  T
}

// Handler receives messages for one subscription. A handler must not block
// for long and must not unsubscribe its own subscription synchronously.
type Handler[T any] func(ctx context.Context, msg Message[T]) error

// Bus is an in-process, topic-keyed publish/subscribe registry. It holds no
// history: a message published on a topic without subscribers is dropped.
//
// All methods are safe for concurrent use. Create one with New, share the
// handle, and call Close during shutdown.
type Bus[T any] struct {
	log *slog.Logger

	mu     sync.RWMutex
	topics map[string][]*Subscription[T]
	nextID uint64
	closed bool
}

// Option configures a Bus.
type Option func(*options)

type options struct {
	log *slog.Logger
}

// WithLogger sets the logger used to report failing handlers.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// New returns an empty, open bus.
func New[T any](opts ...Option) *Bus[T] {
	o := &options{log: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return &Bus[T]{
		log:    o.log.With(logger.Component("broadcast")),
		topics: make(map[string][]*Subscription[T]),
	}
}

// Subscribe registers h on topic. The returned subscription is the only way
// to remove it again.
func (b *Bus[T]) Subscribe(topic string, h Handler[T]) (*Subscription[T], error) {
	if topic == "" {
		return nil, ErrEmptyTopic
	}
	if h == nil {
		return nil, ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBusClosed
	}

	b.nextID++
	sub := &Subscription[T]{
		id:      b.nextID,
		topic:   topic,
		bus:     b,
		handler: h,
		done:    make(chan struct{}),
	}

	// Copy on write: a publisher holding the previous slice keeps iterating
	// a consistent snapshot.
	current := b.topics[topic]
	next := make([]*Subscription[T], len(current), len(current)+1)
	copy(next, current)
	b.topics[topic] = append(next, sub)

	return sub, nil
}

// Unsubscribe removes sub from the bus. When it returns, the handler is not
// running and will never be invoked again. Calling it more than once is a
// no-op.
func (b *Bus[T]) Unsubscribe(sub *Subscription[T]) {
	if sub == nil || sub.bus != b {
		return
	}

	b.mu.Lock()
	current := b.topics[sub.topic]
	next := make([]*Subscription[T], 0, len(current))
	for _, s := range current {
		if s != sub {
			next = append(next, s)
		}
	}
	if len(next) == 0 {
		delete(b.topics, sub.topic)
	} else {
		b.topics[sub.topic] = next
	}
	b.mu.Unlock()

	sub.close()
}

// Publish delivers data to every subscriber of topic registered at the time
// of the call, in subscription order. A failing or panicking handler is
// logged and skipped; the rest still receive the message. The returned error
// joins ErrDeliveryFailed with the individual handler errors.
func (b *Bus[T]) Publish(ctx context.Context, topic string, data T) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	snapshot := b.topics[topic]
	b.mu.RUnlock()

	msg := Message[T]{Topic: topic, Data: data}

	var errs []error
	for _, sub := range snapshot {
		if err := sub.deliver(ctx, msg); err != nil {
			b.log.LogAttrs(ctx, slog.LevelWarn, "subscriber failed to handle message",
				logger.Topic(topic),
				slog.Uint64("subscription", sub.id),
				logger.Error(err),
			)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrDeliveryFailed}, errs...)...)
	}
	return nil
}

// SubscriberCount reports the number of live subscriptions on topic.
func (b *Bus[T]) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// Topics lists topics with at least one subscriber, sorted.
func (b *Bus[T]) Topics() []string {
	b.mu.RLock()
	topics := make([]string, 0, len(b.topics))
	for t := range b.topics {
		topics = append(topics, t)
	}
	b.mu.RUnlock()

	sort.Strings(topics)
	return topics
}

// Close detaches every subscription and rejects further Subscribe and
// Publish calls. Idempotent.
func (b *Bus[T]) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	topics := b.topics
	b.topics = make(map[string][]*Subscription[T])
	b.mu.Unlock()

	for _, subs := range topics {
		for _, sub := range subs {
			sub.close()
		}
	}
	return nil
}

// Subscription is the handle returned by Subscribe.
type Subscription[T any] struct {
	id      uint64
	topic   string
	bus     *Bus[T]
	handler Handler[T]

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func (s *Subscription[T]) Topic() string { return s.topic }

// Done is closed once the subscription has been removed, either through
// Unsubscribe or because the bus was closed.
func (s *Subscription[T]) Done() <-chan struct{} { return s.done }

// Close is shorthand for Unsubscribe.
func (s *Subscription[T]) Close() {
	s.bus.Unsubscribe(s)
}

func (s *Subscription[T]) deliver(ctx context.Context, msg Message[T]) (err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return s.handler(ctx, msg)
}

// close waits for an in-flight delivery to finish before marking the
// subscription closed.
func (s *Subscription[T]) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
}
