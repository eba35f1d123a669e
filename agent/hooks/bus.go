// Package hooks implements the synchronous fan-out event bus. Delivery
// within one Publish call happens in subscriber-registration order; a
// misbehaving subscriber cannot break control flow because its error is
// passed to the bus's optional ErrorHandler (and discarded when none is
// set) rather than propagated.
package hooks

import (
	"context"
	"errors"
	"sync"
)

var errNilSubscriber = errors.New("hooks: nil subscriber")

type (
	// Bus publishes runtime events to registered subscribers in a fan-out
	// pattern. The bus is thread-safe and supports concurrent Publish and
	// Register calls. Unlike a request/response call, Publish never fails the
	// caller: subscriber errors are reported to an ErrorHandler (if set) and
	// otherwise swallowed, so a telemetry or memory subscriber can never
	// abort the agent run that triggered the event.
	Bus interface {
		// Publish delivers event to every currently registered subscriber, in
		// registration order. The context is forwarded to each subscriber's
		// HandleEvent method.
		Publish(ctx context.Context, event Event)
		// Register adds a subscriber to the bus and returns a Subscription
		// that can be closed to unregister.
		Register(sub Subscriber) (Subscription, error)
	}

	// Subscriber reacts to published runtime events.
	Subscriber interface {
		// HandleEvent processes a single event. An error return is reported
		// to the bus's ErrorHandler but never halts delivery to the
		// remaining subscribers; subscribers must be re-entrant, since the
		// bus holds no lock across delivery.
		HandleEvent(ctx context.Context, event Event) error
	}

	// SubscriberFunc adapts a plain function to the Subscriber interface.
	SubscriberFunc func(ctx context.Context, event Event) error

	// Subscription represents an active registration on a Bus. Close is
	// idempotent and safe for concurrent use.
	Subscription interface {
		Close() error
	}

	// ErrorHandler is invoked when a subscriber's HandleEvent returns an
	// error. It receives the offending event and subscriber error.
	ErrorHandler func(ctx context.Context, event Event, err error)

	bus struct {
		mu           sync.RWMutex
		subscribers  []*subscription
		errorHandler ErrorHandler
	}

	subscription struct {
		bus     *bus
		sub     Subscriber
		mu      sync.Mutex
		removed bool
	}
)

func (f SubscriberFunc) HandleEvent(ctx context.Context, event Event) error { return f(ctx, event) }

// NewBus constructs a new in-memory event bus. onError, if non-nil, is
// called whenever a subscriber's HandleEvent returns an error; a nil
// onError silently discards subscriber errors.
func NewBus(onError ErrorHandler) Bus {
	return &bus{errorHandler: onError}
}

// Publish delivers event to every currently registered subscriber in
// registration order. The subscriber slice is snapshotted before iteration
// begins, so a subscriber registered during Publish is not part of the
// in-flight delivery; a subscription closed during Publish is skipped if
// delivery has not reached it yet.
func (b *bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	subs := make([]*subscription, len(b.subscribers))
	copy(subs, b.subscribers)
	handler := b.errorHandler
	b.mu.RUnlock()

	for _, s := range subs {
		if s.isClosed() {
			continue
		}
		if err := s.sub.HandleEvent(ctx, event); err != nil && handler != nil {
			handler(ctx, event, err)
		}
	}
}

// Register adds a subscriber to the bus and returns a Subscription handle
// that can be closed to unregister.
func (b *bus) Register(sub Subscriber) (Subscription, error) {
	if sub == nil {
		return nil, errNilSubscriber
	}
	s := &subscription{bus: b, sub: sub}
	b.mu.Lock()
	b.subscribers = append(b.subscribers, s)
	b.mu.Unlock()
	return s, nil
}

func (s *subscription) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removed
}

// Close unregisters the subscription. Calling Close more than once is a
// no-op after the first call.
func (s *subscription) Close() error {
	s.mu.Lock()
	if s.removed {
		s.mu.Unlock()
		return nil
	}
	s.removed = true
	s.mu.Unlock()

	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, existing := range b.subscribers {
		if existing == s {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			break
		}
	}
	return nil
}
