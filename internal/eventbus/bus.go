// Package eventbus implements the synchronous publish/subscribe dispatcher
// that connects the storefront state models with their views.
//
// Emission is depth-first: a handler that emits runs the nested emission to
// completion before the outer emission moves on to its next handler.
package eventbus

import (
	"context"
	"regexp"
	"sync"
	"sync/atomic"

	"github.com/go-faster/errors"
)

// MatchAll subscribes a handler to every event name
const MatchAll = "*"

// ErrPayloadType is returned when a typed handler receives a payload of another type
var ErrPayloadType = errors.New("unexpected event payload type")

// Empty is the payload of events emitted without one
type Empty struct{}

// Event is a single emission
type Event struct {
	Name    string
	Payload any
}

// Handler reacts to an event. A returned error stops the emission and is
// handed back to the emitter.
type Handler func(ctx context.Context, e Event) error

type subscription struct {
	id      uint64
	name    string
	match   func(name string) bool
	handler Handler
	removed atomic.Bool
}

// Subscription identifies a registered handler
type Subscription struct {
	bus  *Bus
	id   uint64
	Name string
}

// Unsubscribe removes the handler from its bus
func (s Subscription) Unsubscribe() bool {
	if s.bus == nil {
		return false
	}
	return s.bus.Unsubscribe(s)
}

// Bus dispatches events to subscribers in registration order
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []*subscription
}

// New creates an empty bus
func New() *Bus {
	return &Bus{}
}

// Subscribe registers h for events called name, or for every event when
// name is MatchAll
func (b *Bus) Subscribe(name string, h Handler) Subscription {
	if name == MatchAll {
		return b.add(name, func(string) bool { return true }, h)
	}
	return b.add(name, func(n string) bool { return n == name }, h)
}

// SubscribeAll registers h for every event
func (b *Bus) SubscribeAll(h Handler) Subscription {
	return b.Subscribe(MatchAll, h)
}

// SubscribePattern registers h for every event whose name matches re
func (b *Bus) SubscribePattern(re *regexp.Regexp, h Handler) Subscription {
	return b.add(re.String(), re.MatchString, h)
}

func (b *Bus) add(name string, match func(string) bool, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subs = append(b.subs, &subscription{
		id:      b.nextID,
		name:    name,
		match:   match,
		handler: h,
	})
	return Subscription{bus: b, id: b.nextID, Name: name}
}

// Unsubscribe removes a handler. Removing a handler while an emission is
// in flight also skips it for the rest of that emission.
func (b *Bus) Unsubscribe(s Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subs {
		if sub.id == s.id {
			sub.removed.Store(true)
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Emit synchronously invokes every handler matching name. A nil payload is
// delivered as Empty. Emitting an event nobody listens to is a no-op.
func (b *Bus) Emit(ctx context.Context, name string, payload any) error {
	if payload == nil {
		payload = Empty{}
	}
	e := Event{Name: name, Payload: payload}

	for _, sub := range b.matching(name) {
		if sub.removed.Load() {
			continue
		}
		if err := sub.handler(ctx, e); err != nil {
			return errors.Wrapf(err, "handle %s", name)
		}
	}
	return nil
}

// Len returns how many handlers an emission of name would reach
func (b *Bus) Len(name string) int {
	return len(b.matching(name))
}

// matching snapshots the handlers for name so that handlers may subscribe
// while the emission runs
func (b *Bus) matching(name string) []*subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []*subscription
	for _, sub := range b.subs {
		if sub.match(name) {
			out = append(out, sub)
		}
	}
	return out
}
