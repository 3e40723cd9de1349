// Package events provides the synchronous broadcast bus that connects the
// grid, chart controllers and views.
//
// Delivery guarantees:
//   - Dispatch calls every listener registered for the event's type, in
//     registration order, on the calling goroutine, before returning.
//   - A listener may dispatch further events; those are delivered in full
//     before the outer Dispatch continues with its remaining listeners.
//   - Listeners added or removed during a dispatch take effect for the next
//     dispatch, not the current one.
package events

import (
	"sync"
)

// Event is anything dispatched on the bus. Events are passed by value and
// must not be mutated by listeners.
type Event interface {
	EventType() string
}

// Handler receives dispatched events.
type Handler func(Event)

// Subscription is returned by Subscribe and removes the listener when
// cancelled. Unsubscribe is idempotent.
type Subscription interface {
	Unsubscribe()
}

type listener struct {
	id      uint64
	handler Handler
}

// Bus is an in-process broadcast bus. The zero value is not usable; call
// NewBus.
type Bus struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[string][]listener
	global    []listener
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[string][]listener)}
}

// Subscribe registers handler for events of the given type.
func (b *Bus) Subscribe(eventType string, handler Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	l := listener{id: b.nextID, handler: handler}
	b.listeners[eventType] = append(b.listeners[eventType], l)
	return &subscription{bus: b, eventType: eventType, id: l.id}
}

// SubscribeAll registers handler for every event. Global listeners run after
// type-specific ones.
func (b *Bus) SubscribeAll(handler Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	l := listener{id: b.nextID, handler: handler}
	b.global = append(b.global, l)
	return &subscription{bus: b, global: true, id: l.id}
}

// Dispatch delivers ev synchronously to its listeners.
func (b *Bus) Dispatch(ev Event) {
	if ev == nil {
		return
	}
	b.mu.RLock()
	typed := b.listeners[ev.EventType()]
	// Copy so handlers can subscribe/unsubscribe while we iterate.
	targets := make([]listener, 0, len(typed)+len(b.global))
	targets = append(targets, typed...)
	targets = append(targets, b.global...)
	b.mu.RUnlock()

	for _, l := range targets {
		l.handler(ev)
	}
}

// ListenerCount returns the number of listeners for eventType.
func (b *Bus) ListenerCount(eventType string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[eventType])
}

func (b *Bus) remove(eventType string, global bool, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if global {
		b.global = without(b.global, id)
		return
	}
	remaining := without(b.listeners[eventType], id)
	if len(remaining) == 0 {
		delete(b.listeners, eventType)
		return
	}
	b.listeners[eventType] = remaining
}

func without(ls []listener, id uint64) []listener {
	out := make([]listener, 0, len(ls))
	for _, l := range ls {
		if l.id != id {
			out = append(out, l)
		}
	}
	return out
}

type subscription struct {
	once      sync.Once
	bus       *Bus
	eventType string
	global    bool
	id        uint64
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.remove(s.eventType, s.global, s.id)
	})
}

// Subscriptions collects subscriptions so an owner can release them together.
type Subscriptions []Subscription

// Add appends s.
func (ss *Subscriptions) Add(s Subscription) {
	*ss = append(*ss, s)
}

// UnsubscribeAll releases every collected subscription and empties the set.
func (ss *Subscriptions) UnsubscribeAll() {
	for _, s := range *ss {
		s.Unsubscribe()
	}
	*ss = nil
}
