package testutil

import (
	"sync"

	"github.com/vanderheijden86/gridchart/pkg/events"
	"github.com/vanderheijden86/gridchart/pkg/model"
)

// RangeWrite is one recorded SetCellRanges call.
type RangeWrite struct {
	Owner  string
	Ranges []model.CellRange
}

// RangeRecorder is an in-memory range service that remembers every write.
type RangeRecorder struct {
	mu     sync.Mutex
	Writes []RangeWrite
	ranges map[string][]model.CellRange
}

// NewRangeRecorder returns an empty recorder.
func NewRangeRecorder() *RangeRecorder {
	return &RangeRecorder{ranges: make(map[string][]model.CellRange)}
}

// SetCellRanges records the write and stores the owner's ranges.
func (r *RangeRecorder) SetCellRanges(owner string, ranges []model.CellRange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Writes = append(r.Writes, RangeWrite{Owner: owner, Ranges: model.CloneRanges(ranges)})
	if len(ranges) == 0 {
		delete(r.ranges, owner)
		return
	}
	r.ranges[owner] = model.CloneRanges(ranges)
}

// CellRanges returns the owner's current ranges.
func (r *RangeRecorder) CellRanges(owner string) []model.CellRange {
	r.mu.Lock()
	defer r.mu.Unlock()
	return model.CloneRanges(r.ranges[owner])
}

// Put stores ranges for owner without recording a write, as if the user had
// edited them in the grid.
func (r *RangeRecorder) Put(owner string, ranges []model.CellRange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ranges[owner] = model.CloneRanges(ranges)
}

// WriteCount returns the number of recorded writes.
func (r *RangeRecorder) WriteCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Writes)
}

// LastWrite returns the most recent write.
func (r *RangeRecorder) LastWrite() (RangeWrite, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Writes) == 0 {
		return RangeWrite{}, false
	}
	return r.Writes[len(r.Writes)-1], true
}

// Reset forgets recorded writes but keeps stored ranges.
func (r *RangeRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Writes = nil
}

// EventRecorder captures every event dispatched on a bus.
type EventRecorder struct {
	mu     sync.Mutex
	events []events.Event
	sub    events.Subscription
}

// RecordEvents subscribes a recorder to every event on bus.
func RecordEvents(bus *events.Bus) *EventRecorder {
	rec := &EventRecorder{}
	rec.sub = bus.SubscribeAll(func(ev events.Event) {
		rec.mu.Lock()
		rec.events = append(rec.events, ev)
		rec.mu.Unlock()
	})
	return rec
}

// Events returns the recorded events in dispatch order.
func (r *EventRecorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

// Types returns the recorded event types, optionally filtered to the given
// types.
func (r *EventRecorder) Types(only ...string) []string {
	keep := make(map[string]bool, len(only))
	for _, t := range only {
		keep[t] = true
	}
	var out []string
	for _, ev := range r.Events() {
		if len(only) == 0 || keep[ev.EventType()] {
			out = append(out, ev.EventType())
		}
	}
	return out
}

// Count returns how many events of eventType were recorded.
func (r *EventRecorder) Count(eventType string) int {
	return len(r.Types(eventType))
}

// Reset forgets recorded events.
func (r *EventRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Stop unsubscribes the recorder.
func (r *EventRecorder) Stop() {
	r.sub.Unsubscribe()
}
