package capture

import (
	"fmt"
	"sync/atomic"
)

// EventKind classifies events raised on the interrupt path.
type EventKind uint8

const (
	// EventSpurious is a completion signal that arrived while not InFlight.
	EventSpurious EventKind = iota + 1
)

// Event is a fixed-size record posted from interrupt context.
type Event struct {
	Kind EventKind
	// State is the gate state observed when the event was raised.
	State State
	// Seq is the running count of events of this kind.
	Seq uint64
}

func (e Event) String() string {
	switch e.Kind {
	case EventSpurious:
		return fmt.Sprintf("spurious completion #%d while %s", e.Seq, e.State)
	default:
		return fmt.Sprintf("event %d", e.Kind)
	}
}

const eventSlots = 8

type eventSlot struct {
	// seq is pos+1 once the slot for position pos has been written.
	seq atomic.Uint32
	ev  Event
}

// eventRing is a fixed-size multi-producer, single-consumer queue.
// post never blocks or allocates; when full the event is dropped and counted.
type eventRing struct {
	head    atomic.Uint32
	tail    atomic.Uint32
	dropped atomic.Uint64
	slots   [eventSlots]eventSlot
}

func (r *eventRing) post(ev Event) bool {
	for {
		head := r.head.Load()
		if head-r.tail.Load() >= eventSlots {
			r.dropped.Add(1)
			return false
		}
		if r.head.CompareAndSwap(head, head+1) {
			s := &r.slots[head%eventSlots]
			s.ev = ev
			s.seq.Store(head + 1)
			return true
		}
	}
}

func (r *eventRing) take() (Event, bool) {
	tail := r.tail.Load()
	s := &r.slots[tail%eventSlots]
	if s.seq.Load() != tail+1 {
		return Event{}, false
	}
	ev := s.ev
	r.tail.Store(tail + 1)
	return ev, true
}

// DroppedEvents reports events lost because the main loop fell behind.
func (m *Machine) DroppedEvents() uint64 {
	return m.events.dropped.Load()
}
