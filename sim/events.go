package sim

import (
	"github.com/google/uuid"
	"github.com/milk9111/navsim/species"
)

// EventKind identifies simulation events.
type EventKind string

const (
	EventConversion EventKind = "conversion"
	EventGameOver   EventKind = "game_over"
)

// Event is raised by a system during a step. From and To are set for
// conversions, Winner for game over.
type Event struct {
	Kind   EventKind
	Tick   int
	Agent  uuid.UUID
	From   species.ID
	To     species.ID
	Winner species.ID
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}
