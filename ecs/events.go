package ecs

// Event is a frame-scoped payload passed between systems.
type Event struct {
	Type string
	Data any
}

const (
	// EventTokenMoved fires when a token's position changed this frame.
	EventTokenMoved = "token_moved"
	// EventSelectionChanged fires when the local selection changed.
	EventSelectionChanged = "selection_changed"
	// EventManualPan fires when the viewport was panned by user input.
	EventManualPan = "manual_pan"
)

// SelectionChangedData carries the new selection in order.
type SelectionChangedData struct {
	IDs []string
}

// EventQueue is a simple FIFO queue, drained by interested systems and
// flushed at frame end.
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

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.items = nil
}
