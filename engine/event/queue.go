package event

import "sync"

// Queue is a FIFO of events with any number of producers and a single consumer.
// Window callbacks push; the frame loop drains once per frame before updating the camera,
// which serializes input mutation with rendering.
type Queue struct {
	mu            sync.Mutex
	events        []Event
	redrawPending bool
}

// NewQueue creates an empty Queue.
//
// Returns:
//   - *Queue: the queue
func NewQueue() *Queue {
	return &Queue{events: make([]Event, 0, 64)}
}

// Push appends an event. Consecutive RedrawTickEvents are coalesced until the next Drain.
//
// Parameters:
//   - e: the event to append
func (q *Queue) Push(e Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := e.(RedrawTickEvent); ok {
		if q.redrawPending {
			return
		}
		q.redrawPending = true
	}
	q.events = append(q.events, e)
}

// Drain removes and returns every queued event in arrival order.
//
// Returns:
//   - []Event: the queued events, or nil when empty
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return nil
	}
	out := make([]Event, len(q.events))
	copy(out, q.events)
	q.events = q.events[:0]
	q.redrawPending = false
	return out
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
