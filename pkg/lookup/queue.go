package lookup

import "sync"

// Queue is the FIFO of identifiers waiting for a request attempt.
// It is safe for concurrent use.
type Queue struct {
	mu    sync.Mutex
	items []string
	head  int
}

// NewQueue creates a queue holding ids in order.
func NewQueue(ids []string) *Queue {
	items := make([]string, len(ids))
	copy(items, ids)
	return &Queue{items: items}
}

// Dequeue removes and returns the identifier at the front.
// ok is false when the queue is empty.
func (q *Queue) Dequeue() (id string, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head == len(q.items) {
		return "", false
	}
	id = q.items[q.head]
	q.items[q.head] = ""
	q.head++

	// Reclaim the consumed prefix once it dominates the slice.
	if q.head > 64 && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		q.items = q.items[:n]
		q.head = 0
	}
	return id, true
}

// Enqueue appends id to the back of the queue.
func (q *Queue) Enqueue(id string) {
	q.mu.Lock()
	q.items = append(q.items, id)
	q.mu.Unlock()
}

// Len returns the number of queued identifiers.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}
