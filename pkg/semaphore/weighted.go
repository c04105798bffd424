package semaphore

import (
	"context"

	xsem "golang.org/x/sync/semaphore"
)

// Weighted is an Admitter backed by golang.org/x/sync/semaphore. Unlike Fast
// and Counting it is bounded: a Post without a matching Wait panics.
type Weighted struct {
	sem *xsem.Weighted
}

// NewWeighted creates a Weighted admitter with permits permits.
func NewWeighted(permits int) *Weighted {
	return &Weighted{sem: xsem.NewWeighted(int64(permits))}
}

// Wait takes one permit, blocking until one is free.
func (w *Weighted) Wait() {
	// Acquire only fails when the context is done.
	_ = w.sem.Acquire(context.Background(), 1)
}

// Post returns one permit.
func (w *Weighted) Post() {
	w.sem.Release(1)
}

// tryWait takes a permit if one is immediately free.
func (w *Weighted) tryWait() bool {
	return w.sem.TryAcquire(1)
}

// New returns the Admitter named by kind ("fast" or "weighted") holding
// permits permits. Unknown kinds fall back to Fast.
func New(kind string, permits int) Admitter {
	if kind == KindWeighted {
		return NewWeighted(permits)
	}
	return NewFast(permits)
}

// Admitter kinds accepted by New.
const (
	KindFast     = "fast"
	KindWeighted = "weighted"
)
