// Package semaphore provides the admission-control primitives used to bound
// concurrent outbound lookups.
//
// Counting is a classic blocking counting semaphore. Fast layers an atomic
// counter over a Counting so that uncontended Wait/Post pairs never touch a
// mutex. Weighted adapts golang.org/x/sync/semaphore to the same Admitter
// interface.
package semaphore

import "sync"

// Admitter bounds the number of callers between a Wait and its matching Post.
type Admitter interface {
	// Wait blocks until a permit is available and takes it.
	Wait()

	// Post returns a permit, waking at most one blocked Wait.
	Post()
}

// Counting is a blocking counting semaphore built on a mutex and a condition
// variable. The count has no upper bound; Post may raise it above its initial
// value. Wake order among blocked waiters is unspecified.
type Counting struct {
	mu    sync.Mutex
	cond  *sync.Cond
	count int
}

// NewCounting creates a counting semaphore holding count permits.
// It panics if count is negative.
func NewCounting(count int) *Counting {
	if count < 0 {
		panic("semaphore: negative initial count")
	}
	s := &Counting{count: count}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Wait blocks until the count is positive, then decrements it.
func (s *Counting) Wait() {
	s.mu.Lock()
	for s.count == 0 {
		s.cond.Wait()
	}
	s.count--
	s.mu.Unlock()
}

// Post increments the count and wakes at most one waiter.
func (s *Counting) Post() {
	s.mu.Lock()
	s.count++
	s.mu.Unlock()
	s.cond.Signal()
}

// permits returns the current number of available permits.
func (s *Counting) permits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}
