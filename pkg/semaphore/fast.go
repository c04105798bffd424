package semaphore

import "sync/atomic"

// Fast is a hybrid semaphore. Wait and Post adjust a signed atomic counter and
// only fall back to the internal Counting semaphore when a caller has to park.
//
// A non-negative counter is the number of free permits. A negative counter is
// the number of callers parked (or about to park) in Wait. Every parked Wait
// is released by exactly one Post.
type Fast struct {
	count atomic.Int64
	park  *Counting
}

// NewFast creates a Fast semaphore holding permits permits.
// It panics if permits is negative.
func NewFast(permits int) *Fast {
	if permits < 0 {
		panic("semaphore: negative initial count")
	}
	s := &Fast{park: NewCounting(0)}
	s.count.Store(int64(permits))
	return s
}

// Wait takes a permit, parking the caller when none is free.
func (s *Fast) Wait() {
	if prev := s.count.Add(-1) + 1; prev < 1 {
		s.park.Wait()
	}
}

// Post returns a permit and wakes one parked caller if there is one.
func (s *Fast) Post() {
	if prev := s.count.Add(1) - 1; prev < 0 {
		s.park.Post()
	}
}

// Available returns the raw counter: free permits when non-negative, the
// number of parked callers when negative.
func (s *Fast) Available() int64 {
	return s.count.Load()
}
