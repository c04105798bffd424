package lookup

import (
	"context"
	"sync"
	"time"
)

// dispatcher owns the queue for the dispatcher engine. Workers park on work
// and never exit until it is closed, so identifiers requeued after a 429 are
// always picked up again.
type dispatcher struct {
	batch    *Batch
	work     chan string
	outcomes chan attempt
	retries  chan string

	attempts map[string]int
	timers   map[string]*time.Timer
	inflight int

	next      string
	haveNext  bool
	cancelled bool
}

// runDispatcher launches the parked worker pool and dispatches until the
// queue is drained, nothing is in flight and no retry is scheduled.
func (b *Batch) runDispatcher(ctx context.Context) {
	d := &dispatcher{
		batch:    b,
		work:     make(chan string),
		outcomes: make(chan attempt, b.config.MaxConcurrency),
		retries:  make(chan string),
		attempts: make(map[string]int),
		timers:   make(map[string]*time.Timer),
	}

	var wg sync.WaitGroup
	for i := 0; i < b.config.MaxConcurrency; i++ {
		wg.Add(1)
		w := b.newWorker(i)
		go func() {
			defer wg.Done()
			w.serve(ctx, d.work, d.outcomes)
		}()
	}

	d.loop(ctx)

	close(d.work)
	wg.Wait()
}

func (d *dispatcher) loop(ctx context.Context) {
	b := d.batch
	done := ctx.Done()

	for {
		if !d.haveNext && !d.cancelled {
			d.next, d.haveNext = d.reserveNext()
		}
		if !d.haveNext && d.inflight == 0 && len(d.timers) == 0 {
			return
		}

		var send chan<- string
		if d.haveNext {
			send = d.work
		}

		select {
		case send <- d.next:
			d.inflight++
			d.haveNext = false

		case a := <-d.outcomes:
			d.inflight--
			d.record(a)

		case id := <-d.retries:
			delete(d.timers, id)
			b.table.Rollback(id)
			if !d.cancelled {
				b.queue.Enqueue(id)
			}

		case <-done:
			done = nil
			d.cancel()
		}
	}
}

// reserveNext dequeues until an identifier can be reserved.
func (d *dispatcher) reserveNext() (string, bool) {
	b := d.batch
	for {
		id, ok := b.queue.Dequeue()
		if !ok {
			return "", false
		}
		if b.table.TryReserve(id) {
			return id, true
		}
		duplicatesSkipped.Inc()
	}
}

func (d *dispatcher) record(a attempt) {
	b := d.batch
	d.attempts[a.id]++
	n := d.attempts[a.id]

	if a.class == ErrorClassNone {
		b.table.Finalize(newSuccess(a.id, a.timestamp, a.body))
		return
	}
	if !a.class.Retriable() {
		b.table.Finalize(newFailure(a.id, a.timestamp, a.status))
		return
	}

	if b.config.Retry.Exhausted(n) {
		b.table.Finalize(newFailure(a.id, a.timestamp, a.status))
		retryExhaustedTotal.Inc()
		b.logger.Warn().
			Str("id", a.id).
			Int("attempts", n).
			Msg("Retry attempts exhausted, giving up on rate-limited identifier")
		return
	}

	if d.cancelled {
		b.table.Rollback(a.id)
		return
	}

	delay := b.tracker.RetryDelay(b.config.Retry.Backoff(n))
	retryBackoffSeconds.Observe(delay.Seconds())
	rollbacksTotal.Inc()

	b.logger.Debug().
		Str("id", a.id).
		Int("attempt", n).
		Dur("backoff", delay).
		Msg("Rate limited, scheduling retry")

	id := a.id
	d.timers[id] = time.AfterFunc(delay, func() {
		d.retries <- id
	})
}

// cancel stops dispatching. Work in flight still reports back; pending
// retries whose timers can be stopped are released immediately.
func (d *dispatcher) cancel() {
	b := d.batch
	d.cancelled = true

	if d.haveNext {
		b.table.Rollback(d.next)
		d.haveNext = false
	}

	for id, t := range d.timers {
		if t.Stop() {
			delete(d.timers, id)
			b.table.Rollback(id)
		}
	}

	b.logger.Warn().
		Int("inflight", d.inflight).
		Int("queued", b.queue.Len()).
		Msg("Lookup batch cancelled")
}
