package lookup

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/lookup-get/pkg/transport"
	"github.com/rs/zerolog"
)

// attempt is the outcome of one transmission.
type attempt struct {
	id        string
	status    int
	body      []byte
	header    http.Header
	timestamp int64
	class     ErrorClass
	err       error
}

// worker owns one transport for its whole lifetime.
type worker struct {
	id        int
	batch     *Batch
	transport transport.Transport
	logger    zerolog.Logger
	processed int
}

func (b *Batch) newWorker(id int) *worker {
	return &worker{
		id:        id,
		batch:     b,
		transport: b.config.Transport(),
		logger:    b.logger.With().Int("worker_id", id).Logger(),
	}
}

// run is the workers-engine loop: Fetch, Reserve, AcquirePermit, Transmit,
// Record. It returns the first time the queue is observed empty.
func (w *worker) run(ctx context.Context) {
	b := w.batch
	for {
		if ctx.Err() != nil {
			w.logger.Debug().
				Int("processed", w.processed).
				Msg("Worker stopping (context cancelled)")
			return
		}

		id, ok := b.queue.Dequeue()
		if !ok {
			break
		}

		if !b.table.TryReserve(id) {
			duplicatesSkipped.Inc()
			continue
		}

		b.admit.Wait()
		a := w.transmit(ctx, id)
		b.record(a)
		b.admit.Post()
	}

	w.logger.Debug().
		Int("processed", w.processed).
		Msg("Worker completed")
}

// serve is the dispatcher-engine loop. It parks on work until the dispatcher
// closes it.
func (w *worker) serve(ctx context.Context, work <-chan string, outcomes chan<- attempt) {
	b := w.batch
	for id := range work {
		b.admit.Wait()
		a := w.transmit(ctx, id)
		b.admit.Post()
		outcomes <- a
	}

	w.logger.Debug().
		Int("processed", w.processed).
		Msg("Worker completed")
}

// transmit performs one GET for id with no table or queue lock held.
func (w *worker) transmit(ctx context.Context, id string) attempt {
	b := w.batch
	start := time.Now()
	inflightRequests.Inc()

	resp, err := w.transport.Get(ctx, transport.Request{
		URL:    b.config.BaseURL,
		ID:     id,
		Port:   b.config.Port,
		Header: b.header,
	})

	inflightRequests.Dec()
	now := time.Now()
	requestDuration.Observe(now.Sub(start).Seconds())
	w.processed++

	a := attempt{id: id, timestamp: now.UnixNano(), err: err}
	if err == nil && resp != nil {
		a.status = resp.StatusCode
		a.body = resp.Body
		a.header = resp.Header
	}
	a.class = Classify(a.status, err)

	requestsTotal.WithLabelValues(strconv.Itoa(a.status)).Inc()
	b.tracker.Observe(a.status, a.header)

	switch a.class {
	case ErrorClassNone:
		w.logger.Debug().
			Str("id", id).
			Int("status", a.status).
			Dur("duration", now.Sub(start)).
			Msg("Lookup succeeded")
	case ErrorClassTransport:
		errorsTotal.WithLabelValues(string(a.class)).Inc()
		w.logger.Warn().
			Err(err).
			Str("id", id).
			Str("error_class", string(a.class)).
			Msg("Lookup transport failure")
	default:
		errorsTotal.WithLabelValues(string(a.class)).Inc()
		w.logger.Debug().
			Str("id", id).
			Int("status", a.status).
			Str("error_class", string(a.class)).
			Msg("Lookup returned error status")
	}

	return a
}
