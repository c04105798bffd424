package lookup

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Sternrassler/lookup-get/pkg/logging"
	"github.com/Sternrassler/lookup-get/pkg/ratelimit"
	"github.com/Sternrassler/lookup-get/pkg/semaphore"
	"github.com/rs/zerolog"
)

// Batch is one single-use lookup run.
type Batch struct {
	config  Config
	queue   *Queue
	table   *Table
	admit   semaphore.Admitter
	tracker *ratelimit.Tracker
	header  http.Header
	logger  zerolog.Logger
	used    atomic.Bool
}

// NewBatch validates cfg and prepares a batch.
func NewBatch(cfg Config) (*Batch, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.NewLogger(logging.ComponentLookup)
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	cfg = cfg.withDefaults(logger)

	return &Batch{
		config:  cfg,
		queue:   NewQueue(nil),
		table:   NewTable(),
		admit:   semaphore.New(cfg.Admission, cfg.MaxConcurrency),
		tracker: cfg.Tracker,
		header:  requestHeader(cfg.Authorization),
		logger:  logger,
	}, nil
}

// Run resolves ids and returns the result table once every worker has
// finished. The returned error only reports invalid configuration or reuse of
// the Batch; request failures are recorded in the table. Cancelling ctx stops
// workers from taking new identifiers and aborts requests in flight, which
// are then finalized as transport failures.
func (b *Batch) Run(ctx context.Context, ids []string) (*Table, error) {
	if !b.used.CompareAndSwap(false, true) {
		return nil, ErrBatchUsed
	}

	start := time.Now()
	engine := string(b.config.Engine)

	for _, id := range ids {
		b.queue.Enqueue(id)
	}

	b.logger.Info().
		Str("engine", engine).
		Int("identifiers", len(ids)).
		Int("max_concurrency", b.config.MaxConcurrency).
		Str("base_url", b.config.BaseURL).
		Int("port", b.config.Port).
		Msg("Starting lookup batch")

	switch b.config.Engine {
	case EngineDispatcher:
		b.runDispatcher(ctx)
	default:
		b.runWorkers(ctx)
	}

	duration := time.Since(start)
	batchesTotal.WithLabelValues(engine).Inc()
	batchDuration.WithLabelValues(engine).Observe(duration.Seconds())

	event := b.logger.Info()
	if missing := b.table.Missing(ids); len(missing) > 0 {
		event = b.logger.Warn().Int("unresolved", len(missing))
	}
	event.
		Str("engine", engine).
		Int("identifiers", len(ids)).
		Int("results", len(b.table.Results())).
		Int("queued", b.queue.Len()).
		Dur("duration", duration).
		Msg("Lookup batch complete")

	return b.table, nil
}

// Run performs a single batch with cfg.
func Run(ctx context.Context, ids []string, cfg Config) (*Table, error) {
	b, err := NewBatch(cfg)
	if err != nil {
		return nil, err
	}
	return b.Run(ctx, ids)
}

// runWorkers launches MaxConcurrency self-scheduling workers and waits for
// all of them to exit.
func (b *Batch) runWorkers(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < b.config.MaxConcurrency; i++ {
		wg.Add(1)
		w := b.newWorker(i)
		go func() {
			defer wg.Done()
			w.run(ctx)
		}()
	}
	wg.Wait()
}

// record applies the workers-engine Record step for one transmission.
func (b *Batch) record(a attempt) {
	switch {
	case a.class == ErrorClassNone:
		b.table.Finalize(newSuccess(a.id, a.timestamp, a.body))
	case a.class.Retriable():
		// Another worker may already have finalized a duplicate; the requeued
		// entry is then skipped at Reserve.
		b.table.Rollback(a.id)
		b.queue.Enqueue(a.id)
		rollbacksTotal.Inc()
	default:
		b.table.Finalize(newFailure(a.id, a.timestamp, a.status))
	}
}
