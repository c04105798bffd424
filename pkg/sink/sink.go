// Package sink writes finalized lookup results to their destinations.
//
// A batch is written once, after it completes. Results are rendered in the
// lookup payload format:
//
//	{"id":"X","timestamp":1700000000000000000,"status":200,"response":{...}}
//
// WriterSink prints one payload per line. RedisSink exports the batch as a
// Redis hash for downstream consumers. Multi fans out to several sinks.
package sink

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/Sternrassler/lookup-get/pkg/lookup"
	"github.com/google/uuid"
)

// ErrNotFound indicates the requested batch or identifier was not exported.
var ErrNotFound = errors.New("result not found")

// Sink receives the finalized results of one batch.
type Sink interface {
	Write(ctx context.Context, batchID string, results []lookup.Result) error
}

// NewBatchID returns a random batch identifier.
func NewBatchID() string {
	return uuid.NewString()
}

// WriterSink writes one payload per line to an io.Writer.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink creates a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Write implements Sink. The batch ID is not part of the output.
func (s *WriterSink) Write(ctx context.Context, batchID string, results []lookup.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bw := bufio.NewWriter(s.w)
	var line []byte
	for _, r := range results {
		if err := ctx.Err(); err != nil {
			return err
		}
		line = r.AppendPayload(line[:0])
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			sinkErrors.WithLabelValues("writer").Inc()
			return fmt.Errorf("write payload: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		sinkErrors.WithLabelValues("writer").Inc()
		return fmt.Errorf("flush payloads: %w", err)
	}

	sinkWrites.WithLabelValues("writer").Add(float64(len(results)))
	return nil
}

// Multi writes to every sink in order and joins their errors.
type Multi []Sink

// Write implements Sink.
func (m Multi) Write(ctx context.Context, batchID string, results []lookup.Result) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, batchID, results); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
