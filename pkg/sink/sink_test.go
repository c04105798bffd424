package sink

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Sternrassler/lookup-get/pkg/lookup"
	"github.com/google/uuid"
)

func testResults() []lookup.Result {
	return []lookup.Result{
		{ID: "a", Timestamp: 1, Status: 200, Body: []byte(`{"result":"Item is in inventory."}`), HasBody: true},
		{ID: "b", Timestamp: 2, Status: 404},
		{ID: "c", Timestamp: 3, Status: 0},
	}
}

func TestWriterSink_Write(t *testing.T) {
	var buf bytes.Buffer
	s := NewWriterSink(&buf)

	if err := s.Write(context.Background(), "batch", testResults()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	want := `{"id":"a","timestamp":1,"status":200,"response":{"result":"Item is in inventory."}}` + "\n" +
		`{"id":"b","timestamp":2,"status":404,"response":null}` + "\n" +
		`{"id":"c","timestamp":3,"status":0,"response":null}` + "\n"
	if buf.String() != want {
		t.Errorf("output =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriterSink_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriterSink(&buf).Write(context.Background(), "batch", nil); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("output = %q, want empty", buf.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriterSink_WriteError(t *testing.T) {
	err := NewWriterSink(failingWriter{}).Write(context.Background(), "batch", testResults())
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Write() error = %v, want disk full", err)
	}
}

type recordingSink struct {
	batchID string
	results int
	err     error
}

func (r *recordingSink) Write(ctx context.Context, batchID string, results []lookup.Result) error {
	r.batchID = batchID
	r.results = len(results)
	return r.err
}

func TestMulti_Write(t *testing.T) {
	errA := errors.New("a failed")
	first := &recordingSink{err: errA}
	second := &recordingSink{}

	err := Multi{first, second}.Write(context.Background(), "b-1", testResults())
	if !errors.Is(err, errA) {
		t.Errorf("Write() error = %v, want %v", err, errA)
	}
	if second.batchID != "b-1" || second.results != 3 {
		t.Errorf("second sink got %q/%d, want b-1/3", second.batchID, second.results)
	}

	if err := (Multi{second}).Write(context.Background(), "b-2", nil); err != nil {
		t.Errorf("Write() error = %v, want nil", err)
	}
}

func TestBatchKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  BatchKey
		want string
	}{
		{"default prefix", BatchKey{BatchID: "x"}, "lookup:batch:x"},
		{"custom prefix", BatchKey{Prefix: "inv", BatchID: "x"}, "inv:batch:x"},
		{"trimmed prefix", BatchKey{Prefix: "inv:", BatchID: "x"}, "inv:batch:x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewBatchID(t *testing.T) {
	a, b := NewBatchID(), NewBatchID()
	if a == b {
		t.Error("NewBatchID() returned the same ID twice")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("NewBatchID() = %q, not a UUID: %v", a, err)
	}
}
