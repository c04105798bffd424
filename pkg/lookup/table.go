package lookup

import (
	"sort"
	"sync"
)

// EntryState is the logical state of an identifier in a Table.
type EntryState int

const (
	// StateAbsent means never attempted, or the last reservation was rolled back.
	StateAbsent EntryState = iota

	// StateReserved means a request for the identifier is in flight.
	StateReserved

	// StateFinalized means a terminal Result exists.
	StateFinalized
)

// String returns the state name.
func (s EntryState) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateReserved:
		return "reserved"
	case StateFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// Table maps identifiers to results. A key with a nil value is a reservation.
// It is safe for concurrent use; its lock is independent of the Queue's.
type Table struct {
	mu      sync.Mutex
	entries map[string]*Result
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[string]*Result)}
}

// TryReserve marks id as in flight. It returns false if id is already
// reserved or finalized, in which case the caller must not transmit.
func (t *Table) TryReserve(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.entries[id]; exists {
		return false
	}
	t.entries[id] = nil
	return true
}

// Finalize stores the terminal result for r.ID, replacing any reservation.
func (t *Table) Finalize(r Result) {
	t.mu.Lock()
	t.entries[r.ID] = &r
	t.mu.Unlock()
}

// Rollback removes id, returning it to the absent state.
func (t *Table) Rollback(id string) {
	t.mu.Lock()
	delete(t.entries, id)
	t.mu.Unlock()
}

// Lookup returns the state of id and its result when finalized.
func (t *Table) Lookup(id string) (Result, EntryState) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, exists := t.entries[id]
	switch {
	case !exists:
		return Result{}, StateAbsent
	case r == nil:
		return Result{}, StateReserved
	default:
		return *r, StateFinalized
	}
}

// Len returns the number of keys, reservations included.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Reserved returns the number of outstanding reservations.
func (t *Table) Reserved() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, r := range t.entries {
		if r == nil {
			n++
		}
	}
	return n
}

// Results returns the finalized results ordered by identifier.
func (t *Table) Results() []Result {
	t.mu.Lock()
	results := make([]Result, 0, len(t.entries))
	for _, r := range t.entries {
		if r != nil {
			results = append(results, *r)
		}
	}
	t.mu.Unlock()

	sort.Slice(results, func(i, j int) bool {
		return results[i].ID < results[j].ID
	})
	return results
}

// Missing returns the distinct identifiers of ids that have no finalized
// result, in order of first appearance.
func (t *Table) Missing(ids []string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	seen := make(map[string]struct{}, len(ids))
	var missing []string
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if r := t.entries[id]; r == nil {
			missing = append(missing, id)
		}
	}
	return missing
}
