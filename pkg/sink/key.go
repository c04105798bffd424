package sink

import "strings"

// DefaultPrefix is the Redis key prefix used when none is configured.
const DefaultPrefix = "lookup"

// BatchKey identifies the Redis hash holding one exported batch.
type BatchKey struct {
	// Prefix namespaces the keys (e.g. "lookup").
	Prefix string

	// BatchID is the batch identifier.
	BatchID string
}

// String generates the key.
// Format: prefix:batch:batchID
//
// Example:
//
//	lookup:batch:2f1c6d0e-8b5a-4c1e-9d3f-0a7b6c5d4e3f
func (k BatchKey) String() string {
	prefix := strings.Trim(k.Prefix, ":")
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + ":batch:" + k.BatchID
}
