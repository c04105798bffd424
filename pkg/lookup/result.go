package lookup

import (
	"net/http"
	"strconv"
)

// Result is the terminal outcome for one identifier.
type Result struct {
	// ID is the identifier as submitted.
	ID string

	// Timestamp is when the response completed, in nanoseconds since the epoch.
	Timestamp int64

	// Status is the HTTP status, or 0 when no status was obtained.
	Status int

	// Body is the raw response body. Only rendered when HasBody is set.
	Body []byte

	// HasBody is set for successful lookups.
	HasBody bool
}

// newSuccess builds the result for a 200 response.
func newSuccess(id string, timestamp int64, body []byte) Result {
	return Result{
		ID:        id,
		Timestamp: timestamp,
		Status:    http.StatusOK,
		Body:      body,
		HasBody:   true,
	}
}

// newFailure builds a terminal result with a null response.
func newFailure(id string, timestamp int64, status int) Result {
	return Result{
		ID:        id,
		Timestamp: timestamp,
		Status:    status,
	}
}

// Payload renders the result in the lookup wire format. The identifier and
// body are copied verbatim without JSON escaping, so the output is only valid
// JSON when the identifier needs no escaping and the body is a JSON value.
func (r Result) Payload() string {
	return string(r.AppendPayload(make([]byte, 0, len(r.ID)+len(r.Body)+64)))
}

// AppendPayload appends the rendered payload to dst.
func (r Result) AppendPayload(dst []byte) []byte {
	dst = append(dst, `{"id":"`...)
	dst = append(dst, r.ID...)
	dst = append(dst, `","timestamp":`...)
	dst = strconv.AppendInt(dst, r.Timestamp, 10)
	dst = append(dst, `,"status":`...)
	dst = strconv.AppendInt(dst, int64(r.Status), 10)
	dst = append(dst, `,"response":`...)
	if r.HasBody {
		dst = append(dst, r.Body...)
	} else {
		dst = append(dst, "null"...)
	}
	return append(dst, '}')
}

// String implements fmt.Stringer.
func (r Result) String() string {
	return r.Payload()
}
