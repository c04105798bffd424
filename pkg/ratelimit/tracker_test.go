package ratelimit

import (
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestTracker() *Tracker {
	return NewTracker(zerolog.New(os.Stderr).Level(zerolog.Disabled))
}

func TestNewTracker_StartsHealthy(t *testing.T) {
	state := newTestTracker().State()

	if !state.IsHealthy {
		t.Error("new tracker should be healthy")
	}
	if state.Total != 0 || state.Consecutive != 0 {
		t.Errorf("Total = %d, Consecutive = %d, want 0, 0", state.Total, state.Consecutive)
	}
}

func TestTracker_Observe(t *testing.T) {
	tracker := newTestTracker()

	for i := 0; i < ConsecutiveThresholdWarning; i++ {
		tracker.Observe(http.StatusTooManyRequests, http.Header{})
	}

	state := tracker.State()
	if state.Total != ConsecutiveThresholdWarning {
		t.Errorf("Total = %d, want %d", state.Total, ConsecutiveThresholdWarning)
	}
	if state.Consecutive != ConsecutiveThresholdWarning {
		t.Errorf("Consecutive = %d, want %d", state.Consecutive, ConsecutiveThresholdWarning)
	}
	if state.IsHealthy {
		t.Error("tracker should be unhealthy after sustained 429s")
	}
	if state.LastRateLimited.IsZero() {
		t.Error("LastRateLimited was not set")
	}

	tracker.Observe(http.StatusOK, http.Header{})
	state = tracker.State()
	if state.Consecutive != 0 {
		t.Errorf("Consecutive after 200 = %d, want 0", state.Consecutive)
	}
	if state.Total != ConsecutiveThresholdWarning {
		t.Errorf("Total after 200 = %d, want %d", state.Total, ConsecutiveThresholdWarning)
	}
	if !state.IsHealthy {
		t.Error("tracker should be healthy after a non-429 status")
	}
}

func TestTracker_RetryAfter(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tracker := newTestTracker()
	tracker.now = func() time.Time { return now }

	header := http.Header{}
	header.Set("Retry-After", "10")
	tracker.Observe(http.StatusTooManyRequests, header)

	state := tracker.State()
	if want := now.Add(10 * time.Second); !state.RetryAt.Equal(want) {
		t.Errorf("RetryAt = %v, want %v", state.RetryAt, want)
	}

	// A shorter hint does not move RetryAt backwards.
	header.Set("Retry-After", "2")
	tracker.Observe(http.StatusTooManyRequests, header)
	if want := now.Add(10 * time.Second); !tracker.State().RetryAt.Equal(want) {
		t.Errorf("RetryAt moved backwards to %v", tracker.State().RetryAt)
	}
}

func TestTracker_RetryDelay(t *testing.T) {
	tracker := newTestTracker()

	if got := tracker.RetryDelay(100 * time.Millisecond); got != 100*time.Millisecond {
		t.Errorf("RetryDelay() without hint = %v, want 100ms", got)
	}

	header := http.Header{}
	header.Set("Retry-After", "30")
	tracker.Observe(http.StatusTooManyRequests, header)

	got := tracker.RetryDelay(100 * time.Millisecond)
	if got < 29*time.Second || got > 30*time.Second {
		t.Errorf("RetryDelay() with hint = %v, want about 30s", got)
	}

	if got := tracker.RetryDelay(time.Minute); got != time.Minute {
		t.Errorf("RetryDelay() with longer fallback = %v, want 1m", got)
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		value  string
		want   time.Duration
		wantOK bool
	}{
		{name: "empty", value: "", wantOK: false},
		{name: "delta seconds", value: "5", want: 5 * time.Second, wantOK: true},
		{name: "zero seconds", value: "0", want: 0, wantOK: true},
		{name: "negative seconds", value: "-3", wantOK: false},
		{name: "padded", value: " 7 ", want: 7 * time.Second, wantOK: true},
		{
			name:   "http date",
			value:  now.Add(90 * time.Second).Format(http.TimeFormat),
			want:   90 * time.Second,
			wantOK: true,
		},
		{
			name:   "http date in the past",
			value:  now.Add(-time.Hour).Format(http.TimeFormat),
			want:   0,
			wantOK: true,
		},
		{name: "garbage", value: "soon", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRetryAfter(tt.value, now)
			if ok != tt.wantOK {
				t.Fatalf("ParseRetryAfter(%q) ok = %v, want %v", tt.value, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseRetryAfter(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
