package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/jmhodges/clock"
)

// DefaultActivityWindow is how long a client counts as present after its last request
const DefaultActivityWindow = 2 * time.Minute

// ActivityTracker records when a client last talked to the API.
// Screen time only accrues while a client is present.
type ActivityTracker struct {
	clk    clock.Clock
	window time.Duration

	mu   sync.Mutex
	last time.Time
}

// NewActivityTracker creates a tracker. A non-positive window uses DefaultActivityWindow.
func NewActivityTracker(clk clock.Clock, window time.Duration) *ActivityTracker {
	if clk == nil {
		clk = clock.New()
	}
	if window <= 0 {
		window = DefaultActivityWindow
	}
	return &ActivityTracker{clk: clk, window: window}
}

// Touch marks the client as present now
func (at *ActivityTracker) Touch() {
	at.mu.Lock()
	defer at.mu.Unlock()
	at.last = at.clk.Now()
}

// Present reports whether a request arrived within the window before now
func (at *ActivityTracker) Present(now time.Time) bool {
	at.mu.Lock()
	defer at.mu.Unlock()
	return !at.last.IsZero() && now.Sub(at.last) <= at.window
}

// LastSeen returns the time of the last request, zero if none
func (at *ActivityTracker) LastSeen() time.Time {
	at.mu.Lock()
	defer at.mu.Unlock()
	return at.last
}

// ActivityTracking marks the client present on every request that reaches it
func ActivityTracking(tracker *ActivityTracker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tracker.Touch()
			next.ServeHTTP(w, r)
		})
	}
}
