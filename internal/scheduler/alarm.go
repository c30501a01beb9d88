package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/jmhodges/clock"
)

// DefaultAlarmInterval is the gap between alarm rings
const DefaultAlarmInterval = 5 * time.Second

// RingFunc is called on every alarm ring with the title of the task being alarmed
type RingFunc func(ctx context.Context, title string)

// Alarm repeats a ring until stopped. At most one alarm is active at a time.
type Alarm struct {
	clk      clock.Clock
	interval time.Duration
	ring     RingFunc

	mu     sync.Mutex
	title  string
	cancel context.CancelFunc
}

// NewAlarm creates an idle alarm
func NewAlarm(clk clock.Clock, interval time.Duration, ring RingFunc) *Alarm {
	if clk == nil {
		clk = clock.New()
	}
	if interval <= 0 {
		interval = DefaultAlarmInterval
	}
	return &Alarm{clk: clk, interval: interval, ring: ring}
}

// Start begins ringing for title, replacing any alarm already running.
// The first ring happens one interval after Start.
func (a *Alarm) Start(ctx context.Context, title string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopLocked()

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.title = title
	a.cancel = cancel

	timer := a.clk.NewTimer(a.interval)
	go func() {
		defer timer.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-timer.C:
				if loopCtx.Err() != nil {
					return
				}
				a.ring(loopCtx, title)
				timer.Reset(a.interval)
			}
		}
	}()
}

// Stop ends the running alarm and reports whether one was active. Safe to call at any time.
// It does not wait for a ring already in progress.
func (a *Alarm) Stop() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stopLocked()
}

func (a *Alarm) stopLocked() bool {
	if a.cancel == nil {
		return false
	}
	a.cancel()
	a.cancel = nil
	a.title = ""
	return true
}

// Active returns the alarmed task title and whether an alarm is running
func (a *Alarm) Active() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.title, a.cancel != nil
}
