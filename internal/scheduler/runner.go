package scheduler

import (
	"context"
	"time"

	"github.com/jmhodges/clock"
	"go.uber.org/zap"
)

// Default tick cadences
const (
	DefaultInterval  = 60 * time.Second
	DefaultHeartbeat = 30 * time.Second
)

// TickKind distinguishes the regular minute tick from the extra heartbeat tick
type TickKind string

const (
	// TickRegular runs reminders and screen-time tracking
	TickRegular TickKind = "regular"
	// TickHeartbeat runs reminders only
	TickHeartbeat TickKind = "heartbeat"
)

// Target is what the runner drives
type Target interface {
	Tick(ctx context.Context, kind TickKind) error
	HeartbeatEnabled() bool
}

// Runner fires ticks on a fixed cadence until its context is cancelled
type Runner struct {
	target    Target
	clk       clock.Clock
	logger    *zap.Logger
	interval  time.Duration
	heartbeat time.Duration
}

// NewRunner creates a runner. Zero durations select the defaults.
func NewRunner(target Target, clk clock.Clock, logger *zap.Logger, interval, heartbeat time.Duration) *Runner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		target:    target,
		clk:       clk,
		logger:    logger,
		interval:  interval,
		heartbeat: heartbeat,
	}
}

// Run blocks, ticking until ctx is done. Tick errors are logged and do not stop the loop.
func (r *Runner) Run(ctx context.Context) error {
	regular := r.clk.NewTimer(r.interval)
	defer regular.Stop()
	heartbeat := r.clk.NewTimer(r.heartbeat)
	defer heartbeat.Stop()

	r.logger.Info("scheduler_started",
		zap.Duration("interval", r.interval),
		zap.Duration("heartbeat", r.heartbeat))

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("scheduler_stopped")
			return ctx.Err()
		case <-regular.C:
			regular.Reset(r.interval)
			r.fire(ctx, TickRegular)
		case <-heartbeat.C:
			heartbeat.Reset(r.heartbeat)
			if r.target.HeartbeatEnabled() {
				r.fire(ctx, TickHeartbeat)
			}
		}
	}
}

func (r *Runner) fire(ctx context.Context, kind TickKind) {
	if err := r.target.Tick(ctx, kind); err != nil {
		r.logger.Warn("scheduler_tick_failed",
			zap.String("kind", string(kind)),
			zap.Error(err))
	}
}
