package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/jmhodges/clock"
	"go.uber.org/zap"
)

const purgeTimeout = 2 * time.Minute

// GarbageCollector drops dead-lettered reminders once they are older than retention.
// A reminder that could not be delivered within a day is no longer worth delivering.
type GarbageCollector struct {
	purger    DLQPurger
	clk       clock.Clock
	interval  time.Duration
	retention time.Duration
	logger    *zap.Logger
}

// NewGarbageCollector creates a collector that purges every interval. A nil clock uses the wall clock.
func NewGarbageCollector(purger DLQPurger, clk clock.Clock, interval, retention time.Duration, logger *zap.Logger) *GarbageCollector {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GarbageCollector{
		purger:    purger,
		clk:       clk,
		interval:  interval,
		retention: retention,
		logger:    logger,
	}
}

// Start purges on every interval until ctx is cancelled, then returns ctx.Err().
// Purge failures are logged and retried on the next interval.
func (gc *GarbageCollector) Start(ctx context.Context) error {
	gc.logger.Info("dlq_gc_started",
		zap.Duration("interval", gc.interval),
		zap.Duration("retention", gc.retention))

	timer := gc.clk.NewTimer(gc.interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			if _, err := gc.collect(ctx); err != nil {
				gc.logger.Warn("dlq_gc_failed", zap.Error(err))
			}
			timer.Reset(gc.interval)
		}
	}
}

// collect runs one purge and returns how many reminders were dropped
func (gc *GarbageCollector) collect(ctx context.Context) (int, error) {
	if gc.purger == nil {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, purgeTimeout)
	defer cancel()

	n, err := gc.purger.PurgeOlderThan(ctx, gc.retention)
	if err != nil {
		return 0, fmt.Errorf("purge dead-lettered reminders: %w", err)
	}
	if n > 0 {
		gc.logger.Info("dlq_gc_purged",
			zap.Int("count", n),
			zap.Duration("retention", gc.retention))
	}
	return n, nil
}
