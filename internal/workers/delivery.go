// Package workers consumes queued jobs.
package workers

import (
	"context"
	"fmt"

	"github.com/benvon/daily-agent/internal/notify"
	"github.com/benvon/daily-agent/internal/queue"
	"github.com/jmhodges/clock"
	"go.uber.org/zap"
)

// ReminderDeliverer sends queued reminders through the external notifiers
type ReminderDeliverer struct {
	notifier notify.Notifier
	jobQueue queue.JobQueue
	clk      clock.Clock
	logger   *zap.Logger
}

// NewReminderDeliverer creates a deliverer. jobQueue is used to re-enqueue failed deliveries with backoff.
func NewReminderDeliverer(notifier notify.Notifier, jobQueue queue.JobQueue, clk clock.Clock, logger *zap.Logger) *ReminderDeliverer {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderDeliverer{
		notifier: notifier,
		jobQueue: jobQueue,
		clk:      clk,
		logger:   logger,
	}
}

// ProcessJob processes a job based on its type
func (d *ReminderDeliverer) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()
	now := d.clk.Now()

	if job.NotAfter != nil && now.After(*job.NotAfter) {
		d.logger.Info("reminder_expired",
			zap.String("job_id", job.ID.String()),
			zap.Time("not_after", *job.NotAfter))
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack expired job: %w", ackErr)
		}
		return nil
	}

	if !job.ShouldProcessAt(now) {
		// The delayed exchange is missing; put it back until it is due.
		if nackErr := msg.Nack(true); nackErr != nil {
			return fmt.Errorf("failed to requeue early job: %w", nackErr)
		}
		return nil
	}

	switch job.Type {
	case queue.JobTypeReminderNotification:
		if err := d.notifier.Notify(ctx, job.Title(), job.Body()); err != nil {
			return d.handleJobError(ctx, msg, job, err)
		}
		d.logger.Info("reminder_delivered",
			zap.String("job_id", job.ID.String()),
			zap.String("title", job.Title()),
			zap.Int("attempt", job.RetryCount+1))
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	default:
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			d.logger.Warn("failed_to_nack_unknown_job", zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// handleJobError re-enqueues a failed delivery with backoff, or dead-letters it once retries are spent
func (d *ReminderDeliverer) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, err error) error {
	if job.CanRetry() && d.jobQueue != nil {
		retry := job.RetryAt(d.clk.Now().Add(queue.RetryDelay(job.RetryCount)))

		if enqueueErr := d.jobQueue.Enqueue(ctx, retry); enqueueErr != nil {
			d.logger.Warn("failed_to_reenqueue_reminder",
				zap.String("job_id", job.ID.String()),
				zap.Error(enqueueErr))
			if nackErr := msg.Nack(true); nackErr != nil {
				d.logger.Warn("failed_to_nack_job", zap.Error(nackErr))
			}
			return fmt.Errorf("delivery failed, failed to re-enqueue: %w", enqueueErr)
		}

		if ackErr := msg.Ack(); ackErr != nil {
			d.logger.Warn("failed_to_ack_job", zap.Error(ackErr))
		}
		d.logger.Warn("reminder_delivery_retrying",
			zap.String("job_id", job.ID.String()),
			zap.Int("attempt", retry.RetryCount),
			zap.Int("max_retries", job.MaxRetries),
			zap.Error(err))
		return fmt.Errorf("delivery failed (will retry): %w", err)
	}

	d.logger.Error("reminder_dead_lettered",
		zap.String("job_id", job.ID.String()),
		zap.Int("retries", job.RetryCount),
		zap.Error(err))
	if nackErr := msg.Nack(false); nackErr != nil {
		d.logger.Warn("failed_to_nack_job", zap.Error(nackErr))
	}
	return fmt.Errorf("delivery failed (max retries): %w", err)
}
