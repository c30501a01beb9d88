package notify

import (
	"context"
	"fmt"

	"github.com/benvon/daily-agent/internal/queue"
	"github.com/jmhodges/clock"
)

// Enqueuer is the part of queue.JobQueue the notifier needs
type Enqueuer interface {
	Enqueue(ctx context.Context, job *queue.Job) error
}

// QueueNotifier hands notifications to the reminder worker through the job queue
type QueueNotifier struct {
	queue Enqueuer
	clk   clock.Clock
}

// NewQueueNotifier creates a notifier that enqueues reminder jobs
func NewQueueNotifier(q Enqueuer, clk clock.Clock) *QueueNotifier {
	if clk == nil {
		clk = clock.New()
	}
	return &QueueNotifier{queue: q, clk: clk}
}

// Notify implements Notifier
func (n *QueueNotifier) Notify(ctx context.Context, title, body string) error {
	job := queue.NewReminderJob(nil, title, body, n.clk.Now())
	if err := n.queue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue reminder: %w", err)
	}
	return nil
}
