package queue

import (
	"context"
	"time"
)

// MessageInterface is a delivered job awaiting acknowledgement
type MessageInterface interface {
	Ack() error
	Nack(requeue bool) error
	GetJob() *Job
}

// JobQueue carries reminder jobs from the server to the delivery worker
type JobQueue interface {
	Enqueue(ctx context.Context, job *Job) error

	// Consume delivers messages until ctx is done. At most prefetchCount messages are
	// unacknowledged at once. Both channels close when consumption stops.
	Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error)

	Close() error
	HealthCheck(ctx context.Context) error
}

// DLQPurger drops dead-lettered jobs older than retention and reports how many it removed
type DLQPurger interface {
	PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error)
}
