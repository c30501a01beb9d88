package queue

import (
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
)

var errNoChannel = errors.New("message has no delivery channel")

// Message is one reminder job delivered from RabbitMQ. Exactly one of Ack or Nack must be called.
type Message struct {
	Job         *Job
	DeliveryTag uint64
	Channel     *amqp.Channel
}

// Ack marks the reminder as handled
func (m *Message) Ack() error {
	if m.Channel == nil {
		return errNoChannel
	}
	return m.Channel.Ack(m.DeliveryTag, false)
}

// Nack rejects the reminder. Without requeue it is routed to the dead-letter queue.
func (m *Message) Nack(requeue bool) error {
	if m.Channel == nil {
		return errNoChannel
	}
	return m.Channel.Nack(m.DeliveryTag, false, requeue)
}

// GetJob returns the decoded job
func (m *Message) GetJob() *Job {
	return m.Job
}
