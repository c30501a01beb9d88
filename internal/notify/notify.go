// Package notify delivers reminders and spoken replies to the outside world.
package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Notifier shows a titled notification to the user
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// Speaker voices text. Cancel interrupts whatever is being spoken.
type Speaker interface {
	Speak(ctx context.Context, text string) error
	Cancel()
}

// Sounder plays the short reminder beep
type Sounder interface {
	Beep(ctx context.Context) error
}

// Noop discards every notification, utterance and beep
type Noop struct{}

// Notify implements Notifier
func (Noop) Notify(ctx context.Context, title, body string) error { return nil }

// Speak implements Speaker
func (Noop) Speak(ctx context.Context, text string) error { return nil }

// Cancel implements Speaker
func (Noop) Cancel() {}

// Beep implements Sounder
func (Noop) Beep(ctx context.Context) error { return nil }

// LogNotifier writes notifications to the structured log
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier backed by logger
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify implements Notifier
func (n *LogNotifier) Notify(ctx context.Context, title, body string) error {
	n.logger.Info("notification",
		zap.String("title", title),
		zap.String("body", body))
	return nil
}

// Multi fans a notification out to several notifiers.
// Every notifier is tried; failures are joined.
type Multi []Notifier

// Notify implements Notifier
func (m Multi) Notify(ctx context.Context, title, body string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, title, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// sendWithContext runs send and returns early when ctx ends first.
// The abandoned send finishes in the background.
func sendWithContext(ctx context.Context, send func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- send() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
