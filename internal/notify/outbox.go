package notify

import (
	"context"
	"sync"
	"time"

	"github.com/jmhodges/clock"
)

// Utterance is one piece of text waiting to be voiced by a client
type Utterance struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Sequence  int64     `json:"sequence"`
}

// Outbox buffers the latest utterance for a client to pick up and counts beeps.
// A new utterance replaces the previous one.
type Outbox struct {
	clk clock.Clock

	mu       sync.Mutex
	current  *Utterance
	sequence int64
	beeps    int64
}

// NewOutbox creates an empty outbox
func NewOutbox(clk clock.Clock) *Outbox {
	if clk == nil {
		clk = clock.New()
	}
	return &Outbox{clk: clk}
}

// Speak implements Speaker
func (o *Outbox) Speak(ctx context.Context, text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sequence++
	o.current = &Utterance{Text: text, CreatedAt: o.clk.Now(), Sequence: o.sequence}
	return nil
}

// Cancel implements Speaker
func (o *Outbox) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.current = nil
}

// Beep implements Sounder
func (o *Outbox) Beep(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.beeps++
	return nil
}

// Take returns the pending utterance and clears it
func (o *Outbox) Take() (Utterance, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil {
		return Utterance{}, false
	}
	u := *o.current
	o.current = nil
	return u, true
}

// Peek returns the pending utterance without clearing it
func (o *Outbox) Peek() (Utterance, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil {
		return Utterance{}, false
	}
	return *o.current, true
}

// Beeps returns how many beeps were requested
func (o *Outbox) Beeps() int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.beeps
}
