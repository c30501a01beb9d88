// Package agent holds the assistant's application state and applies every user and timer
// event to it. One mutex serialises state changes; network calls run outside it.
package agent

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/benvon/daily-agent/internal/models"
	"github.com/benvon/daily-agent/internal/notify"
	"github.com/benvon/daily-agent/internal/responder"
	"github.com/benvon/daily-agent/internal/scheduler"
	"github.com/benvon/daily-agent/internal/services/ai"
	"github.com/benvon/daily-agent/internal/store"
	"github.com/jmhodges/clock"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/benvon/daily-agent/internal/agent")

const (
	// DefaultSpeechDelay is the pause before a reminder is spoken
	DefaultSpeechDelay = time.Second
	// DefaultHistoryLimit is how many conversation entries the LLM fallback sees
	DefaultHistoryLimit = 20
	// DefaultNotifyTimeout bounds a single notification delivery
	DefaultNotifyTimeout = 10 * time.Second

	welcomeMessage = "Welcome! I'm Lokha, your personal daily agent. I can help you manage your schedule and remind you of important tasks. Try adding your first task!"
)

var (
	// ErrInvalidTask is returned when task input is missing a title or a valid time
	ErrInvalidTask = errors.New("invalid task")
	// ErrNoDraft is returned when the task form is not open
	ErrNoDraft = errors.New("no task form open")
	// ErrPatternNotFound is returned for an out-of-range pattern index
	ErrPatternNotFound = errors.New("pattern not found")
	// ErrInvalidPattern is returned when a trigger or response is empty
	ErrInvalidPattern = errors.New("invalid pattern")
	// ErrInvalidSettings is returned when settings fail validation
	ErrInvalidSettings = errors.New("invalid settings")
)

// Options configures an Agent. Nil collaborators fall back to no-op implementations.
type Options struct {
	Persister store.Persister
	Notifier  notify.Notifier
	Speaker   notify.Speaker
	Sounder   notify.Sounder
	// Fallback answers messages no built-in intent matched; nil disables it
	Fallback ai.Fallback
	Clock    clock.Clock
	Logger   *zap.Logger
	Chooser  responder.Chooser

	// Presence reports whether a client is in the foreground; nil counts every regular tick as screen time
	Presence func(now time.Time) bool

	AlarmInterval time.Duration
	// SpeechDelay defers reminder speech; zero speaks immediately
	SpeechDelay  time.Duration
	HistoryLimit int

	// NotifyTimeout bounds each notification send; zero uses DefaultNotifyTimeout
	NotifyTimeout time.Duration

	// SeedSettings and SeedPatterns are applied when the stored state is empty
	SeedSettings *models.Settings
	SeedPatterns []models.TrainedPattern
}

// Agent is the assistant's application state together with its collaborators
type Agent struct {
	persister store.Persister
	notifier  notify.Notifier
	speaker   notify.Speaker
	sounder   notify.Sounder
	fallback  ai.Fallback
	generator *responder.Generator
	alarm     *scheduler.Alarm
	clk       clock.Clock
	logger    *zap.Logger
	choose    responder.Chooser
	presence  func(now time.Time) bool

	speechDelay   time.Duration
	historyLimit  int
	notifyTimeout time.Duration

	mu    sync.Mutex
	state *models.State
	draft *models.TaskDraft
}

// New loads the stored state and returns a ready agent.
// A fresh installation gets the seed values and the welcome message.
func New(ctx context.Context, opts Options) (*Agent, error) {
	if opts.Persister == nil {
		opts.Persister = store.NewMemoryPersister()
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Noop{}
	}
	if opts.Speaker == nil {
		opts.Speaker = notify.Noop{}
	}
	if opts.Sounder == nil {
		opts.Sounder = notify.Noop{}
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = DefaultNotifyTimeout
	}

	state, err := opts.Persister.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	a := &Agent{
		persister:     opts.Persister,
		notifier:      opts.Notifier,
		speaker:       opts.Speaker,
		sounder:       opts.Sounder,
		fallback:      opts.Fallback,
		generator:     responder.NewGenerator(opts.Chooser),
		clk:           opts.Clock,
		logger:        opts.Logger,
		choose:        opts.Chooser,
		presence:      opts.Presence,
		speechDelay:   opts.SpeechDelay,
		historyLimit:  opts.HistoryLimit,
		notifyTimeout: opts.NotifyTimeout,
		state:         state,
	}
	if a.choose == nil {
		a.choose = rand.IntN
	}
	a.alarm = scheduler.NewAlarm(opts.Clock, opts.AlarmInterval, a.ring)

	if isFresh(state) {
		if opts.SeedSettings != nil {
			state.Settings = *opts.SeedSettings
			state.Normalize()
		}
		state.Patterns = append(state.Patterns, opts.SeedPatterns...)
	}
	if len(state.Tasks) == 0 && len(state.Conversation) == 0 {
		a.post(welcomeMessage)
		a.persist(ctx)
	}

	a.logger.Info("agent_loaded",
		zap.Int("tasks", len(state.Tasks)),
		zap.Int("patterns", len(state.Patterns)),
		zap.Int("conversation", len(state.Conversation)))
	return a, nil
}

func isFresh(state *models.State) bool {
	return len(state.Tasks) == 0 && len(state.Conversation) == 0 && len(state.Patterns) == 0
}

// Close stops the alarm and releases the persister
func (a *Agent) Close() error {
	a.alarm.Stop()
	return a.persister.Close()
}

// persist saves the whole state. Failures are logged and swallowed. Caller holds mu.
func (a *Agent) persist(ctx context.Context) {
	if err := a.persister.Save(ctx, a.state); err != nil {
		a.logger.Warn("failed_to_persist_state", zap.Error(err))
	}
}

// post appends an agent entry to the conversation. Caller holds mu.
func (a *Agent) post(message string) models.ConversationEntry {
	return a.appendEntry(models.SenderAgent, message)
}

func (a *Agent) appendEntry(sender models.Sender, message string) models.ConversationEntry {
	entry := models.ConversationEntry{Sender: sender, Message: message, Timestamp: a.clk.Now()}
	a.state.Conversation = append(a.state.Conversation, entry)
	return entry
}

// speak voices text when voice responses are enabled. Caller holds mu.
func (a *Agent) speak(ctx context.Context, text string) {
	if !a.state.Settings.EnableVoiceResponse {
		return
	}
	if err := a.speaker.Speak(ctx, text); err != nil {
		a.logger.Warn("failed_to_speak", zap.Error(err))
	}
}

// speakLater voices text after the speech delay, best effort. Caller holds mu.
func (a *Agent) speakLater(ctx context.Context, text string) {
	if !a.state.Settings.EnableVoiceResponse {
		return
	}
	if a.speechDelay <= 0 {
		a.speak(ctx, text)
		return
	}
	ctx = context.WithoutCancel(ctx)
	time.AfterFunc(a.speechDelay, func() {
		if err := a.speaker.Speak(ctx, text); err != nil {
			a.logger.Warn("failed_to_speak", zap.Error(err))
		}
	})
}

func (a *Agent) beep(ctx context.Context) {
	if !a.state.Settings.EnableSound {
		return
	}
	if err := a.sounder.Beep(ctx); err != nil {
		a.logger.Warn("failed_to_beep", zap.Error(err))
	}
}

// Settings returns the current settings
func (a *Agent) Settings() models.Settings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Settings
}

// HeartbeatEnabled reports whether the extra heartbeat tick should run
func (a *Agent) HeartbeatEnabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Settings.HeartbeatEnabled()
}

// Conversation returns a copy of the chat log
func (a *Agent) Conversation() []models.ConversationEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.ConversationEntry(nil), a.state.Conversation...)
}

// Usage returns today's screen-time counter
func (a *Agent) Usage() models.Usage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Usage
}

// Now returns the agent clock's current time
func (a *Agent) Now() time.Time {
	return a.clk.Now()
}
