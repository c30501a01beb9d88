package agent

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/benvon/daily-agent/internal/models"
	"github.com/benvon/daily-agent/internal/scheduler"
	"github.com/benvon/daily-agent/internal/store"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Notification titles
const (
	ReminderTitle   = "Lokha Task Reminder"
	ScreenTimeTitle = "Screen Time Limit reached"
	TestAlertTitle  = "Lokha Test Alert"

	testAlertBody          = "If you're reading this, Lokha can reach you! 🔔"
	permissionMessage      = "Notification permission not granted. Please enable it in Settings."
	alarmStoppedMessage    = "Alarm stopped. You've got this! Move fast! 🚀"
	settingsSavedMessage   = "Settings saved! I'll use these preferences to help you better."
	voiceGreetingUtterance = "Hello! My name is Lokha. I am ready to help you with your daily schedule."
)

// notification is a delivery decided under mu and sent after it is released
type notification struct {
	title string
	body  string
}

// Tick runs one scheduler pass. Due reminders are recorded and persisted before any side effect.
// Regular ticks also count screen time. Notifications go out after the state lock is released.
func (a *Agent) Tick(ctx context.Context, kind scheduler.TickKind) error {
	ctx, span := tracer.Start(ctx, "agent.tick")
	defer span.End()

	a.mu.Lock()
	now := a.clk.Now()
	settings := a.state.Settings

	policy := scheduler.NewPolicy(settings.ReminderAdvanceMinutes)
	due := policy.Check(store.NewTaskStore(a.state.Tasks).ForDay(now), now)
	pruned := scheduler.Prune(a.state.Tasks, now)

	tracked, warn := false, false
	if kind == scheduler.TickRegular && settings.EnableScreenTimeLimit && a.present(now) {
		tracked = true
		warn = scheduler.TrackUsage(&a.state.Usage, now, settings.DailyLimitHours)
	}

	span.SetAttributes(
		attribute.String("kind", string(kind)),
		attribute.Int("due", len(due)),
		attribute.Int("pruned", pruned))

	if len(due) > 0 || pruned > 0 || tracked {
		a.persist(ctx)
	}

	var outgoing []notification
	for _, task := range due {
		outgoing = append(outgoing, a.sendReminder(ctx, task)...)
	}
	if warn {
		outgoing = append(outgoing, a.sendScreenTimeWarning(ctx)...)
	}
	if len(due) > 0 || warn {
		// chat entries posted by the side effects
		a.persist(ctx)
	}
	a.mu.Unlock()

	a.deliver(ctx, outgoing)
	return nil
}

func (a *Agent) present(now time.Time) bool {
	return a.presence == nil || a.presence(now)
}

// deliver sends notifications without mu held. Each send is bounded by the notify timeout.
func (a *Agent) deliver(ctx context.Context, outgoing []notification) bool {
	ok := true
	for _, n := range outgoing {
		sendCtx, cancel := context.WithTimeout(ctx, a.notifyTimeout)
		err := a.notifier.Notify(sendCtx, n.title, n.body)
		cancel()
		if err != nil {
			ok = false
			a.logger.Warn("failed_to_send_notification",
				zap.String("title", n.title),
				zap.Error(err))
		}
	}
	return ok
}

// sendReminder applies the local side effects of a fired reminder and returns the notification to send. Caller holds mu.
func (a *Agent) sendReminder(ctx context.Context, task *models.Task) []notification {
	a.logger.Info("reminder_fired",
		zap.String("task_id", task.ID.String()),
		zap.String("time", task.Time))

	settings := a.state.Settings
	var outgoing []notification
	if settings.EnableNotifications {
		outgoing = append(outgoing, notification{title: ReminderTitle, body: "Time for: " + task.Title})
	}
	a.beep(ctx)
	a.post(fmt.Sprintf("⏰ Reminder: It's time for \"%s\"!", task.Title))
	a.speakLater(ctx, fmt.Sprintf("Excuse me, this is your reminder for: %s.", task.Title))

	if settings.EnableAlarm {
		a.alarm.Start(ctx, task.Title)
	}
	return outgoing
}

// sendScreenTimeWarning posts and speaks the daily limit warning. Caller holds mu.
func (a *Agent) sendScreenTimeWarning(ctx context.Context) []notification {
	settings := a.state.Settings
	msg := fmt.Sprintf("⚠️ Lokha Alert: You've reached your %sh screen time goal today. Time for a break?",
		strconv.FormatFloat(settings.DailyLimitHours, 'f', -1, 64))

	a.logger.Info("screen_time_limit_reached", zap.Int("minutes", a.state.Usage.Minutes))
	a.post(msg)
	var outgoing []notification
	if settings.EnableNotifications {
		outgoing = append(outgoing, notification{title: ScreenTimeTitle, body: msg})
	}
	a.speak(ctx, fmt.Sprintf("Hey %s, you've hit your screen time limit for today. Let's take a break and rest your eyes!",
		settings.DisplayName()))
	return outgoing
}

// ring is called by the alarm loop without mu held
func (a *Agent) ring(ctx context.Context, title string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	// a ring that was waiting on mu while the alarm stopped must stay silent
	if active, ok := a.alarm.Active(); !ok || active != title {
		return
	}
	a.beep(ctx)
	a.speak(ctx, fmt.Sprintf("Hey! It is time for %s. Please complete your task.", title))
}

// StopAlarm stops a running alarm and reports whether one was running.
// The encouragement message is posted only when an alarm was stopped.
func (a *Agent) StopAlarm(ctx context.Context) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.alarm.Stop() {
		return false
	}
	a.speaker.Cancel()
	a.post(alarmStoppedMessage)
	a.persist(ctx)
	a.logger.Info("alarm_stopped")
	return true
}

// AlarmActive returns the alarmed task title and whether an alarm is running
func (a *Agent) AlarmActive() (string, bool) {
	return a.alarm.Active()
}

// TestNotification sends a test alert and reports whether it was delivered.
// When notifications are disabled or delivery fails an explanatory message is posted instead.
func (a *Agent) TestNotification(ctx context.Context) bool {
	if a.Settings().EnableNotifications &&
		a.deliver(ctx, []notification{{title: TestAlertTitle, body: testAlertBody}}) {
		return true
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.post(permissionMessage)
	a.persist(ctx)
	return false
}

// TestVoice speaks the voice greeting regardless of the voice setting
func (a *Agent) TestVoice(ctx context.Context) error {
	return a.speaker.Speak(ctx, voiceGreetingUtterance)
}
