package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/benvon/daily-agent/internal/models"
	"github.com/benvon/daily-agent/internal/notify"
	"github.com/benvon/daily-agent/internal/responder"
	"github.com/benvon/daily-agent/internal/scheduler"
	"github.com/benvon/daily-agent/internal/services/ai"
	"github.com/benvon/daily-agent/internal/store"
	"github.com/google/uuid"
	"github.com/jmhodges/clock"
)

// Monday
var testNow = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

type mockNotifier struct {
	notifyFunc func(ctx context.Context, title, body string) error
	titles     []string
	bodies     []string
}

func (m *mockNotifier) Notify(ctx context.Context, title, body string) error {
	m.titles = append(m.titles, title)
	m.bodies = append(m.bodies, body)
	if m.notifyFunc != nil {
		return m.notifyFunc(ctx, title, body)
	}
	return nil
}

type mockFallback struct {
	replyFunc func(ctx context.Context, history []ai.ChatMessage, settings models.Settings) (string, error)
	calls     int
}

func (m *mockFallback) Reply(ctx context.Context, history []ai.ChatMessage, settings models.Settings) (string, error) {
	m.calls++
	return m.replyFunc(ctx, history, settings)
}

type failingPersister struct {
	*store.MemoryPersister
}

func (p failingPersister) Save(ctx context.Context, state *models.State) error {
	return errors.New("disk full")
}

type fixture struct {
	agent     *Agent
	clk       clock.FakeClock
	notifier  *mockNotifier
	outbox    *notify.Outbox
	persister *store.MemoryPersister
}

func newFixture(t *testing.T, mutate func(*Options)) *fixture {
	t.Helper()

	clk := clock.NewFake()
	clk.Set(testNow)
	f := &fixture{
		clk:       clk,
		notifier:  &mockNotifier{},
		outbox:    notify.NewOutbox(clk),
		persister: store.NewMemoryPersister(),
	}
	opts := Options{
		Persister: f.persister,
		Notifier:  f.notifier,
		Speaker:   f.outbox,
		Sounder:   f.outbox,
		Clock:     clk,
		Chooser:   func(n int) int { return 0 },
	}
	if mutate != nil {
		mutate(&opts)
	}

	a, err := New(context.Background(), opts)
	if err != nil {
		t.Fatalf("Failed to create agent: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	f.agent = a
	return f
}

func (f *fixture) lastMessage(t *testing.T) string {
	t.Helper()
	conv := f.agent.Conversation()
	if len(conv) == 0 {
		t.Fatal("Expected conversation entries")
	}
	return conv[len(conv)-1].Message
}

func (f *fixture) addTask(t *testing.T, title, clock string, days ...string) *models.Task {
	t.Helper()
	task, err := f.agent.CreateTask(context.Background(), models.TaskDraft{
		Title: title, Time: clock, Days: days, ReminderEnabled: true,
	})
	if err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}
	return task
}

func TestNew_PostsWelcomeOnce(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	conv := f.agent.Conversation()
	if len(conv) != 1 || conv[0].Message != welcomeMessage || conv[0].Sender != models.SenderAgent {
		t.Fatalf("Expected single welcome message, got %+v", conv)
	}

	again, err := New(context.Background(), Options{Persister: f.persister, Clock: f.clk})
	if err != nil {
		t.Fatalf("Failed to reload agent: %v", err)
	}
	if got := len(again.Conversation()); got != 1 {
		t.Errorf("Expected welcome not to repeat, got %d entries", got)
	}
}

func TestNew_AppliesSeedOnFreshState(t *testing.T) {
	t.Parallel()

	seed := models.DefaultSettings()
	seed.UserName = "Sam"
	f := newFixture(t, func(o *Options) {
		o.SeedSettings = &seed
		o.SeedPatterns = []models.TrainedPattern{{Trigger: "lunch", Response: "Enjoy your meal, {userName}!"}}
	})

	if got := f.agent.Settings().UserName; got != "Sam" {
		t.Errorf("Expected seeded user name, got %q", got)
	}
	if got := len(f.agent.Patterns()); got != 1 {
		t.Errorf("Expected 1 seeded pattern, got %d", got)
	}
}

func TestHandleMessage_BlankIsIgnored(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	resp, err := f.agent.HandleMessage(context.Background(), "   ")
	if err != nil || resp != nil {
		t.Errorf("Expected no-op for blank text, got %+v, %v", resp, err)
	}
	if got := len(f.agent.Conversation()); got != 1 {
		t.Errorf("Expected conversation unchanged, got %d entries", got)
	}
}

func TestHandleMessage_CreateThenConfirm(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()

	resp, err := f.agent.HandleMessage(ctx, "remind me to call mom at 5pm")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.Intent != responder.IntentCreateTask || resp.Action != responder.ActionOpenForm {
		t.Fatalf("Expected create intent opening form, got %s/%s", resp.Intent, resp.Action)
	}
	draft, open := f.agent.Draft()
	if !open || draft.Title != "Call mom" || draft.Time != "17:00" {
		t.Fatalf("Expected prefilled draft, got %+v", draft)
	}

	resp, err = f.agent.HandleMessage(ctx, "yes")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.Action != responder.ActionSaveForm || resp.Reply == "" {
		t.Fatalf("Expected save with confirmation, got %+v", resp)
	}
	if resp.Task == nil || resp.Task.Title != "Call mom" {
		t.Fatalf("Expected saved task, got %+v", resp.Task)
	}
	if _, open := f.agent.Draft(); open {
		t.Error("Expected form closed after save")
	}
	if got := len(f.agent.Tasks()); got != 1 {
		t.Errorf("Expected exactly 1 task, got %d", got)
	}

	if len(resp.Entries) != 3 {
		t.Fatalf("Expected user, confirmation and created entries, got %d", len(resp.Entries))
	}
	if got := resp.Entries[1].Message; got != "Done! I've saved that to your schedule. What's next?" {
		t.Errorf("Expected confirmation before creation, got %q", got)
	}
	if !strings.HasPrefix(resp.Entries[2].Message, "Perfect! I've added \"Call mom\" to your schedule at 5:00 PM.") {
		t.Errorf("Unexpected creation message: %q", resp.Entries[2].Message)
	}
}

func TestHandleMessage_CancelClosesForm(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()
	if _, err := f.agent.HandleMessage(ctx, "add something"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	resp, err := f.agent.HandleMessage(ctx, "cancel")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.Action != responder.ActionCancelForm {
		t.Errorf("Expected cancel action, got %s", resp.Action)
	}
	if _, open := f.agent.Draft(); open {
		t.Error("Expected form closed")
	}
	if got := len(f.agent.Tasks()); got != 0 {
		t.Errorf("Expected no task saved, got %d", got)
	}
}

func TestHandleMessage_ConfirmInvalidDraftKeepsForm(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()
	f.agent.OpenForm(models.NewTaskDraft("", "09:00"))

	resp, err := f.agent.HandleMessage(ctx, "ok")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.Task != nil {
		t.Error("Expected no task for a draft without title")
	}
	if _, open := f.agent.Draft(); !open {
		t.Error("Expected form to stay open")
	}
	if resp.Reply != invalidTaskMessage {
		t.Errorf("Expected reply %q, got %q", invalidTaskMessage, resp.Reply)
	}
	if len(resp.Entries) != 2 || resp.Entries[1].Message != invalidTaskMessage {
		t.Fatalf("Expected only the user entry and the invalid task message, got %+v", resp.Entries)
	}
	for _, e := range f.agent.Conversation() {
		if strings.HasPrefix(e.Message, "Done!") {
			t.Errorf("Expected no save confirmation for an invalid draft, got %q", e.Message)
		}
	}
}

func TestHandleMessage_TrainedPattern(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()

	settings := f.agent.Settings()
	settings.UserName = "Sam"
	if _, err := f.agent.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("Failed to save settings: %v", err)
	}
	if _, err := f.agent.AddPattern(ctx, "lunch", "Enjoy your meal, {userName}!"); err != nil {
		t.Fatalf("Failed to add pattern: %v", err)
	}

	resp, err := f.agent.HandleMessage(ctx, "what about lunch")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.Reply != "Enjoy your meal, Sam!" {
		t.Errorf("Expected trained reply, got %q", resp.Reply)
	}
}

func TestHandleMessage_SpeaksWhenVoiceEnabled(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()
	settings := f.agent.Settings()
	settings.EnableVoiceResponse = true
	if _, err := f.agent.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("Failed to save settings: %v", err)
	}

	resp, err := f.agent.HandleMessage(ctx, "help")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	u, ok := f.outbox.Peek()
	if !ok || u.Text != resp.Reply {
		t.Errorf("Expected reply to be spoken, got %+v", u)
	}
}

func TestHandleMessage_Fallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		text      string
		reply     string
		err       error
		wantCalls int
		wantLLM   bool
	}{
		{name: "default intent uses fallback", text: "tell me a joke", reply: "Why did the clock...", wantCalls: 1, wantLLM: true},
		{name: "fallback error keeps canned reply", text: "tell me a joke", err: errors.New("quota"), wantCalls: 1},
		{name: "built-in intent skips fallback", text: "hello", reply: "unused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fb := &mockFallback{replyFunc: func(ctx context.Context, history []ai.ChatMessage, settings models.Settings) (string, error) {
				if len(history) == 0 || history[len(history)-1].Content != tt.text {
					t.Errorf("Expected history to end with the user message, got %+v", history)
				}
				return tt.reply, tt.err
			}}
			f := newFixture(t, func(o *Options) { o.Fallback = fb })

			resp, err := f.agent.HandleMessage(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if fb.calls != tt.wantCalls {
				t.Errorf("Expected %d fallback calls, got %d", tt.wantCalls, fb.calls)
			}
			if tt.wantLLM && resp.Reply != tt.reply {
				t.Errorf("Expected LLM reply, got %q", resp.Reply)
			}
			if !tt.wantLLM && resp.Reply == tt.reply {
				t.Errorf("Expected canned reply, got %q", resp.Reply)
			}
		})
	}
}

func TestCreateTask_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		draft models.TaskDraft
	}{
		{name: "missing title", draft: models.TaskDraft{Time: "09:00"}},
		{name: "missing time", draft: models.TaskDraft{Title: "Standup"}},
		{name: "bad time", draft: models.TaskDraft{Title: "Standup", Time: "25:00"}},
		{name: "bad day", draft: models.TaskDraft{Title: "Standup", Time: "09:00", Days: []string{"someday"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, nil)
			_, err := f.agent.CreateTask(context.Background(), tt.draft)
			if !errors.Is(err, ErrInvalidTask) {
				t.Errorf("Expected ErrInvalidTask, got %v", err)
			}
			if !IsInvalidInput(err) {
				t.Error("Expected error to be classified as invalid input")
			}
			if got := len(f.agent.Tasks()); got != 0 {
				t.Errorf("Expected no mutation, got %d tasks", got)
			}
		})
	}
}

func TestCreateTask_DefaultsToToday(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	task := f.addTask(t, "Standup", "09:00")
	if len(task.Days) != 1 || task.Days[0] != models.DayToday {
		t.Errorf("Expected days [today], got %v", task.Days)
	}
}

func TestCreateTask_PersistFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(o *Options) {
		o.Persister = failingPersister{store.NewMemoryPersister()}
	})
	if _, err := f.agent.CreateTask(context.Background(), models.TaskDraft{Title: "Standup", Time: "09:00"}); err != nil {
		t.Fatalf("Expected persistence failure to be swallowed, got %v", err)
	}
	if got := len(f.agent.Tasks()); got != 1 {
		t.Errorf("Expected task kept in memory, got %d", got)
	}
}

func TestToggleTask(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()
	task := f.addTask(t, "Standup", "09:00")

	toggled, err := f.agent.ToggleTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !toggled.Completed {
		t.Error("Expected task completed")
	}
	if got := f.lastMessage(t); got != "Great job completing \"Standup\"! Keep up the good work! 🎉" {
		t.Errorf("Unexpected congratulation: %q", got)
	}

	before := len(f.agent.Conversation())
	if _, err := f.agent.ToggleTask(ctx, task.ID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := len(f.agent.Conversation()); got != before {
		t.Error("Expected no message when un-completing")
	}

	if _, err := f.agent.ToggleTask(ctx, uuid.New()); !errors.Is(err, store.ErrTaskNotFound) {
		t.Errorf("Expected ErrTaskNotFound, got %v", err)
	}
}

func TestTick_FiresOncePerDay(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()
	f.addTask(t, "Standup", "09:00")

	f.clk.Set(testNow.Add(50 * time.Minute)) // 08:50
	if err := f.agent.Tick(ctx, scheduler.TickRegular); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(f.notifier.titles) != 0 {
		t.Fatalf("Expected no reminder at 08:50, got %v", f.notifier.titles)
	}

	f.clk.Set(testNow.Add(55 * time.Minute)) // 08:55
	if err := f.agent.Tick(ctx, scheduler.TickRegular); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(f.notifier.titles) != 1 || f.notifier.titles[0] != ReminderTitle || f.notifier.bodies[0] != "Time for: Standup" {
		t.Fatalf("Expected one reminder, got %v %v", f.notifier.titles, f.notifier.bodies)
	}
	if got := f.lastMessage(t); got != "⏰ Reminder: It's time for \"Standup\"!" {
		t.Errorf("Unexpected reminder message: %q", got)
	}
	if f.outbox.Beeps() != 1 {
		t.Errorf("Expected one beep, got %d", f.outbox.Beeps())
	}

	f.clk.Add(time.Minute)
	if err := f.agent.Tick(ctx, scheduler.TickHeartbeat); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(f.notifier.titles) != 1 {
		t.Errorf("Expected no duplicate reminder, got %d", len(f.notifier.titles))
	}

	reloaded, err := f.persister.Load(ctx)
	if err != nil {
		t.Fatalf("Failed to load state: %v", err)
	}
	if !reloaded.Tasks[0].ReminderSentOn("2026-10-19") {
		t.Error("Expected sent marker persisted")
	}
}

func TestTick_DisabledReminderNeverFires(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()
	if _, err := f.agent.CreateTask(ctx, models.TaskDraft{Title: "Quiet", Time: "09:00", ReminderEnabled: false}); err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	start := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	for m := 0; m < 24*60; m += 7 {
		f.clk.Set(start.Add(time.Duration(m) * time.Minute))
		if err := f.agent.Tick(ctx, scheduler.TickRegular); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	if len(f.notifier.titles) != 0 {
		t.Errorf("Expected no notifications, got %d", len(f.notifier.titles))
	}
}

func TestTick_OtherWeekdaySkipped(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.addTask(t, "Yoga", "09:00", "tue")

	f.clk.Set(testNow.Add(58 * time.Minute))
	if err := f.agent.Tick(context.Background(), scheduler.TickRegular); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(f.notifier.titles) != 0 {
		t.Error("Expected Tuesday task not to fire on Monday")
	}
}

func TestTick_NotificationsDisabled(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()
	settings := f.agent.Settings()
	settings.EnableNotifications = false
	if _, err := f.agent.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("Failed to save settings: %v", err)
	}
	f.addTask(t, "Standup", "09:00")

	f.clk.Set(testNow.Add(59 * time.Minute))
	if err := f.agent.Tick(ctx, scheduler.TickRegular); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(f.notifier.titles) != 0 {
		t.Error("Expected no notification when disabled")
	}
	if got := f.lastMessage(t); !strings.HasPrefix(got, "⏰ Reminder") {
		t.Errorf("Expected chat reminder regardless, got %q", got)
	}
}

func TestAlarm_StartAndStop(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()
	settings := f.agent.Settings()
	settings.EnableAlarm = true
	if _, err := f.agent.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("Failed to save settings: %v", err)
	}
	if !f.agent.HeartbeatEnabled() {
		t.Error("Expected heartbeat enabled with alarm")
	}

	if f.agent.StopAlarm(ctx) {
		t.Error("Expected StopAlarm to report no alarm")
	}

	f.addTask(t, "Standup", "09:00")
	f.clk.Set(testNow.Add(time.Hour))
	if err := f.agent.Tick(ctx, scheduler.TickRegular); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	title, active := f.agent.AlarmActive()
	if !active || title != "Standup" {
		t.Fatalf("Expected alarm for Standup, got %q %v", title, active)
	}

	if !f.agent.StopAlarm(ctx) {
		t.Fatal("Expected StopAlarm to stop the alarm")
	}
	if got := f.lastMessage(t); got != alarmStoppedMessage {
		t.Errorf("Expected alarm stopped message, got %q", got)
	}
	before := len(f.agent.Conversation())
	if f.agent.StopAlarm(ctx) {
		t.Error("Expected second StopAlarm to be a no-op")
	}
	if got := len(f.agent.Conversation()); got != before {
		t.Error("Expected no message from idle StopAlarm")
	}
}

func TestTick_ScreenTimeWarnsOnce(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()
	settings := f.agent.Settings()
	settings.EnableScreenTimeLimit = true
	settings.DailyLimitHours = 0.05 // 3 minutes
	if _, err := f.agent.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("Failed to save settings: %v", err)
	}

	for i := 0; i < 6; i++ {
		f.clk.Add(time.Minute)
		if err := f.agent.Tick(ctx, scheduler.TickRegular); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		// heartbeat ticks do not count
		if err := f.agent.Tick(ctx, scheduler.TickHeartbeat); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	if got := f.agent.Usage().Minutes; got != 6 {
		t.Errorf("Expected 6 minutes tracked, got %d", got)
	}
	warnings := 0
	for _, e := range f.agent.Conversation() {
		if strings.HasPrefix(e.Message, "⚠️ Lokha Alert: You've reached your 0.05h screen time goal") {
			warnings++
		}
	}
	if warnings != 1 {
		t.Errorf("Expected exactly one warning, got %d", warnings)
	}
	if len(f.notifier.titles) != 1 || f.notifier.titles[0] != ScreenTimeTitle {
		t.Errorf("Expected one screen time notification, got %v", f.notifier.titles)
	}
}

func TestTick_ScreenTimeOnlyWhilePresent(t *testing.T) {
	t.Parallel()

	present := false
	f := newFixture(t, func(o *Options) {
		o.Presence = func(now time.Time) bool { return present }
	})
	ctx := context.Background()
	settings := f.agent.Settings()
	settings.EnableScreenTimeLimit = true
	if _, err := f.agent.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("Failed to save settings: %v", err)
	}

	for i := 0; i < 4; i++ {
		present = i%2 == 0
		f.clk.Add(time.Minute)
		if err := f.agent.Tick(ctx, scheduler.TickRegular); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	if got := f.agent.Usage().Minutes; got != 2 {
		t.Errorf("Expected 2 minutes tracked, got %d", got)
	}
}

func TestAddRoutine(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(o *Options) { o.Chooser = func(n int) int { return 1 } })
	existing := f.addTask(t, "Standup", "09:00")

	routine, added := f.agent.AddRoutine(context.Background())
	if routine.Title != "Evening Wind Down" {
		t.Errorf("Expected Evening Wind Down, got %s", routine.Title)
	}
	if len(added) != len(routine.Tasks) {
		t.Fatalf("Expected %d added tasks, got %d", len(routine.Tasks), len(added))
	}
	for i, task := range added {
		if task.ID == existing.ID || task.Title != routine.Tasks[i].Title {
			t.Errorf("Expected added task %d to be %q, got %q", i, routine.Tasks[i].Title, task.Title)
		}
	}
	tasks := f.agent.Tasks()[1:]
	if len(tasks) != 3 {
		t.Fatalf("Expected 3 tasks, got %d", len(tasks))
	}
	if tasks[0].Notes != "Added from Evening Wind Down" || !tasks[0].ReminderEnabled {
		t.Errorf("Unexpected routine task: %+v", tasks[0])
	}
	if got := f.lastMessage(t); got != "Added the **Evening Wind Down** routine to your day! 🚀" {
		t.Errorf("Unexpected routine message: %q", got)
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()

	stats := f.agent.Stats()
	if stats.Total != 0 || stats.CompletionRate != 0 {
		t.Errorf("Expected empty stats, got %+v", stats)
	}

	a := f.addTask(t, "A", "09:00")
	f.addTask(t, "B", "10:00")
	f.addTask(t, "C", "11:00")
	if _, err := f.agent.ToggleTask(ctx, a.ID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	stats = f.agent.Stats()
	if stats.Total != 3 || stats.Completed != 1 || stats.CompletionRate != 33 {
		t.Errorf("Expected 1/3 at 33%%, got %+v", stats)
	}
	if stats.Insight != "Consistent progress is the key. You've got this! 💪" {
		t.Errorf("Unexpected insight: %q", stats.Insight)
	}
}

func TestScheduleSummary(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()
	if got := f.agent.ScheduleSummary(ctx); got != "Your schedule is currently clear. Want to add something?" {
		t.Errorf("Unexpected empty summary: %q", got)
	}

	f.addTask(t, "Lunch", "12:30")
	f.addTask(t, "Standup", "09:00", "mon")
	f.addTask(t, "Yoga", "07:00", "tue")

	want := "📅 **Today's Schedule:**\n• 9:00 AM: Standup ⏳\n• 12:30 PM: Lunch ⏳\n"
	if got := f.agent.ScheduleSummary(ctx); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	if got := f.lastMessage(t); got != want {
		t.Error("Expected summary posted to the conversation")
	}
}

func TestPatterns(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()

	if _, err := f.agent.AddPattern(ctx, "  ", "x"); !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("Expected ErrInvalidPattern, got %v", err)
	}
	if _, err := f.agent.AddPattern(ctx, "gym", "Go lift!"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := f.agent.AddPattern(ctx, "gym", "Second"); err != nil {
		t.Fatalf("Expected duplicate triggers to be allowed, got %v", err)
	}
	if got := f.lastMessage(t); got != "I've learned a new pattern! Now when you say \"gym\", I'll know what to do." {
		t.Errorf("Unexpected pattern message: %q", got)
	}

	if _, err := f.agent.DeletePattern(ctx, 5); !errors.Is(err, ErrPatternNotFound) {
		t.Errorf("Expected ErrPatternNotFound, got %v", err)
	}
	removed, err := f.agent.DeletePattern(ctx, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if removed.Response != "Go lift!" {
		t.Errorf("Expected first pattern removed, got %+v", removed)
	}
	patterns := f.agent.Patterns()
	if len(patterns) != 1 || patterns[0].Response != "Second" {
		t.Errorf("Expected remaining pattern, got %+v", patterns)
	}
}

func TestSaveSettings_Invalid(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	settings := f.agent.Settings()
	settings.DailyLimitHours = 0
	if _, err := f.agent.SaveSettings(context.Background(), settings); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("Expected ErrInvalidSettings, got %v", err)
	}
	if got := f.agent.Settings().DailyLimitHours; got != models.DefaultDailyLimitHours {
		t.Errorf("Expected settings unchanged, got %v", got)
	}
}

func TestTestNotification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		enabled       bool
		notifyErr     error
		wantDelivered bool
	}{
		{name: "delivered", enabled: true, wantDelivered: true},
		{name: "disabled", enabled: false},
		{name: "delivery failure", enabled: true, notifyErr: errors.New("smtp down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, nil)
			f.notifier.notifyFunc = func(context.Context, string, string) error { return tt.notifyErr }
			ctx := context.Background()
			settings := f.agent.Settings()
			settings.EnableNotifications = tt.enabled
			if _, err := f.agent.SaveSettings(ctx, settings); err != nil {
				t.Fatalf("Failed to save settings: %v", err)
			}

			if got := f.agent.TestNotification(ctx); got != tt.wantDelivered {
				t.Errorf("Expected delivered %v, got %v", tt.wantDelivered, got)
			}
			if !tt.wantDelivered && f.lastMessage(t) != permissionMessage {
				t.Errorf("Expected permission message, got %q", f.lastMessage(t))
			}
		})
	}
}

func TestFormLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()

	if _, err := f.agent.SaveForm(ctx); !errors.Is(err, ErrNoDraft) {
		t.Errorf("Expected ErrNoDraft, got %v", err)
	}
	if f.agent.CancelForm() {
		t.Error("Expected CancelForm to report no open form")
	}

	draft := f.agent.OpenForm(nil)
	if !draft.ReminderEnabled {
		t.Error("Expected blank form to enable reminders")
	}
	f.agent.OpenForm(&models.TaskDraft{Title: "Read", Time: "21:00", Days: []string{"Monday"}, ReminderEnabled: true})
	task, err := f.agent.SaveForm(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(task.Days) != 1 || task.Days[0] != "mon" {
		t.Errorf("Expected normalized days, got %v", task.Days)
	}
	if _, open := f.agent.Draft(); open {
		t.Error("Expected form closed after save")
	}
}

func TestTick_SlowNotificationDoesNotBlockChat(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.addTask(t, "Standup", "08:03")

	sending := make(chan struct{})
	release := make(chan struct{})
	f.notifier.notifyFunc = func(ctx context.Context, title, body string) error {
		close(sending)
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	}

	ticked := make(chan error, 1)
	go func() { ticked <- f.agent.Tick(context.Background(), scheduler.TickRegular) }()
	<-sending

	replied := make(chan *Response, 1)
	go func() {
		resp, _ := f.agent.HandleMessage(context.Background(), "hello")
		replied <- resp
	}()

	select {
	case resp := <-replied:
		if resp == nil || resp.Intent != responder.IntentGreeting {
			t.Errorf("Expected greeting reply, got %+v", resp)
		}
	case <-time.After(2 * time.Second):
		t.Error("Expected chat to answer while a notification is being sent")
	}

	close(release)
	if err := <-ticked; err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestTick_NotificationIsBoundedByTimeout(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(o *Options) { o.NotifyTimeout = 20 * time.Millisecond })
	f.addTask(t, "Standup", "08:03")

	var hadDeadline bool
	f.notifier.notifyFunc = func(ctx context.Context, title, body string) error {
		_, hadDeadline = ctx.Deadline()
		<-ctx.Done()
		return ctx.Err()
	}

	done := make(chan struct{})
	go func() {
		_ = f.agent.Tick(context.Background(), scheduler.TickRegular)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected a hung notification to be abandoned after the timeout")
	}
	if !hadDeadline {
		t.Error("Expected notification context to carry a deadline")
	}
	if got := f.lastMessage(t); got != "⏰ Reminder: It's time for \"Standup\"!" {
		t.Errorf("Expected reminder posted despite delivery failure, got %q", got)
	}
}

func TestHandleMessage_FallbackRunsWithoutStateLock(t *testing.T) {
	t.Parallel()

	asking := make(chan struct{})
	release := make(chan struct{})
	fb := &mockFallback{replyFunc: func(ctx context.Context, history []ai.ChatMessage, settings models.Settings) (string, error) {
		close(asking)
		<-release
		return "Here is a thought.", nil
	}}
	f := newFixture(t, func(o *Options) { o.Fallback = fb })

	replied := make(chan *Response, 1)
	go func() {
		resp, _ := f.agent.HandleMessage(context.Background(), "tell me a joke")
		replied <- resp
	}()
	<-asking

	listed := make(chan int, 1)
	go func() { listed <- len(f.agent.Tasks()) }()
	select {
	case n := <-listed:
		if n != 0 {
			t.Errorf("Expected 0 tasks, got %d", n)
		}
	case <-time.After(2 * time.Second):
		t.Error("Expected task reads to proceed while the LLM is answering")
	}

	close(release)
	resp := <-replied
	if resp.Reply != "Here is a thought." {
		t.Errorf("Expected LLM reply, got %q", resp.Reply)
	}
	if last := resp.Entries[len(resp.Entries)-1]; last.Message != "Here is a thought." {
		t.Errorf("Expected LLM reply as the last entry, got %q", last.Message)
	}
}
