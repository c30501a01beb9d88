package agent

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/benvon/daily-agent/internal/models"
	"github.com/benvon/daily-agent/internal/store"
	"github.com/benvon/daily-agent/internal/timeutil"
	"github.com/benvon/daily-agent/internal/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const invalidTaskMessage = "Please enter a task name and time"

// taskInput is the validated shape of a new task
type taskInput struct {
	Title string   `validate:"required,max=200"`
	Time  string   `validate:"required,clock"`
	Days  []string `validate:"dive,day_tag"`
	Notes string   `validate:"max=2000"`
}

// Routine is a named bundle of tasks added in one go
type Routine struct {
	Title string
	Tasks []RoutineTask
}

// RoutineTask is one entry of a routine
type RoutineTask struct {
	Title string
	Time  string
}

// Routines are the built-in routines AddRoutine picks from
var Routines = []Routine{
	{Title: "Morning Kickstart", Tasks: []RoutineTask{
		{Title: "Drink Water", Time: "07:00"},
		{Title: "Exercise", Time: "07:15"},
		{Title: "Check Emails", Time: "08:30"},
	}},
	{Title: "Evening Wind Down", Tasks: []RoutineTask{
		{Title: "Read", Time: "21:30"},
		{Title: "Meditate", Time: "22:00"},
		{Title: "Plan Tomorrow", Time: "22:15"},
	}},
}

// Stats summarises progress across all tasks
type Stats struct {
	Total           int     `json:"total"`
	Completed       int     `json:"completed"`
	CompletionRate  int     `json:"completion_rate"`
	ScreenTimeHours float64 `json:"screen_time_hours"`
	Insight         string  `json:"insight"`
}

// CreateTask validates draft and appends a new task. Empty days default to today.
// Invalid input returns an error wrapping ErrInvalidTask and changes nothing.
func (a *Agent) CreateTask(ctx context.Context, draft models.TaskDraft) (*models.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	task, err := a.createTaskLocked(draft)
	if err != nil {
		return nil, err
	}
	a.persist(ctx)
	return cloneTask(task), nil
}

// validateDraft normalizes and validates draft input without changing any state
func validateDraft(draft models.TaskDraft) (taskInput, error) {
	days, err := validation.NormalizeDays(draft.Days)
	if err != nil {
		return taskInput{}, fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}
	input := taskInput{
		Title: validation.SanitizeText(draft.Title),
		Time:  strings.TrimSpace(draft.Time),
		Days:  days,
		Notes: validation.SanitizeText(draft.Notes),
	}
	if err := validation.Validate.Struct(input); err != nil {
		return taskInput{}, fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}
	return input, nil
}

func (a *Agent) createTaskLocked(draft models.TaskDraft) (*models.Task, error) {
	input, err := validateDraft(draft)
	if err != nil {
		return nil, err
	}

	task := models.NewTask(input.Title, input.Time, input.Days, input.Notes, draft.ReminderEnabled, a.clk.Now())
	tasks := store.NewTaskStore(a.state.Tasks)
	tasks.Add(task)
	a.state.Tasks = tasks.All()

	a.post(fmt.Sprintf("Perfect! I've added \"%s\" to your schedule at %s. I'll remind you when it's time!",
		task.Title, timeutil.FormatDisplay(task.Time)))
	a.logger.Info("task_created",
		zap.String("task_id", task.ID.String()),
		zap.String("time", task.Time),
		zap.Strings("days", task.Days))
	return task, nil
}

// ToggleTask flips a task's completion. Completing a task posts a congratulation.
func (a *Agent) ToggleTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	task, err := store.NewTaskStore(a.state.Tasks).Toggle(id)
	if err != nil {
		return nil, err
	}
	if task.Completed {
		a.post(fmt.Sprintf("Great job completing \"%s\"! Keep up the good work! 🎉", task.Title))
	}
	a.persist(ctx)
	return cloneTask(task), nil
}

// Tasks returns every task in insertion order
func (a *Agent) Tasks() []*models.Task {
	a.mu.Lock()
	defer a.mu.Unlock()
	return cloneTasks(a.state.Tasks)
}

// TodayTasks returns the tasks that apply today, in insertion order
func (a *Agent) TodayTasks() []*models.Task {
	a.mu.Lock()
	defer a.mu.Unlock()
	return cloneTasks(store.NewTaskStore(a.state.Tasks).ForDay(a.clk.Now()))
}

// AddRoutine adds every task of one built-in routine for today.
// It returns the routine and the tasks it created, in routine order.
func (a *Agent) AddRoutine(ctx context.Context) (Routine, []*models.Task) {
	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.choose(len(Routines))
	if i < 0 || i >= len(Routines) {
		i = 0
	}
	routine := Routines[i]

	now := a.clk.Now()
	tasks := store.NewTaskStore(a.state.Tasks)
	added := make([]*models.Task, 0, len(routine.Tasks))
	for _, rt := range routine.Tasks {
		task := models.NewTask(rt.Title, rt.Time, nil, "Added from "+routine.Title, true, now)
		tasks.Add(task)
		added = append(added, task)
	}
	a.state.Tasks = tasks.All()
	a.post(fmt.Sprintf("Added the **%s** routine to your day! 🚀", routine.Title))
	a.persist(ctx)
	return routine, cloneTasks(added)
}

// Stats returns completion and screen-time figures
func (a *Agent) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	tasks := store.NewTaskStore(a.state.Tasks)
	stats := Stats{
		Total:           tasks.Len(),
		Completed:       tasks.Completed(),
		ScreenTimeHours: math.Round(float64(a.state.Usage.Minutes)/60*10) / 10,
	}
	if stats.Total > 0 {
		stats.CompletionRate = int(math.Round(float64(stats.Completed) / float64(stats.Total) * 100))
	}
	if stats.CompletionRate > 80 {
		stats.Insight = "You're a productivity machine! 🚀"
	} else {
		stats.Insight = "Consistent progress is the key. You've got this! 💪"
	}
	return stats
}

// ScheduleSummary posts today's tasks sorted by time and returns the message
func (a *Agent) ScheduleSummary(ctx context.Context) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	msg := scheduleMessage(store.NewTaskStore(a.state.Tasks).ForDay(a.clk.Now()))
	a.post(msg)
	a.persist(ctx)
	return msg
}

func scheduleMessage(today []*models.Task) string {
	if len(today) == 0 {
		return "Your schedule is currently clear. Want to add something?"
	}
	var b strings.Builder
	b.WriteString("📅 **Today's Schedule:**\n")
	for _, t := range store.SortByTime(today) {
		mark := "⏳"
		if t.Completed {
			mark = "✅"
		}
		fmt.Fprintf(&b, "• %s: %s %s\n", timeutil.FormatDisplay(t.Time), t.Title, mark)
	}
	return b.String()
}

func cloneTask(t *models.Task) *models.Task {
	if t == nil {
		return nil
	}
	out := *t
	out.Days = append([]string(nil), t.Days...)
	out.RemindersSent = make(map[string]string, len(t.RemindersSent))
	for k, v := range t.RemindersSent {
		out.RemindersSent[k] = v
	}
	return &out
}

func cloneTasks(tasks []*models.Task) []*models.Task {
	out := make([]*models.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, cloneTask(t))
	}
	return out
}
