package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DayToday is the day tag for a task that is not bound to specific weekdays
const DayToday = "today"

// Weekday tags in calendar order
const (
	DaySun = "sun"
	DayMon = "mon"
	DayTue = "tue"
	DayWed = "wed"
	DayThu = "thu"
	DayFri = "fri"
	DaySat = "sat"
)

// WeekdayTags lists the valid weekday tags in calendar order
var WeekdayTags = []string{DaySun, DayMon, DayTue, DayWed, DayThu, DayFri, DaySat}

// Task represents one schedulable reminder item
type Task struct {
	ID              uuid.UUID         `json:"id"`
	Title           string            `json:"title"`
	Time            string            `json:"time"`
	Days            []string          `json:"days"`
	Notes           string            `json:"notes,omitempty"`
	ReminderEnabled bool              `json:"reminder_enabled"`
	Completed       bool              `json:"completed"`
	CreatedAt       time.Time         `json:"created_at"`
	RemindersSent   map[string]string `json:"reminders_sent,omitempty"` // date key -> HH:MM the reminder fired at
}

// NewTask creates a task with a fresh ID. An empty day list defaults to "today".
func NewTask(title, clock string, days []string, notes string, reminderEnabled bool, createdAt time.Time) *Task {
	if len(days) == 0 {
		days = []string{DayToday}
	}
	return &Task{
		ID:              uuid.New(),
		Title:           title,
		Time:            clock,
		Days:            append([]string(nil), days...),
		Notes:           notes,
		ReminderEnabled: reminderEnabled,
		CreatedAt:       createdAt,
		RemindersSent:   make(map[string]string),
	}
}

// AppliesOn reports whether the task is on the schedule for the given weekday tag.
// Tasks tagged "today" apply on every day.
func (t *Task) AppliesOn(weekday string) bool {
	for _, day := range t.Days {
		if day == DayToday {
			return true
		}
		if len(day) >= 3 && len(weekday) >= 3 && strings.EqualFold(day[:3], weekday[:3]) {
			return true
		}
	}
	return false
}

// ReminderSentOn reports whether a reminder already fired on the given date key
func (t *Task) ReminderSentOn(date string) bool {
	_, ok := t.RemindersSent[date]
	return ok
}

// MarkReminderSent records that the reminder fired on date at clock
func (t *Task) MarkReminderSent(date, clock string) {
	if t.RemindersSent == nil {
		t.RemindersSent = make(map[string]string)
	}
	t.RemindersSent[date] = clock
}

// PruneReminders drops bookkeeping entries for dates before the cutoff date key
// and returns how many were removed. Date keys sort lexically.
func (t *Task) PruneReminders(cutoff string) int {
	removed := 0
	for date := range t.RemindersSent {
		if date < cutoff {
			delete(t.RemindersSent, date)
			removed++
		}
	}
	return removed
}

// TaskDraft is the content of the open task-creation form
type TaskDraft struct {
	Title           string   `json:"title"`
	Time            string   `json:"time"`
	Days            []string `json:"days,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	ReminderEnabled bool     `json:"reminder_enabled"`
}

// NewTaskDraft returns a blank form with reminders enabled, prefilled with title and time
func NewTaskDraft(title, clock string) *TaskDraft {
	return &TaskDraft{
		Title:           title,
		Time:            clock,
		ReminderEnabled: true,
	}
}
