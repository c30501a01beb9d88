// Package scheduler decides when task reminders fire and drives the periodic ticks.
package scheduler

import (
	"time"

	"github.com/benvon/daily-agent/internal/models"
	"github.com/benvon/daily-agent/internal/timeutil"
)

// RetentionDays is how long per-day reminder bookkeeping is kept
const RetentionDays = 7

// LateToleranceMinutes is how far past its time a task can still fire.
// A 60 second tick can land just after the task minute.
const LateToleranceMinutes = 1

// Policy decides whether a task is due
type Policy struct {
	AdvanceMinutes int
}

// NewPolicy returns the tolerant-window policy for the given lead time
func NewPolicy(advanceMinutes int) Policy {
	if advanceMinutes < 0 {
		advanceMinutes = 0
	}
	return Policy{AdvanceMinutes: advanceMinutes}
}

// IsDue reports whether task should fire at now.
// A task is due when its reminder is enabled, it is not completed, it applies today,
// no reminder has been recorded for today, and its time is within the window
// [-LateToleranceMinutes, AdvanceMinutes] minutes from now.
func (p Policy) IsDue(task *models.Task, now time.Time) bool {
	if task == nil || !task.ReminderEnabled || task.Completed {
		return false
	}
	if !task.AppliesOn(timeutil.WeekdayTag(now)) {
		return false
	}
	if task.ReminderSentOn(timeutil.DateKey(now)) {
		return false
	}

	minutes, err := timeutil.MinutesUntil(timeutil.Clock(now), task.Time)
	if err != nil {
		return false
	}
	return minutes >= -LateToleranceMinutes && minutes <= p.AdvanceMinutes
}

// Check evaluates every task at now, records a reminder for each due task and returns them
// in input order. Recording happens here so the caller can persist before any side effect.
func (p Policy) Check(tasks []*models.Task, now time.Time) []*models.Task {
	date := timeutil.DateKey(now)
	clock := timeutil.Clock(now)

	var due []*models.Task
	for _, task := range tasks {
		if !p.IsDue(task, now) {
			continue
		}
		task.MarkReminderSent(date, clock)
		due = append(due, task)
	}
	return due
}

// Prune drops reminder bookkeeping older than RetentionDays and returns the number of entries removed
func Prune(tasks []*models.Task, now time.Time) int {
	cutoff := timeutil.DateKey(now.AddDate(0, 0, -RetentionDays))
	removed := 0
	for _, task := range tasks {
		removed += task.PruneReminders(cutoff)
	}
	return removed
}
