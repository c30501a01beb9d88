// Package store holds the ordered task collection and the persistence backends
// that load and save the whole application state.
package store

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/benvon/daily-agent/internal/models"
	"github.com/benvon/daily-agent/internal/timeutil"
	"github.com/google/uuid"
)

// ErrTaskNotFound is returned when no task has the requested ID
var ErrTaskNotFound = errors.New("task not found")

// TaskStore is an ordered collection of tasks. Insertion order is preserved.
type TaskStore struct {
	tasks []*models.Task
}

// NewTaskStore creates a task store over the given tasks
func NewTaskStore(tasks []*models.Task) *TaskStore {
	return &TaskStore{tasks: append([]*models.Task(nil), tasks...)}
}

// Add appends a task
func (s *TaskStore) Add(task *models.Task) {
	s.tasks = append(s.tasks, task)
}

// All returns every task in insertion order
func (s *TaskStore) All() []*models.Task {
	out := make([]*models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Len returns the number of tasks
func (s *TaskStore) Len() int {
	return len(s.tasks)
}

// Find returns the task with the given ID
func (s *TaskStore) Find(id uuid.UUID) (*models.Task, error) {
	for _, task := range s.tasks {
		if task.ID == id {
			return task, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
}

// Toggle flips the completion flag of a task and returns it
func (s *TaskStore) Toggle(id uuid.UUID) (*models.Task, error) {
	task, err := s.Find(id)
	if err != nil {
		return nil, err
	}
	task.Completed = !task.Completed
	return task, nil
}

// ForDay returns the tasks that apply on the weekday of t, in insertion order
func (s *TaskStore) ForDay(t time.Time) []*models.Task {
	weekday := timeutil.WeekdayTag(t)
	var out []*models.Task
	for _, task := range s.tasks {
		if task.AppliesOn(weekday) {
			out = append(out, task)
		}
	}
	return out
}

// Completed returns how many tasks are marked completed
func (s *TaskStore) Completed() int {
	n := 0
	for _, task := range s.tasks {
		if task.Completed {
			n++
		}
	}
	return n
}

// SortByTime returns a copy of tasks ordered by time of day, ties kept in input order
func SortByTime(tasks []*models.Task) []*models.Task {
	out := make([]*models.Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time < out[j].Time
	})
	return out
}

// Pending counts the tasks that are not completed
func Pending(tasks []*models.Task) int {
	n := 0
	for _, task := range tasks {
		if !task.Completed {
			n++
		}
	}
	return n
}
