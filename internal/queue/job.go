package queue

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeReminderNotification delivers one reminder through the external notifiers
	JobTypeReminderNotification JobType = "reminder_notification"
)

// ReminderTTL bounds how long a reminder stays deliverable after it fired
const ReminderTTL = time.Hour

// Metadata keys for reminder jobs
const (
	MetadataTitle = "title"
	MetadataBody  = "body"
)

// Job represents a job in the queue
type Job struct {
	ID         uuid.UUID      `json:"id"`
	Type       JobType        `json:"type"`
	TaskID     *uuid.UUID     `json:"task_id,omitempty"`
	NotBefore  *time.Time     `json:"not_before,omitempty"` // Earliest time to process job (nil = immediate)
	NotAfter   *time.Time     `json:"not_after,omitempty"`  // Latest time to process job (nil = no expiration)
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	RetryCount int            `json:"retry_count"`
	MaxRetries int            `json:"max_retries"`
}

// NewJob creates a new job
func NewJob(jobType JobType, taskID *uuid.UUID) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		TaskID:     taskID,
		Metadata:   make(map[string]any),
		CreatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: 3,
	}
}

// NewReminderJob creates a reminder delivery job that expires ReminderTTL after now
func NewReminderJob(taskID *uuid.UUID, title, body string, now time.Time) *Job {
	job := NewJob(JobTypeReminderNotification, taskID)
	job.CreatedAt = now
	notAfter := now.Add(ReminderTTL)
	job.NotAfter = &notAfter
	job.Metadata[MetadataTitle] = title
	job.Metadata[MetadataBody] = body
	return job
}

// Title returns the notification title carried by a reminder job
func (j *Job) Title() string {
	return j.metadataString(MetadataTitle)
}

// Body returns the notification body carried by a reminder job
func (j *Job) Body() string {
	return j.metadataString(MetadataBody)
}

func (j *Job) metadataString(key string) string {
	if j.Metadata == nil {
		return ""
	}
	s, _ := j.Metadata[key].(string)
	return s
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	return j.ShouldProcessAt(time.Now())
}

// ShouldProcessAt checks if the job is inside its processing window at now
func (j *Job) ShouldProcessAt(now time.Time) bool {
	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}
	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}
	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}

	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}

// RetryAt returns a copy of the job scheduled for another attempt at notBefore
func (j *Job) RetryAt(notBefore time.Time) *Job {
	retry := *j
	retry.NotBefore = &notBefore
	retry.RetryCount = j.RetryCount + 1
	return &retry
}

// RetryDelay is the backoff before the given attempt: 10s, 20s, 40s, ...
func RetryDelay(retryCount int) time.Duration {
	if retryCount < 0 {
		retryCount = 0
	}
	if retryCount > 6 {
		retryCount = 6
	}
	return 10 * time.Second << retryCount
}
