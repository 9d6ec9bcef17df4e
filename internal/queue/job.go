package queue

import (
	"time"

	"github.com/dayflow/dayflow-api/internal/models"
	"github.com/google/uuid"
)

// JobType represents the type of notification job
type JobType string

const (
	// JobTypeReminder delivers a "due soon" reminder notification
	JobTypeReminder JobType = "reminder"
	// JobTypeOverdueAlert delivers an overdue alert notification
	JobTypeOverdueAlert JobType = "overdue_alert"
)

// Job represents a notification delivery job in the queue
type Job struct {
	ID         uuid.UUID  `json:"id"`
	Type       JobType    `json:"type"`
	UserID     uuid.UUID  `json:"user_id"`
	TaskID     uuid.UUID  `json:"task_id"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	Link       string     `json:"link"`
	NotBefore  *time.Time `json:"not_before,omitempty"` // Earliest time to deliver (nil = immediate)
	NotAfter   *time.Time `json:"not_after,omitempty"`  // Latest useful delivery time (nil = no expiration)
	CreatedAt  time.Time  `json:"created_at"`
	RetryCount int        `json:"retry_count"`
	MaxRetries int        `json:"max_retries"`
}

// NewJob creates a new notification job
func NewJob(jobType JobType, userID, taskID uuid.UUID) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		UserID:     userID,
		TaskID:     taskID,
		CreatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: 3,
	}
}

// Kind maps the job type to its notification kind
func (j *Job) Kind() models.NotificationKind {
	if j.Type == JobTypeOverdueAlert {
		return models.NotificationKindOverdue
	}
	return models.NotificationKindReminder
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()

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
