package workers

import (
	"context"
	"fmt"
	"log"

	"github.com/dayflow/dayflow-api/internal/database"
	"github.com/dayflow/dayflow-api/internal/models"
	"github.com/dayflow/dayflow-api/internal/queue"
	"github.com/google/uuid"
)

// NotificationDispatcher turns queued notification jobs into persisted
// notifications.
type NotificationDispatcher struct {
	taskRepo         database.TaskRepositoryInterface
	notificationRepo database.NotificationRepositoryInterface
}

// NewNotificationDispatcher creates a new notification dispatcher
func NewNotificationDispatcher(
	taskRepo database.TaskRepositoryInterface,
	notificationRepo database.NotificationRepositoryInterface,
) *NotificationDispatcher {
	return &NotificationDispatcher{
		taskRepo:         taskRepo,
		notificationRepo: notificationRepo,
	}
}

// deliver persists the notification for the job after verifying the task is
// still worth notifying about. A task completed or deleted between enqueue
// and delivery drops the job silently.
func (d *NotificationDispatcher) deliver(ctx context.Context, job *queue.Job) error {
	task, err := d.taskRepo.GetByID(ctx, job.TaskID)
	if err != nil {
		// Task deleted since the job was enqueued; nothing to deliver.
		log.Printf("Dropping job %s: task %s not found: %v", job.ID, job.TaskID, err)
		return nil
	}

	if task.UserID != job.UserID {
		return fmt.Errorf("task does not belong to user")
	}

	if task.Completed {
		log.Printf("Dropping job %s: task %s already completed", job.ID, job.TaskID)
		return nil
	}

	notification := &models.Notification{
		ID:     uuid.New(),
		UserID: job.UserID,
		TaskID: job.TaskID,
		Kind:   job.Kind(),
		Title:  job.Title,
		Body:   job.Body,
		Link:   job.Link,
	}

	if err := d.notificationRepo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	log.Printf("Delivered %s notification %s for task %s", notification.Kind, notification.ID, job.TaskID)
	return nil
}

// ProcessJob processes a job based on its type
func (d *NotificationDispatcher) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	if job.IsExpired() {
		// A reminder delivered after its task's due time is just noise.
		log.Printf("Job %s expired (NotAfter: %v), dropping", job.ID, job.NotAfter)
		if ackErr := msg.Ack(); ackErr != nil {
			log.Printf("Failed to ack expired job: %v", ackErr)
		}
		return nil
	}

	switch job.Type {
	case queue.JobTypeReminder, queue.JobTypeOverdueAlert:
		if err := d.deliver(ctx, job); err != nil {
			return d.handleJobError(msg, job, err)
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	default:
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			log.Printf("Failed to nack unknown job type: %v", nackErr)
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// handleJobError retries failed jobs until MaxRetries, then routes to the DLQ
func (d *NotificationDispatcher) handleJobError(msg queue.MessageInterface, job *queue.Job, err error) error {
	if job.CanRetry() {
		job.IncrementRetry()
		log.Printf("Job %s failed (attempt %d/%d): %v, will retry", job.ID, job.RetryCount, job.MaxRetries, err)
		if nackErr := msg.Nack(true); nackErr != nil {
			log.Printf("Failed to nack job: %v", nackErr)
		}
		return fmt.Errorf("job failed (will retry): %w", err)
	}

	log.Printf("Job %s failed after %d retries: %v, sending to DLQ", job.ID, job.MaxRetries, err)
	if nackErr := msg.Nack(false); nackErr != nil {
		log.Printf("Failed to nack job to DLQ: %v", nackErr)
	}
	return fmt.Errorf("job failed (max retries): %w", err)
}
