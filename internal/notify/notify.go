// Package notify bridges the reminder scheduler to the notification queue:
// scheduled reminders and overdue alerts become delivery jobs consumed by the
// worker.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/dayflow/dayflow-api/internal/models"
	"github.com/dayflow/dayflow-api/internal/queue"
	"go.uber.org/zap"
)

// Publisher implements reminders.Notifier by enqueuing notification jobs.
type Publisher struct {
	queue       queue.JobQueue
	frontendURL string
	log         *zap.Logger
}

// NewPublisher creates a queue-backed notification publisher. frontendURL is
// used to build the deep link each notification carries.
func NewPublisher(q queue.JobQueue, frontendURL string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{
		queue:       q,
		frontendURL: frontendURL,
		log:         log,
	}
}

// Remind enqueues a "due soon" reminder for the task. The job expires at the
// task's due time; a reminder delivered after that point would be stale.
func (p *Publisher) Remind(ctx context.Context, task *models.Task, lead time.Duration) error {
	job := queue.NewJob(queue.JobTypeReminder, task.UserID, task.ID)
	job.Title = "Task due soon"
	job.Body = fmt.Sprintf("%q is due in %d minutes", task.Title, int(lead.Minutes()))
	job.Link = p.frontendURL + "/tasks"
	job.NotAfter = task.DueDate

	if err := p.queue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue reminder: %w", err)
	}

	p.log.Debug("reminder_enqueued",
		zap.String("task_id", task.ID.String()),
		zap.String("user_id", task.UserID.String()),
	)
	return nil
}

// Alert enqueues an overdue alert for the task.
func (p *Publisher) Alert(ctx context.Context, task *models.Task) error {
	job := queue.NewJob(queue.JobTypeOverdueAlert, task.UserID, task.ID)
	job.Title = "Task overdue"
	job.Body = fmt.Sprintf("%q is overdue", task.Title)
	job.Link = p.frontendURL + "/tasks"

	if err := p.queue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue overdue alert: %w", err)
	}

	p.log.Debug("overdue_alert_enqueued",
		zap.String("task_id", task.ID.String()),
		zap.String("user_id", task.UserID.String()),
	)
	return nil
}
