package workers

import (
	"context"
	"errors"
	"testing"

	"github.com/dayflow/dayflow-api/internal/models"
	"github.com/dayflow/dayflow-api/internal/queue"
	"github.com/google/uuid"
)

// mockTaskRepo is a mock implementation of TaskRepositoryInterface
type mockTaskRepo struct {
	getByIDFunc func(ctx context.Context, id uuid.UUID) (*models.Task, error)
}

func (m *mockTaskRepo) Create(ctx context.Context, task *models.Task) error { return nil }

func (m *mockTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &models.Task{ID: id, UserID: uuid.New(), Title: "Test task", Priority: models.PriorityMedium}, nil
}

func (m *mockTaskRepo) GetByUserID(ctx context.Context, userID uuid.UUID, completed *bool, categoryID *uuid.UUID) ([]*models.Task, error) {
	return nil, nil
}

func (m *mockTaskRepo) GetWithDueDates(ctx context.Context, userID uuid.UUID) ([]*models.Task, error) {
	return nil, nil
}

func (m *mockTaskRepo) Update(ctx context.Context, task *models.Task) error { return nil }
func (m *mockTaskRepo) Delete(ctx context.Context, id uuid.UUID) error      { return nil }

// mockNotificationRepo is a mock implementation of NotificationRepositoryInterface
type mockNotificationRepo struct {
	created    []*models.Notification
	createFunc func(ctx context.Context, n *models.Notification) error
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, n)
	}
	m.created = append(m.created, n)
	return nil
}

func (m *mockNotificationRepo) GetByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Notification, error) {
	return nil, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	return nil
}

// mockMessage is a mock implementation of MessageInterface
type mockMessage struct {
	job      *queue.Job
	acked    bool
	nacked   bool
	requeued bool
}

func (m *mockMessage) Ack() error {
	m.acked = true
	return nil
}

func (m *mockMessage) Nack(requeue bool) error {
	m.nacked = true
	m.requeued = requeue
	return nil
}

func (m *mockMessage) GetJob() *queue.Job {
	return m.job
}

var _ queue.MessageInterface = (*mockMessage)(nil)

func TestProcessJobDeliversReminder(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	taskID := uuid.New()

	taskRepo := &mockTaskRepo{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Task, error) {
			return &models.Task{ID: id, UserID: userID, Title: "Write report", Priority: models.PriorityHigh}, nil
		},
	}
	notificationRepo := &mockNotificationRepo{}
	dispatcher := NewNotificationDispatcher(taskRepo, notificationRepo)

	job := queue.NewJob(queue.JobTypeReminder, userID, taskID)
	job.Title = "Task due soon"
	msg := &mockMessage{job: job}

	if err := dispatcher.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("ProcessJob() error = %v", err)
	}
	if !msg.acked {
		t.Error("expected message to be acked")
	}
	if len(notificationRepo.created) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notificationRepo.created))
	}
	n := notificationRepo.created[0]
	if n.Kind != models.NotificationKindReminder {
		t.Errorf("Kind = %s, want %s", n.Kind, models.NotificationKindReminder)
	}
	if n.UserID != userID || n.TaskID != taskID {
		t.Error("notification user/task mismatch")
	}
}

func TestProcessJobDropsCompletedTask(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	taskRepo := &mockTaskRepo{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Task, error) {
			return &models.Task{ID: id, UserID: userID, Completed: true}, nil
		},
	}
	notificationRepo := &mockNotificationRepo{}
	dispatcher := NewNotificationDispatcher(taskRepo, notificationRepo)

	msg := &mockMessage{job: queue.NewJob(queue.JobTypeOverdueAlert, userID, uuid.New())}

	if err := dispatcher.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("ProcessJob() error = %v", err)
	}
	if !msg.acked {
		t.Error("expected message to be acked")
	}
	if len(notificationRepo.created) != 0 {
		t.Errorf("expected no notifications, got %d", len(notificationRepo.created))
	}
}

func TestProcessJobDropsMissingTask(t *testing.T) {
	t.Parallel()

	taskRepo := &mockTaskRepo{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Task, error) {
			return nil, errors.New("task not found")
		},
	}
	notificationRepo := &mockNotificationRepo{}
	dispatcher := NewNotificationDispatcher(taskRepo, notificationRepo)

	msg := &mockMessage{job: queue.NewJob(queue.JobTypeReminder, uuid.New(), uuid.New())}

	if err := dispatcher.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("ProcessJob() error = %v", err)
	}
	if !msg.acked {
		t.Error("expected message to be acked")
	}
	if len(notificationRepo.created) != 0 {
		t.Errorf("expected no notifications, got %d", len(notificationRepo.created))
	}
}

func TestProcessJobRetriesOnCreateError(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	taskRepo := &mockTaskRepo{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Task, error) {
			return &models.Task{ID: id, UserID: userID}, nil
		},
	}
	notificationRepo := &mockNotificationRepo{
		createFunc: func(ctx context.Context, n *models.Notification) error {
			return errors.New("db down")
		},
	}
	dispatcher := NewNotificationDispatcher(taskRepo, notificationRepo)

	msg := &mockMessage{job: queue.NewJob(queue.JobTypeReminder, userID, uuid.New())}

	if err := dispatcher.ProcessJob(context.Background(), msg); err == nil {
		t.Fatal("expected error from failed delivery")
	}
	if !msg.nacked || !msg.requeued {
		t.Error("expected message to be nacked with requeue")
	}
}

func TestProcessJobSendsExhaustedJobToDLQ(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	notificationRepo := &mockNotificationRepo{
		createFunc: func(ctx context.Context, n *models.Notification) error {
			return errors.New("db down")
		},
	}
	dispatcher := NewNotificationDispatcher(&mockTaskRepo{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Task, error) {
			return &models.Task{ID: id, UserID: userID}, nil
		},
	}, notificationRepo)

	job := queue.NewJob(queue.JobTypeReminder, userID, uuid.New())
	job.RetryCount = job.MaxRetries
	msg := &mockMessage{job: job}

	if err := dispatcher.ProcessJob(context.Background(), msg); err == nil {
		t.Fatal("expected error from exhausted job")
	}
	if !msg.nacked || msg.requeued {
		t.Error("expected message to be nacked without requeue")
	}
}

func TestProcessJobRejectsWrongUser(t *testing.T) {
	t.Parallel()

	taskRepo := &mockTaskRepo{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Task, error) {
			return &models.Task{ID: id, UserID: uuid.New()}, nil
		},
	}
	notificationRepo := &mockNotificationRepo{}
	dispatcher := NewNotificationDispatcher(taskRepo, notificationRepo)

	msg := &mockMessage{job: queue.NewJob(queue.JobTypeReminder, uuid.New(), uuid.New())}

	if err := dispatcher.ProcessJob(context.Background(), msg); err == nil {
		t.Fatal("expected error for task owned by another user")
	}
	if len(notificationRepo.created) != 0 {
		t.Errorf("expected no notifications, got %d", len(notificationRepo.created))
	}
}
