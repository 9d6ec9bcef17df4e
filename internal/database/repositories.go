package database

import (
	"context"

	"github.com/dayflow/dayflow-api/internal/models"
	"github.com/google/uuid"
)

// TaskRepositoryInterface defines the interface for task repository operations.
// This interface enables better testability by allowing fake implementations.
type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, completed *bool, categoryID *uuid.UUID) ([]*models.Task, error)
	GetWithDueDates(ctx context.Context, userID uuid.UUID) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PreferencesRepositoryInterface defines the interface for preference repository operations
type PreferencesRepositoryInterface interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Preferences, error)
	Upsert(ctx context.Context, prefs *models.Preferences) error
	ListNotifiable(ctx context.Context) ([]uuid.UUID, error)
}

// NotificationRepositoryInterface defines the interface for notification repository operations
type NotificationRepositoryInterface interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
}

// Ensure concrete types implement the interfaces
var (
	_ TaskRepositoryInterface         = (*TaskRepository)(nil)
	_ PreferencesRepositoryInterface  = (*PreferencesRepository)(nil)
	_ NotificationRepositoryInterface = (*NotificationRepository)(nil)
)
