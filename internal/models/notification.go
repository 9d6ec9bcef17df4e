package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind distinguishes reminder notifications from overdue alerts
type NotificationKind string

const (
	// NotificationKindReminder fires ahead of a task's due time
	NotificationKindReminder NotificationKind = "reminder"
	// NotificationKindOverdue fires for a task whose due time has passed while open
	NotificationKindOverdue NotificationKind = "overdue"
)

// Notification is an in-app notification delivered to a user
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	TaskID    uuid.UUID        `json:"task_id"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	Link      string           `json:"link"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}
