package models

import (
	"time"

	"github.com/google/uuid"
)

// SortOrder selects the sort-key ordering used by a task view
type SortOrder string

const (
	// SortOrderPriority orders by completion state then priority (today view default)
	SortOrderPriority SortOrder = "priority"
	// SortOrderDueDate orders by due date first (full list default)
	SortOrderDueDate SortOrder = "due_date"
)

// DefaultReminderLead is how far before a task's due time a reminder fires
const DefaultReminderLead = 30 * time.Minute

// Preferences holds per-user notification and display settings
type Preferences struct {
	UserID          uuid.UUID `json:"user_id"`
	TaskReminders   bool      `json:"task_reminders"`
	OverdueAlerts   bool      `json:"overdue_alerts"`
	TodaySortOrder  SortOrder `json:"today_sort_order"`
	ReminderLeadMin int       `json:"reminder_lead_minutes"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DefaultPreferences returns the preferences applied to users with no stored row
func DefaultPreferences(userID uuid.UUID) *Preferences {
	return &Preferences{
		UserID:          userID,
		TaskReminders:   true,
		OverdueAlerts:   true,
		TodaySortOrder:  SortOrderPriority,
		ReminderLeadMin: int(DefaultReminderLead / time.Minute),
	}
}

// ReminderLead returns the configured lead time, falling back to the default.
func (p *Preferences) ReminderLead() time.Duration {
	if p == nil || p.ReminderLeadMin <= 0 {
		return DefaultReminderLead
	}
	return time.Duration(p.ReminderLeadMin) * time.Minute
}
