package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dayflow/dayflow-api/internal/models"
	"github.com/google/uuid"
)

// PreferencesRepository handles user preference database operations
type PreferencesRepository struct {
	db *DB
}

// NewPreferencesRepository creates a new preferences repository
func NewPreferencesRepository(db *DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// Get retrieves preferences for a user. Returns nil (no error) when the user
// has no stored row; callers fall back to models.DefaultPreferences.
func (r *PreferencesRepository) Get(ctx context.Context, userID uuid.UUID) (*models.Preferences, error) {
	prefs := &models.Preferences{}
	query := `
		SELECT user_id, task_reminders, overdue_alerts, today_sort_order, reminder_lead_minutes, updated_at
		FROM preferences WHERE user_id = $1
	`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&prefs.UserID,
		&prefs.TaskReminders,
		&prefs.OverdueAlerts,
		&prefs.TodaySortOrder,
		&prefs.ReminderLeadMin,
		&prefs.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	return prefs, nil
}

// Upsert stores preferences for a user
func (r *PreferencesRepository) Upsert(ctx context.Context, prefs *models.Preferences) error {
	query := `
		INSERT INTO preferences (user_id, task_reminders, overdue_alerts, today_sort_order, reminder_lead_minutes, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			task_reminders = EXCLUDED.task_reminders,
			overdue_alerts = EXCLUDED.overdue_alerts,
			today_sort_order = EXCLUDED.today_sort_order,
			reminder_lead_minutes = EXCLUDED.reminder_lead_minutes,
			updated_at = EXCLUDED.updated_at
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		prefs.UserID,
		prefs.TaskReminders,
		prefs.OverdueAlerts,
		prefs.TodaySortOrder,
		prefs.ReminderLeadMin,
		time.Now(),
	).Scan(&prefs.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert preferences: %w", err)
	}

	return nil
}

// ListNotifiable returns the users with at least one notification flag set,
// for the reminder engine's periodic pass.
func (r *PreferencesRepository) ListNotifiable(ctx context.Context) ([]uuid.UUID, error) {
	query := `SELECT user_id FROM preferences WHERE task_reminders OR overdue_alerts`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifiable users: %w", err)
	}
	defer rows.Close()

	var users []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		users = append(users, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifiable users: %w", err)
	}

	return users, nil
}
