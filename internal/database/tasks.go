package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dayflow/dayflow-api/internal/models"
	"github.com/google/uuid"
)

// TaskRepository handles task database operations
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, user_id, title, completed, completed_at, due_date, priority, category_id, notes, created_at, updated_at`

func scanTask(scan func(dest ...any) error) (*models.Task, error) {
	task := &models.Task{}
	var completedAt, dueDate sql.NullTime
	var categoryID sql.NullString
	var notes sql.NullString

	err := scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Completed,
		&completedAt,
		&dueDate,
		&task.Priority,
		&categoryID,
		&notes,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		task.CompletedAt = &completedAt.Time
	}
	if dueDate.Valid {
		task.DueDate = &dueDate.Time
	}
	if categoryID.Valid {
		id, err := uuid.Parse(categoryID.String)
		if err == nil {
			task.CategoryID = &id
		}
	}
	if notes.Valid {
		task.Notes = &notes.String
	}
	return task, nil
}

// Create creates a new task
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.Completed,
		nullTime(task.CompletedAt),
		nullTime(task.DueDate),
		task.Priority,
		nullUUID(task.CategoryID),
		nullString(task.Notes),
		now,
		now,
	).Scan(&task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetByID retrieves a task by ID
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// GetByUserID retrieves all tasks for a user, optionally filtered by
// completion state and category.
func (r *TaskRepository) GetByUserID(ctx context.Context, userID uuid.UUID, completed *bool, categoryID *uuid.UUID) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`
	args := []any{userID}
	argIndex := 2

	if completed != nil {
		query += fmt.Sprintf(" AND completed = $%d", argIndex)
		args = append(args, *completed)
		argIndex++
	}
	if categoryID != nil {
		query += fmt.Sprintf(" AND category_id = $%d", argIndex)
		args = append(args, *categoryID)
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	return r.queryTasks(ctx, query, args...)
}

// GetWithDueDates retrieves a user's tasks that carry a due date, for the
// reminder engine and the today view. Includes completed tasks so the view
// layer can show them; the scheduler filters on its own.
func (r *TaskRepository) GetWithDueDates(ctx context.Context, userID uuid.UUID) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 AND due_date IS NOT NULL ORDER BY due_date ASC`
	return r.queryTasks(ctx, query, userID)
}

func (r *TaskRepository) queryTasks(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// Update updates an existing task
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks
		SET title = $2, completed = $3, completed_at = $4, due_date = $5,
		    priority = $6, category_id = $7, notes = $8, updated_at = $9
		WHERE id = $1
		RETURNING updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		task.ID,
		task.Title,
		task.Completed,
		nullTime(task.CompletedAt),
		nullTime(task.DueDate),
		task.Priority,
		nullUUID(task.CategoryID),
		nullString(task.Notes),
		now,
	).Scan(&task.UpdatedAt)

	if err == sql.ErrNoRows {
		return fmt.Errorf("task not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return nil
}

// Delete deletes a task by ID
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("task not found")
	}

	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullUUID(id *uuid.UUID) sql.NullString {
	if id == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: id.String(), Valid: true}
}
