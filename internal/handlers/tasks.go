package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dayflow/dayflow-api/internal/database"
	"github.com/dayflow/dayflow-api/internal/models"
	"github.com/dayflow/dayflow-api/internal/mutation"
	"github.com/dayflow/dayflow-api/internal/reminders"
	"github.com/dayflow/dayflow-api/internal/request"
	"github.com/dayflow/dayflow-api/internal/today"
	"github.com/dayflow/dayflow-api/internal/validation"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskRepo database.TaskRepositoryInterface
	journal  *mutation.Journal
	engine   *reminders.Engine
}

// NewTaskHandler creates a new task handler. journal and engine may be nil in
// tests that only exercise CRUD behavior.
func NewTaskHandler(taskRepo database.TaskRepositoryInterface, journal *mutation.Journal, engine *reminders.Engine) *TaskHandler {
	return &TaskHandler{taskRepo: taskRepo, journal: journal, engine: engine}
}

// RegisterRoutes registers task routes on the given router
// The router should already have the /tasks prefix
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTasks).Methods("GET")
	r.HandleFunc("", h.CreateTask).Methods("POST")
	r.HandleFunc("/{id}", h.GetTask).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateTask).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteTask).Methods("DELETE")
	r.HandleFunc("/{id}/complete", h.CompleteTask).Methods("POST")
	r.HandleFunc("/{id}/uncomplete", h.UncompleteTask).Methods("POST")
}

const (
	// MaxTaskTitleLength is the maximum length for task titles
	MaxTaskTitleLength = 500
	// MaxTaskNotesLength is the maximum length for task notes
	MaxTaskNotesLength = 10000
)

// CreateTaskRequest represents a create task request
type CreateTaskRequest struct {
	Title      string     `json:"title" validate:"required,min=1,max=500"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	Priority   string     `json:"priority,omitempty" validate:"omitempty,priority"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
}

// UpdateTaskRequest represents an update task request. Pointer fields are
// applied only when present; due_date uses clear_due_date for explicit removal
// so an absent field never wipes the value.
type UpdateTaskRequest struct {
	Title        *string    `json:"title,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	ClearDueDate bool       `json:"clear_due_date,omitempty"`
	Priority     *string    `json:"priority,omitempty"`
	CategoryID   *uuid.UUID `json:"category_id,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
}

// refreshReminders re-plans the user's reminder timers after a task change.
func (h *TaskHandler) refreshReminders(r *http.Request, userID uuid.UUID) {
	if h.engine != nil {
		_ = h.engine.RefreshUser(r.Context(), userID)
	}
}

// ListTasks lists tasks for the authenticated user
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	ctx := r.Context()

	var completed *bool
	if c := r.URL.Query().Get("completed"); c != "" {
		if c != "true" && c != "false" {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "completed must be 'true' or 'false'")
			return
		}
		val := c == "true"
		completed = &val
	}

	var categoryID *uuid.UUID
	if c := r.URL.Query().Get("category_id"); c != "" {
		id, err := uuid.Parse(c)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid category ID")
			return
		}
		categoryID = &id
	}

	tasks, err := h.taskRepo.GetByUserID(ctx, user.ID, completed, categoryID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tasks")
		return
	}

	if h.journal != nil {
		tasks = h.journal.Overlay(user.ID, tasks)
	}

	// Full list sorts by due date first, unlike the today view.
	today.Sort(tasks, today.KeysFor(models.SortOrderDueDate))

	respondJSON(w, http.StatusOK, tasks)
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req CreateTaskRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	if err := validation.Validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrors {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", fieldError.Error()))
				return
			}
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return
	}

	req.Title = validation.SanitizeText(req.Title)
	if req.Title == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title is required and cannot be empty after sanitization")
		return
	}

	priority := models.PriorityMedium
	if req.Priority != "" {
		priority = models.Priority(req.Priority)
	}

	task := &models.Task{
		ID:         uuid.New(),
		UserID:     user.ID,
		Title:      req.Title,
		Priority:   priority,
		DueDate:    req.DueDate,
		CategoryID: req.CategoryID,
	}
	if req.Notes != nil {
		notes := validation.SanitizeText(*req.Notes)
		if len(notes) > MaxTaskNotesLength {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Notes exceed maximum length of %d characters", MaxTaskNotesLength))
			return
		}
		task.Notes = &notes
	}

	var entry *mutation.Entry
	if h.journal != nil {
		entry = h.journal.Record(user.ID, task.ID, mutation.OpUpsert, task)
		h.refreshReminders(r, user.ID)
	}

	if err := h.taskRepo.Create(r.Context(), task); err != nil {
		if entry != nil {
			entry.Revert()
			h.refreshReminders(r, user.ID)
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create task")
		return
	}

	if entry != nil {
		entry.Confirm()
	}
	h.refreshReminders(r, user.ID)
	respondJSON(w, http.StatusCreated, task)
}

// loadOwnedTask fetches a task and verifies ownership. It writes the error
// response itself and returns nil when the caller should stop.
func (h *TaskHandler) loadOwnedTask(w http.ResponseWriter, r *http.Request, userID uuid.UUID) *models.Task {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task ID")
		return nil
	}

	task, err := h.taskRepo.GetByID(r.Context(), id)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
		return nil
	}

	if task.UserID != userID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Task does not belong to user")
		return nil
	}

	return task
}

// GetTask retrieves a task by ID
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	task := h.loadOwnedTask(w, r, user.ID)
	if task == nil {
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// UpdateTask updates an existing task
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	task := h.loadOwnedTask(w, r, user.ID)
	if task == nil {
		return
	}

	var req UpdateTaskRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	if req.Title != nil {
		sanitized := validation.SanitizeText(*req.Title)
		if sanitized == "" {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title cannot be empty after sanitization")
			return
		}
		if len(sanitized) > MaxTaskTitleLength {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Title exceeds maximum length of %d characters", MaxTaskTitleLength))
			return
		}
		task.Title = sanitized
	}
	if req.Priority != nil {
		if err := validation.ValidatePriority(*req.Priority); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		task.Priority = models.Priority(*req.Priority)
	}
	if req.ClearDueDate {
		task.DueDate = nil
	} else if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.CategoryID != nil {
		task.CategoryID = req.CategoryID
	}
	if req.Notes != nil {
		notes := validation.SanitizeText(*req.Notes)
		if len(notes) > MaxTaskNotesLength {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Notes exceed maximum length of %d characters", MaxTaskNotesLength))
			return
		}
		task.Notes = &notes
	}

	var entry *mutation.Entry
	if h.journal != nil {
		entry = h.journal.Record(user.ID, task.ID, mutation.OpUpsert, task)
		h.refreshReminders(r, user.ID)
	}

	if err := h.taskRepo.Update(r.Context(), task); err != nil {
		if entry != nil {
			entry.Revert()
			h.refreshReminders(r, user.ID)
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update task")
		return
	}

	if entry != nil {
		entry.Confirm()
	}
	h.refreshReminders(r, user.ID)
	respondJSON(w, http.StatusOK, task)
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	task := h.loadOwnedTask(w, r, user.ID)
	if task == nil {
		return
	}

	var entry *mutation.Entry
	if h.journal != nil {
		entry = h.journal.Record(user.ID, task.ID, mutation.OpDelete, nil)
		h.refreshReminders(r, user.ID)
	}

	if err := h.taskRepo.Delete(r.Context(), task.ID); err != nil {
		if entry != nil {
			entry.Revert()
			h.refreshReminders(r, user.ID)
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete task")
		return
	}

	if entry != nil {
		entry.Confirm()
	}
	h.refreshReminders(r, user.ID)
	w.WriteHeader(http.StatusNoContent)
}

// CompleteTask marks a task as completed
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	h.setCompletion(w, r, true)
}

// UncompleteTask reopens a completed task
func (h *TaskHandler) UncompleteTask(w http.ResponseWriter, r *http.Request) {
	h.setCompletion(w, r, false)
}

// setCompletion flips completion state through the mutation journal: the
// change is visible to views and the reminder engine immediately, then
// confirmed or reverted when the store answers.
func (h *TaskHandler) setCompletion(w http.ResponseWriter, r *http.Request, completed bool) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	task := h.loadOwnedTask(w, r, user.ID)
	if task == nil {
		return
	}

	op := mutation.OpComplete
	if !completed {
		op = mutation.OpUncomplete
	}

	var entry *mutation.Entry
	if h.journal != nil {
		entry = h.journal.Record(user.ID, task.ID, op, nil)
		h.refreshReminders(r, user.ID)
	}

	task.SetCompleted(completed, time.Now())

	if err := h.taskRepo.Update(r.Context(), task); err != nil {
		if entry != nil {
			entry.Revert()
			h.refreshReminders(r, user.ID)
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update task")
		return
	}

	if entry != nil {
		entry.Confirm()
	}
	h.refreshReminders(r, user.ID)
	respondJSON(w, http.StatusOK, task)
}
