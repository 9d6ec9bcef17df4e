package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dayflow/dayflow-api/internal/models"
	"github.com/dayflow/dayflow-api/internal/mutation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

func tasksRouter(h *TaskHandler) *mux.Router {
	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/tasks").Subrouter())
	return r
}

func TestCreateTask(t *testing.T) {
	t.Parallel()

	user := testUser()
	repo := newFakeTaskRepo()
	handler := NewTaskHandler(repo, nil, nil)
	router := tasksRouter(handler)

	req := authedRequest(t, "POST", "/tasks", `{"title":"Buy milk","priority":"high"}`, user)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var task models.Task
	decodeData(t, w, &task)
	if task.Title != "Buy milk" {
		t.Errorf("Title = %q", task.Title)
	}
	if task.Priority != models.PriorityHigh {
		t.Errorf("Priority = %s, want high", task.Priority)
	}
	if task.UserID != user.ID {
		t.Error("task not owned by requesting user")
	}
	if len(repo.tasks) != 1 {
		t.Errorf("expected 1 stored task, got %d", len(repo.tasks))
	}
}

func TestCreateTaskDefaultsPriority(t *testing.T) {
	t.Parallel()

	handler := NewTaskHandler(newFakeTaskRepo(), nil, nil)
	router := tasksRouter(handler)

	req := authedRequest(t, "POST", "/tasks", `{"title":"No priority"}`, testUser())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var task models.Task
	decodeData(t, w, &task)
	if task.Priority != models.PriorityMedium {
		t.Errorf("Priority = %s, want medium default", task.Priority)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	t.Parallel()

	handler := NewTaskHandler(newFakeTaskRepo(), nil, nil)
	router := tasksRouter(handler)

	tests := []struct {
		name string
		body string
	}{
		{"empty title", `{"title":""}`},
		{"missing title", `{}`},
		{"invalid priority", `{"title":"x","priority":"urgent"}`},
		{"invalid json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := authedRequest(t, "POST", "/tasks", tt.body, testUser())
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestCompleteTask(t *testing.T) {
	t.Parallel()

	user := testUser()
	due := time.Now().Add(time.Hour)
	task := &models.Task{ID: uuid.New(), UserID: user.ID, Title: "Finish", DueDate: &due, Priority: models.PriorityMedium}
	repo := newFakeTaskRepo(task)
	journal := mutation.NewJournal()

	handler := NewTaskHandler(repo, journal, nil)
	router := tasksRouter(handler)

	req := authedRequest(t, "POST", "/tasks/"+task.ID.String()+"/complete", "", user)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var got models.Task
	decodeData(t, w, &got)
	if !got.Completed {
		t.Error("task not completed")
	}
	if got.CompletedAt == nil {
		t.Error("CompletedAt not set on completion")
	}
	// The mutation resolved once the store confirmed
	if journal.PendingCount(user.ID) != 0 {
		t.Errorf("journal still has %d pending entries", journal.PendingCount(user.ID))
	}
}

func TestUncompleteTask(t *testing.T) {
	t.Parallel()

	user := testUser()
	now := time.Now()
	task := &models.Task{ID: uuid.New(), UserID: user.ID, Title: "Redo", Completed: true, CompletedAt: &now, Priority: models.PriorityLow}
	repo := newFakeTaskRepo(task)

	handler := NewTaskHandler(repo, mutation.NewJournal(), nil)
	router := tasksRouter(handler)

	req := authedRequest(t, "POST", "/tasks/"+task.ID.String()+"/uncomplete", "", user)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var got models.Task
	decodeData(t, w, &got)
	if got.Completed {
		t.Error("task still completed")
	}
	if got.CompletedAt != nil {
		t.Error("CompletedAt not cleared on reopen")
	}
}

func TestCompleteTaskRevertsOnStoreError(t *testing.T) {
	t.Parallel()

	user := testUser()
	task := &models.Task{ID: uuid.New(), UserID: user.ID, Title: "Flaky", Priority: models.PriorityMedium}
	repo := newFakeTaskRepo(task)
	repo.updateErr = errors.New("db down")
	journal := mutation.NewJournal()

	handler := NewTaskHandler(repo, journal, nil)
	router := tasksRouter(handler)

	req := authedRequest(t, "POST", "/tasks/"+task.ID.String()+"/complete", "", user)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	// The reverted mutation no longer shadows the store
	if journal.PendingCount(user.ID) != 0 {
		t.Errorf("journal still has %d pending entries after revert", journal.PendingCount(user.ID))
	}
	if overlaid := journal.Overlay(user.ID, []*models.Task{task}); overlaid[0].Completed {
		t.Error("reverted completion still visible in overlay")
	}
}

func TestCreateTaskRevertsOnStoreError(t *testing.T) {
	t.Parallel()

	user := testUser()
	repo := newFakeTaskRepo()
	repo.createErr = errors.New("db down")
	journal := mutation.NewJournal()

	handler := NewTaskHandler(repo, journal, nil)
	router := tasksRouter(handler)

	req := authedRequest(t, "POST", "/tasks", `{"title":"Doomed"}`, user)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if journal.PendingCount(user.ID) != 0 {
		t.Errorf("journal still has %d pending entries after revert", journal.PendingCount(user.ID))
	}
	if overlaid := journal.Overlay(user.ID, nil); len(overlaid) != 0 {
		t.Errorf("reverted create still visible in overlay: %d tasks", len(overlaid))
	}
}

func TestUpdateTaskRevertsOnStoreError(t *testing.T) {
	t.Parallel()

	user := testUser()
	task := &models.Task{ID: uuid.New(), UserID: user.ID, Title: "Before", Priority: models.PriorityMedium}
	repo := newFakeTaskRepo(task)
	repo.updateErr = errors.New("db down")
	journal := mutation.NewJournal()

	handler := NewTaskHandler(repo, journal, nil)
	router := tasksRouter(handler)

	req := authedRequest(t, "PATCH", "/tasks/"+task.ID.String(), `{"title":"After"}`, user)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if journal.PendingCount(user.ID) != 0 {
		t.Errorf("journal still has %d pending entries after revert", journal.PendingCount(user.ID))
	}
	if overlaid := journal.Overlay(user.ID, []*models.Task{task}); overlaid[0].Title != "Before" {
		t.Errorf("overlay Title = %q after revert, want Before", overlaid[0].Title)
	}
}

func TestCompleteTaskWrongUser(t *testing.T) {
	t.Parallel()

	owner := testUser()
	task := &models.Task{ID: uuid.New(), UserID: owner.ID, Title: "Private", Priority: models.PriorityMedium}
	repo := newFakeTaskRepo(task)

	handler := NewTaskHandler(repo, nil, nil)
	router := tasksRouter(handler)

	req := authedRequest(t, "POST", "/tasks/"+task.ID.String()+"/complete", "", testUser())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestUpdateTaskClearDueDate(t *testing.T) {
	t.Parallel()

	user := testUser()
	due := time.Now().Add(time.Hour)
	task := &models.Task{ID: uuid.New(), UserID: user.ID, Title: "Dated", DueDate: &due, Priority: models.PriorityMedium}
	repo := newFakeTaskRepo(task)

	handler := NewTaskHandler(repo, nil, nil)
	router := tasksRouter(handler)

	req := authedRequest(t, "PATCH", "/tasks/"+task.ID.String(), `{"clear_due_date":true}`, user)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var got models.Task
	decodeData(t, w, &got)
	if got.DueDate != nil {
		t.Error("DueDate not cleared")
	}
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()

	user := testUser()
	task := &models.Task{ID: uuid.New(), UserID: user.ID, Title: "Gone", Priority: models.PriorityLow}
	repo := newFakeTaskRepo(task)
	journal := mutation.NewJournal()

	handler := NewTaskHandler(repo, journal, nil)
	router := tasksRouter(handler)

	req := authedRequest(t, "DELETE", "/tasks/"+task.ID.String(), "", user)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if len(repo.tasks) != 0 {
		t.Error("task still in store")
	}
	if journal.PendingCount(user.ID) != 0 {
		t.Error("delete mutation not resolved")
	}
}
