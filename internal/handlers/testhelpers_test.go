package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dayflow/dayflow-api/internal/models"
	"github.com/dayflow/dayflow-api/internal/request"
	"github.com/google/uuid"
)

// fakeTaskRepo is an in-memory TaskRepositoryInterface for handler tests
type fakeTaskRepo struct {
	tasks     map[uuid.UUID]*models.Task
	createErr error
	updateErr error
	deleteErr error
}

func newFakeTaskRepo(tasks ...*models.Task) *fakeTaskRepo {
	repo := &fakeTaskRepo{tasks: make(map[uuid.UUID]*models.Task)}
	for _, t := range tasks {
		repo.tasks[t.ID] = t
	}
	return repo
}

func (f *fakeTaskRepo) Create(ctx context.Context, task *models.Task) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.tasks[task.ID] = task
	return nil
}

// GetByID returns a copy, like the SQL repository scanning a fresh row.
func (f *fakeTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task not found")
	}
	clone := *t
	return &clone, nil
}

func (f *fakeTaskRepo) GetByUserID(ctx context.Context, userID uuid.UUID, completed *bool, categoryID *uuid.UUID) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range f.tasks {
		if t.UserID != userID {
			continue
		}
		if completed != nil && t.Completed != *completed {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTaskRepo) GetWithDueDates(ctx context.Context, userID uuid.UUID) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range f.tasks {
		if t.UserID == userID && t.DueDate != nil {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) Update(ctx context.Context, task *models.Task) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.tasks[task.ID] = task
	return nil
}

func (f *fakeTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.tasks, id)
	return nil
}

// fakePrefsRepo is an in-memory PreferencesRepositoryInterface
type fakePrefsRepo struct {
	prefs map[uuid.UUID]*models.Preferences
}

func newFakePrefsRepo() *fakePrefsRepo {
	return &fakePrefsRepo{prefs: make(map[uuid.UUID]*models.Preferences)}
}

func (f *fakePrefsRepo) Get(ctx context.Context, userID uuid.UUID) (*models.Preferences, error) {
	return f.prefs[userID], nil
}

func (f *fakePrefsRepo) Upsert(ctx context.Context, p *models.Preferences) error {
	f.prefs[p.UserID] = p
	return nil
}

func (f *fakePrefsRepo) ListNotifiable(ctx context.Context) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for id, p := range f.prefs {
		if p.TaskReminders || p.OverdueAlerts {
			out = append(out, id)
		}
	}
	return out, nil
}

// testUser returns a user for handler tests
func testUser() *models.User {
	name := "Test User"
	return &models.User{
		ID:    uuid.New(),
		Email: "test@example.com",
		Name:  &name,
	}
}

// authedRequest builds a request with the user attached to its context
func authedRequest(t *testing.T, method, target, body string, user *models.User) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	return req.WithContext(request.WithUser(req.Context(), user))
}

// decodeData unmarshals the "data" field of a success envelope into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if !envelope.Success {
		t.Fatalf("expected success envelope, got %s", w.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
}
