package reminders

import (
	"context"
	"testing"
	"time"

	"github.com/dayflow/dayflow-api/internal/models"
	"github.com/dayflow/dayflow-api/internal/mutation"
	"github.com/google/uuid"
)

type fakeTaskSource struct {
	tasks map[uuid.UUID][]*models.Task
}

func (f *fakeTaskSource) GetWithDueDates(_ context.Context, userID uuid.UUID) ([]*models.Task, error) {
	return f.tasks[userID], nil
}

type fakePrefSource struct {
	prefs map[uuid.UUID]*models.Preferences
}

func (f *fakePrefSource) Get(_ context.Context, userID uuid.UUID) (*models.Preferences, error) {
	return f.prefs[userID], nil
}

func (f *fakePrefSource) ListNotifiable(_ context.Context) ([]uuid.UUID, error) {
	var users []uuid.UUID
	for id, p := range f.prefs {
		if p.TaskReminders || p.OverdueAlerts {
			users = append(users, id)
		}
	}
	return users, nil
}

func TestRefreshUserInstallsTimers(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	due := time.Now().Add(2 * time.Hour)
	tasks := &fakeTaskSource{tasks: map[uuid.UUID][]*models.Task{
		userID: {{ID: uuid.New(), UserID: userID, Title: "standup prep", DueDate: &due}},
	}}
	prefs := &fakePrefSource{prefs: map[uuid.UUID]*models.Preferences{
		userID: {UserID: userID, TaskReminders: true},
	}}
	notifier := &recordingNotifier{}

	e := NewEngine(tasks, prefs, notifier, nil, nil, time.Minute)
	defer e.Shutdown()

	if err := e.RefreshUser(context.Background(), userID); err != nil {
		t.Fatalf("RefreshUser() error: %v", err)
	}
	if got := e.PendingTimers(userID); got != 1 {
		t.Errorf("PendingTimers() = %d, want 1", got)
	}
}

func TestRefreshUserAppliesJournalOverlay(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	due := time.Now().Add(2 * time.Hour)
	task := &models.Task{ID: uuid.New(), UserID: userID, Title: "call dentist", DueDate: &due}
	tasks := &fakeTaskSource{tasks: map[uuid.UUID][]*models.Task{userID: {task}}}
	prefs := &fakePrefSource{prefs: map[uuid.UUID]*models.Preferences{
		userID: {UserID: userID, TaskReminders: true},
	}}
	journal := mutation.NewJournal()

	e := NewEngine(tasks, prefs, &recordingNotifier{}, journal, nil, time.Minute)
	defer e.Shutdown()

	// Optimistically completed but not yet persisted: no timer expected.
	entry := journal.Record(userID, task.ID, mutation.OpComplete, nil)
	if err := e.RefreshUser(context.Background(), userID); err != nil {
		t.Fatalf("RefreshUser() error: %v", err)
	}
	if got := e.PendingTimers(userID); got != 0 {
		t.Errorf("PendingTimers() = %d with pending completion, want 0", got)
	}

	// Store write failed; after revert the timer comes back.
	entry.Revert()
	if err := e.RefreshUser(context.Background(), userID); err != nil {
		t.Fatalf("RefreshUser() error: %v", err)
	}
	if got := e.PendingTimers(userID); got != 1 {
		t.Errorf("PendingTimers() = %d after revert, want 1", got)
	}
}

func TestStartAlertsOverdueTaskOnce(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	due := time.Now().Add(-time.Hour)
	tasks := &fakeTaskSource{tasks: map[uuid.UUID][]*models.Task{
		userID: {{ID: uuid.New(), UserID: userID, Title: "send invoice", DueDate: &due}},
	}}
	prefs := &fakePrefSource{prefs: map[uuid.UUID]*models.Preferences{
		userID: {UserID: userID, OverdueAlerts: true},
	}}
	notifier := &recordingNotifier{}

	e := NewEngine(tasks, prefs, notifier, nil, nil, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_ = e.Start(ctx)

	if got := notifier.alertCount(); got != 1 {
		t.Errorf("alert count = %d across ticks, want 1", got)
	}
}

func TestRefreshUserDisabledPreferencesClearsTimers(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	due := time.Now().Add(2 * time.Hour)
	tasks := &fakeTaskSource{tasks: map[uuid.UUID][]*models.Task{
		userID: {{ID: uuid.New(), UserID: userID, Title: "water plants", DueDate: &due}},
	}}
	prefSource := &fakePrefSource{prefs: map[uuid.UUID]*models.Preferences{
		userID: {UserID: userID, TaskReminders: true},
	}}

	e := NewEngine(tasks, prefSource, &recordingNotifier{}, nil, nil, time.Minute)
	defer e.Shutdown()

	if err := e.RefreshUser(context.Background(), userID); err != nil {
		t.Fatalf("RefreshUser() error: %v", err)
	}
	if got := e.PendingTimers(userID); got != 1 {
		t.Fatalf("PendingTimers() = %d, want 1", got)
	}

	prefSource.prefs[userID] = &models.Preferences{UserID: userID}
	if err := e.RefreshUser(context.Background(), userID); err != nil {
		t.Fatalf("RefreshUser() error: %v", err)
	}
	if got := e.PendingTimers(userID); got != 0 {
		t.Errorf("PendingTimers() = %d after disabling notifications, want 0", got)
	}
}
