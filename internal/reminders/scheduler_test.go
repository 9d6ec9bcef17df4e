package reminders

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dayflow/dayflow-api/internal/models"
	"github.com/google/uuid"
)

type recordingNotifier struct {
	mu        sync.Mutex
	reminders []uuid.UUID
	alerts    []uuid.UUID
}

func (n *recordingNotifier) Remind(_ context.Context, task *models.Task, _ time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reminders = append(n.reminders, task.ID)
	return nil
}

func (n *recordingNotifier) Alert(_ context.Context, task *models.Task) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, task.ID)
	return nil
}

func (n *recordingNotifier) alertCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.alerts)
}

func (n *recordingNotifier) reminderCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.reminders)
}

func openTask(due time.Time) *models.Task {
	return &models.Task{
		ID:       uuid.New(),
		Title:    "task",
		Priority: models.PriorityMedium,
		DueDate:  &due,
	}
}

func TestRescheduleIsIdempotent(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	s := NewScheduler(notifier, nil)
	defer s.Stop()

	tasks := []*models.Task{
		openTask(time.Now().Add(2 * time.Hour)),
		openTask(time.Now().Add(3 * time.Hour)),
	}
	prefs := Prefs{TaskReminders: true}

	s.Reschedule(context.Background(), tasks, prefs)
	s.Reschedule(context.Background(), tasks, prefs)

	if got := s.Pending(); got != 2 {
		t.Errorf("Pending() = %d after double reschedule, want 2", got)
	}
}

func TestRescheduleSkipsIneligibleTasks(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	s := NewScheduler(notifier, nil)
	defer s.Stop()

	completed := openTask(time.Now().Add(2 * time.Hour))
	completed.SetCompleted(true, time.Now())
	undated := &models.Task{ID: uuid.New(), Title: "undated"}
	// due sooner than the lead, so fireAt is already in the past
	insideLead := openTask(time.Now().Add(10 * time.Minute))

	s.Reschedule(context.Background(), []*models.Task{completed, undated, insideLead}, Prefs{TaskReminders: true})

	if got := s.Pending(); got != 0 {
		t.Errorf("Pending() = %d, want 0", got)
	}
}

func TestRemindersDisabledInstallsNoTimers(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	s := NewScheduler(notifier, nil)
	defer s.Stop()

	s.Reschedule(context.Background(), []*models.Task{openTask(time.Now().Add(2 * time.Hour))}, Prefs{})

	if got := s.Pending(); got != 0 {
		t.Errorf("Pending() = %d with reminders disabled, want 0", got)
	}
}

func TestNilNotifierIsNoOp(t *testing.T) {
	t.Parallel()

	s := NewScheduler(nil, nil)
	defer s.Stop()

	overdue := openTask(time.Now().Add(-time.Hour))
	s.Reschedule(context.Background(), []*models.Task{overdue, openTask(time.Now().Add(2 * time.Hour))},
		Prefs{TaskReminders: true, OverdueAlerts: true})

	if got := s.Pending(); got != 0 {
		t.Errorf("Pending() = %d with nil notifier, want 0", got)
	}
}

func TestOverdueAlertsAreSynchronous(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	s := NewScheduler(notifier, nil)
	defer s.Stop()

	overdue := openTask(time.Now().Add(-time.Hour))
	overdueDone := openTask(time.Now().Add(-2 * time.Hour))
	overdueDone.SetCompleted(true, time.Now())

	s.Reschedule(context.Background(), []*models.Task{overdue, overdueDone}, Prefs{OverdueAlerts: true})

	if got := notifier.alertCount(); got != 1 {
		t.Errorf("alert count = %d immediately after reschedule, want 1", got)
	}
	if got := notifier.reminderCount(); got != 0 {
		t.Errorf("reminder count = %d, want 0", got)
	}
}

func TestOverdueAlertFiresOncePerTask(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	s := NewScheduler(notifier, nil)
	defer s.Stop()

	overdue := openTask(time.Now().Add(-time.Hour))
	tasks := []*models.Task{overdue}
	prefs := Prefs{OverdueAlerts: true}

	s.Reschedule(context.Background(), tasks, prefs)
	s.Reschedule(context.Background(), tasks, prefs)
	s.Reschedule(context.Background(), tasks, prefs)

	if got := notifier.alertCount(); got != 1 {
		t.Errorf("alert count = %d across three reschedules, want 1", got)
	}
}

func TestOverdueAlertRearmsAfterCompletion(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	s := NewScheduler(notifier, nil)
	defer s.Stop()

	task := openTask(time.Now().Add(-time.Hour))
	prefs := Prefs{OverdueAlerts: true}

	s.Reschedule(context.Background(), []*models.Task{task}, prefs)
	if got := notifier.alertCount(); got != 1 {
		t.Fatalf("alert count = %d, want 1", got)
	}

	// Completing the task clears its alert mark.
	task.SetCompleted(true, time.Now())
	s.Reschedule(context.Background(), []*models.Task{task}, prefs)
	if got := notifier.alertCount(); got != 1 {
		t.Fatalf("alert count = %d after completion, want still 1", got)
	}

	// Reopened and still past due, so it alerts again.
	task.SetCompleted(false, time.Now())
	s.Reschedule(context.Background(), []*models.Task{task}, prefs)
	if got := notifier.alertCount(); got != 2 {
		t.Errorf("alert count = %d after reopening, want 2", got)
	}
}

func TestTimerFires(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	s := NewScheduler(notifier, nil)
	defer s.Stop()

	lead := 50 * time.Millisecond
	task := openTask(time.Now().Add(lead + 30*time.Millisecond))
	s.Reschedule(context.Background(), []*models.Task{task}, Prefs{TaskReminders: true, Lead: lead})

	if got := s.Pending(); got != 1 {
		t.Fatalf("Pending() = %d, want 1", got)
	}

	deadline := time.After(2 * time.Second)
	for notifier.reminderCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("reminder timer never fired")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if got := s.Pending(); got != 0 {
		t.Errorf("Pending() = %d after firing, want 0", got)
	}
}

func TestStopCancelsTimers(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	s := NewScheduler(notifier, nil)

	s.Reschedule(context.Background(), []*models.Task{openTask(time.Now().Add(2 * time.Hour))}, Prefs{TaskReminders: true})
	s.Stop()

	if got := s.Pending(); got != 0 {
		t.Errorf("Pending() = %d after Stop, want 0", got)
	}
}
