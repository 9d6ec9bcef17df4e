// Package reminders schedules one-shot in-app reminders ahead of task due
// times and emits immediate alerts for overdue tasks.
package reminders

import (
	"context"
	"sync"
	"time"

	"github.com/dayflow/dayflow-api/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier delivers reminder and overdue notifications. Implementations are
// external collaborators (queue publisher in production, recorder in tests).
type Notifier interface {
	// Remind notifies that task is due in lead time.
	Remind(ctx context.Context, task *models.Task, lead time.Duration) error
	// Alert notifies that task is overdue.
	Alert(ctx context.Context, task *models.Task) error
}

// Prefs are the user preference flags gating the scheduling pass.
type Prefs struct {
	TaskReminders bool
	OverdueAlerts bool
	Lead          time.Duration
}

// Scheduler owns the collection of pending reminder timers for one user.
// Reschedule is the only mutator: every pass cancels the full previous batch
// before installing a new one, so re-invoking it never duplicates timers.
type Scheduler struct {
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	timers  map[uuid.UUID]*time.Timer
	alerted map[uuid.UUID]bool
}

// NewScheduler creates a scheduler delivering through notifier. A nil
// notifier (permission not granted) makes every pass a no-op.
func NewScheduler(notifier Notifier, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		notifier: notifier,
		log:      log,
		now:      time.Now,
		timers:   make(map[uuid.UUID]*time.Timer),
		alerted:  make(map[uuid.UUID]bool),
	}
}

// Reschedule replaces all pending reminder timers from the given task
// snapshot and, when enabled, synchronously emits an alert for each overdue
// open task the first time it appears overdue. The alert mark clears once the
// task completes or leaves the overdue set, so repeated passes (the engine
// ticks every minute) do not duplicate alerts. Timer callbacks for tasks
// completed after scheduling are not individually cancelled; the next pass
// clears them wholesale.
func (s *Scheduler) Reschedule(ctx context.Context, tasks []*models.Task, prefs Prefs) {
	s.mu.Lock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}

	if s.notifier == nil {
		s.mu.Unlock()
		return
	}

	now := s.now()
	lead := prefs.Lead
	if lead <= 0 {
		lead = models.DefaultReminderLead
	}

	if prefs.TaskReminders {
		for _, t := range tasks {
			if t == nil || t.Completed || t.DueDate == nil || !t.DueDate.After(now) {
				continue
			}
			fireAt := t.DueDate.Add(-lead)
			if !fireAt.After(now) {
				continue
			}
			task := t
			s.timers[t.ID] = time.AfterFunc(fireAt.Sub(now), func() {
				s.fire(task, lead)
			})
		}
	}

	var toAlert []*models.Task
	overdueNow := make(map[uuid.UUID]bool)
	for _, t := range tasks {
		if t == nil || !t.Overdue(now) {
			continue
		}
		overdueNow[t.ID] = true
		if prefs.OverdueAlerts && !s.alerted[t.ID] {
			s.alerted[t.ID] = true
			toAlert = append(toAlert, t)
		}
	}
	for id := range s.alerted {
		if !overdueNow[id] {
			delete(s.alerted, id)
		}
	}

	installed := len(s.timers)
	s.mu.Unlock()

	s.log.Debug("reminders_rescheduled", zap.Int("timers", installed))

	for _, t := range toAlert {
		if err := s.notifier.Alert(ctx, t); err != nil {
			s.log.Warn("overdue_alert_failed",
				zap.String("task_id", t.ID.String()),
				zap.Error(err),
			)
		}
	}
}

func (s *Scheduler) fire(task *models.Task, lead time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.mu.Lock()
	delete(s.timers, task.ID)
	s.mu.Unlock()

	if err := s.notifier.Remind(ctx, task, lead); err != nil {
		s.log.Warn("reminder_failed",
			zap.String("task_id", task.ID.String()),
			zap.Error(err),
		)
	}
}

// Pending returns the number of installed reminder timers.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every pending timer. Timers are not persisted; after a restart
// the next scheduling pass rebuilds them from the current task list.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}
