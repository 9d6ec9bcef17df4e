package reminders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dayflow/dayflow-api/internal/models"
	"github.com/dayflow/dayflow-api/internal/mutation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTickInterval is how often the engine re-scans for tasks that crossed
// their due time while nothing else changed.
const DefaultTickInterval = 1 * time.Minute

// TaskSource provides the dated task snapshot for a user.
type TaskSource interface {
	GetWithDueDates(ctx context.Context, userID uuid.UUID) ([]*models.Task, error)
}

// PreferenceSource provides notification preferences.
type PreferenceSource interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Preferences, error)
	ListNotifiable(ctx context.Context) ([]uuid.UUID, error)
}

// Engine drives reminder scheduling across users. It keeps one Scheduler per
// user and re-invokes Reschedule on a low-frequency tick as well as on task
// change, so a task that becomes overdue while the app sits idle still
// produces an alert within one tick.
type Engine struct {
	tasks    TaskSource
	prefs    PreferenceSource
	notifier Notifier
	journal  *mutation.Journal
	log      *zap.Logger
	interval time.Duration

	mu         sync.Mutex
	schedulers map[uuid.UUID]*Scheduler
}

// NewEngine creates a reminder engine. journal may be nil when optimistic
// overlays are not needed (the worker binary).
func NewEngine(tasks TaskSource, prefs PreferenceSource, notifier Notifier, journal *mutation.Journal, log *zap.Logger, interval time.Duration) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Engine{
		tasks:      tasks,
		prefs:      prefs,
		notifier:   notifier,
		journal:    journal,
		log:        log,
		interval:   interval,
		schedulers: make(map[uuid.UUID]*Scheduler),
	}
}

// Start runs the tick loop until ctx is cancelled.
func (e *Engine) Start(ctx context.Context) error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	e.RefreshAll(ctx)
	for {
		select {
		case <-ctx.Done():
			e.Shutdown()
			return ctx.Err()
		case <-ticker.C:
			e.RefreshAll(ctx)
		}
	}
}

// RefreshAll reschedules reminders for every user with notifications enabled.
func (e *Engine) RefreshAll(ctx context.Context) {
	users, err := e.prefs.ListNotifiable(ctx)
	if err != nil {
		e.log.Warn("reminder_refresh_list_failed", zap.Error(err))
		return
	}
	for _, userID := range users {
		if err := e.RefreshUser(ctx, userID); err != nil {
			e.log.Warn("reminder_refresh_failed",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
		}
	}
}

// RefreshUser reloads one user's dated tasks, overlays any pending optimistic
// mutations, and reschedules their timers. Handlers call this after every
// task change; the tick loop calls it for everyone.
func (e *Engine) RefreshUser(ctx context.Context, userID uuid.UUID) error {
	prefs, err := e.prefs.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load preferences: %w", err)
	}
	if prefs == nil {
		prefs = models.DefaultPreferences(userID)
	}

	if !prefs.TaskReminders && !prefs.OverdueAlerts {
		e.mu.Lock()
		if s, ok := e.schedulers[userID]; ok {
			s.Stop()
			delete(e.schedulers, userID)
		}
		e.mu.Unlock()
		return nil
	}

	tasks, err := e.tasks.GetWithDueDates(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	if e.journal != nil {
		tasks = e.journal.Overlay(userID, tasks)
	}

	e.scheduler(userID).Reschedule(ctx, tasks, Prefs{
		TaskReminders: prefs.TaskReminders,
		OverdueAlerts: prefs.OverdueAlerts,
		Lead:          prefs.ReminderLead(),
	})
	return nil
}

func (e *Engine) scheduler(userID uuid.UUID) *Scheduler {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.schedulers[userID]
	if !ok {
		s = NewScheduler(e.notifier, e.log)
		e.schedulers[userID] = s
	}
	return s
}

// PendingTimers returns the number of installed timers for a user.
func (e *Engine) PendingTimers(userID uuid.UUID) int {
	e.mu.Lock()
	s, ok := e.schedulers[userID]
	e.mu.Unlock()
	if !ok {
		return 0
	}
	return s.Pending()
}

// Shutdown cancels every user's timers.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for userID, s := range e.schedulers {
		s.Stop()
		delete(e.schedulers, userID)
	}
}
