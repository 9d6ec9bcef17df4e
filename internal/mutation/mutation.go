// Package mutation records optimistic task mutations as explicit commands.
// A mutation is applied to in-memory snapshots immediately (read-your-writes
// for views and the reminder engine) and stays pending until the backing
// store confirms or the caller reverts it.
package mutation

import (
	"sync"
	"time"

	"github.com/dayflow/dayflow-api/internal/models"
	"github.com/google/uuid"
)

// Op is the kind of task mutation
type Op string

const (
	OpComplete   Op = "complete"
	OpUncomplete Op = "uncomplete"
	OpDelete     Op = "delete"
	OpUpsert     Op = "upsert"
)

// State tracks a mutation's lifecycle
type State string

const (
	StatePending   State = "pending"
	StateConfirmed State = "confirmed"
	StateReverted  State = "reverted"
)

// Entry is one recorded mutation. Confirm or Revert must be called exactly
// once when the backing store resolves; both are idempotent afterward.
type Entry struct {
	ID     uuid.UUID
	UserID uuid.UUID
	TaskID uuid.UUID
	Op     Op
	// Task carries the new value for OpUpsert; nil otherwise.
	Task      *models.Task
	CreatedAt time.Time

	journal *Journal
	state   State
}

// State returns the entry's current lifecycle state.
func (e *Entry) State() State {
	e.journal.mu.Lock()
	defer e.journal.mu.Unlock()
	return e.state
}

// Confirm marks the mutation as persisted and drops it from the overlay; the
// store snapshot now carries the change itself.
func (e *Entry) Confirm() {
	e.journal.resolve(e, StateConfirmed)
}

// Revert discards the mutation; subsequent overlays no longer apply it.
func (e *Entry) Revert() {
	e.journal.resolve(e, StateReverted)
}

// Journal holds the pending mutations per user.
type Journal struct {
	mu      sync.Mutex
	pending map[uuid.UUID][]*Entry
	now     func() time.Time
}

// NewJournal creates an empty journal.
func NewJournal() *Journal {
	return &Journal{
		pending: make(map[uuid.UUID][]*Entry),
		now:     time.Now,
	}
}

// Record registers a pending mutation and returns its entry.
func (j *Journal) Record(userID, taskID uuid.UUID, op Op, task *models.Task) *Entry {
	e := &Entry{
		ID:        uuid.New(),
		UserID:    userID,
		TaskID:    taskID,
		Op:        op,
		Task:      task,
		CreatedAt: j.now(),
		journal:   j,
		state:     StatePending,
	}
	j.mu.Lock()
	j.pending[userID] = append(j.pending[userID], e)
	j.mu.Unlock()
	return e
}

// PendingCount returns the number of unresolved mutations for a user.
func (j *Journal) PendingCount(userID uuid.UUID) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.pending[userID])
}

func (j *Journal) resolve(e *Entry, final State) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if e.state != StatePending {
		return
	}
	e.state = final
	entries := j.pending[e.UserID]
	for i, cur := range entries {
		if cur.ID == e.ID {
			j.pending[e.UserID] = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	if len(j.pending[e.UserID]) == 0 {
		delete(j.pending, e.UserID)
	}
}

// Overlay applies the user's pending mutations, in record order, to a store
// snapshot. The snapshot slice is not modified; task values that change are
// copied first.
func (j *Journal) Overlay(userID uuid.UUID, tasks []*models.Task) []*models.Task {
	j.mu.Lock()
	entries := make([]*Entry, len(j.pending[userID]))
	copy(entries, j.pending[userID])
	now := j.now()
	j.mu.Unlock()

	if len(entries) == 0 {
		return tasks
	}

	out := make([]*models.Task, len(tasks))
	copy(out, tasks)

	for _, e := range entries {
		switch e.Op {
		case OpComplete, OpUncomplete:
			for i, t := range out {
				if t.ID == e.TaskID {
					clone := *t
					clone.SetCompleted(e.Op == OpComplete, now)
					out[i] = &clone
					break
				}
			}
		case OpDelete:
			for i, t := range out {
				if t.ID == e.TaskID {
					out = append(out[:i], out[i+1:]...)
					break
				}
			}
		case OpUpsert:
			if e.Task == nil {
				continue
			}
			// Insert a copy so later writes through the recorded pointer
			// cannot leak into snapshots already handed out.
			clone := *e.Task
			replaced := false
			for i, t := range out {
				if t.ID == e.TaskID {
					out[i] = &clone
					replaced = true
					break
				}
			}
			if !replaced {
				out = append(out, &clone)
			}
		}
	}
	return out
}
