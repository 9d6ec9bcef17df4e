// Package today computes the "today" view over a task snapshot: which tasks
// are relevant for the current calendar day, the sub-filters applied on top,
// and the display sort order.
package today

import (
	"sort"
	"time"

	"github.com/dayflow/dayflow-api/internal/models"
)

// Filter narrows the today set to a sub-view
type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
	FilterOverdue   Filter = "overdue"
)

// ValidFilter reports whether f is a known filter tag.
func ValidFilter(f Filter) bool {
	switch f {
	case FilterAll, FilterPending, FilterCompleted, FilterOverdue:
		return true
	}
	return false
}

// SortKey is one component of a view's sort order
type SortKey string

const (
	// SortKeyCompletion sinks completed tasks below open ones
	SortKeyCompletion SortKey = "completion"
	// SortKeyPriority orders high before medium before low
	SortKeyPriority SortKey = "priority"
	// SortKeyDueDate orders by ascending due time, tasks without one last
	SortKeyDueDate SortKey = "due_date"
)

// KeysFor maps a stored sort-order preference to its key sequence. The two
// orderings reproduce the today view (completion then priority) and the full
// task list (due date first).
func KeysFor(order models.SortOrder) []SortKey {
	if order == models.SortOrderDueDate {
		return []SortKey{SortKeyDueDate, SortKeyPriority, SortKeyCompletion}
	}
	return []SortKey{SortKeyCompletion, SortKeyPriority}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Select returns the tasks relevant for now's calendar day: due today, or
// overdue and still open. Tasks without a due date are excluded regardless of
// priority or creation date.
func Select(tasks []*models.Task, now time.Time) []*models.Task {
	out := make([]*models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t == nil || t.DueDate == nil {
			continue
		}
		if sameDay(t.DueDate.In(now.Location()), now) || t.Overdue(now) {
			out = append(out, t)
		}
	}
	return out
}

// Apply narrows a today set by the active filter tag. FilterOverdue re-applies
// the overdue predicate over the subset it is given, so it is always a subset
// of the today set rather than a fresh search across all tasks.
func Apply(tasks []*models.Task, f Filter, now time.Time) []*models.Task {
	if f == FilterAll || f == "" {
		return tasks
	}
	out := make([]*models.Task, 0, len(tasks))
	for _, t := range tasks {
		switch f {
		case FilterPending:
			if !t.Completed {
				out = append(out, t)
			}
		case FilterCompleted:
			if t.Completed {
				out = append(out, t)
			}
		case FilterOverdue:
			if t.Overdue(now) {
				out = append(out, t)
			}
		}
	}
	return out
}

// Sort orders tasks in place by the given key sequence; earlier keys win.
// The sort is stable so ties keep their snapshot order.
func Sort(tasks []*models.Task, keys []SortKey) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		for _, key := range keys {
			switch key {
			case SortKeyCompletion:
				if a.Completed != b.Completed {
					return !a.Completed
				}
			case SortKeyPriority:
				if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
					return ra < rb
				}
			case SortKeyDueDate:
				switch {
				case a.DueDate == nil && b.DueDate == nil:
				case a.DueDate == nil:
					return false
				case b.DueDate == nil:
					return true
				case !a.DueDate.Equal(*b.DueDate):
					return a.DueDate.Before(*b.DueDate)
				}
			}
		}
		return false
	})
}

// PendingCount counts the open tasks in a today set.
func PendingCount(tasks []*models.Task) int {
	n := 0
	for _, t := range tasks {
		if !t.Completed {
			n++
		}
	}
	return n
}

// AllDone reports the congratulatory state: a non-empty today set with
// nothing left open.
func AllDone(tasks []*models.Task) bool {
	return len(tasks) > 0 && PendingCount(tasks) == 0
}
