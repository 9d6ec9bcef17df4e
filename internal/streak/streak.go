package streak

import (
	"time"

	"github.com/dayflow/dayflow-api/internal/models"
)

// day identifies a local calendar day. Comparing days instead of elapsed
// durations means two completions 20 hours apart that cross local midnight
// land on different days.
type day struct {
	year  int
	month time.Month
	day   int
}

func dayOf(t time.Time, loc *time.Location) day {
	y, m, d := t.In(loc).Date()
	return day{year: y, month: m, day: d}
}

func (d day) previous(loc *time.Location) day {
	t := time.Date(d.year, d.month, d.day, 12, 0, 0, 0, loc).AddDate(0, 0, -1)
	return dayOf(t, loc)
}

// Calculate returns the number of consecutive calendar days, walking backward
// from now's day, on which at least one task was completed. When nothing has
// been completed yet today the walk starts at yesterday, so a streak built on
// prior days survives until local midnight. Completed tasks with no recorded
// completion time are skipped. The result counts days, not completions.
func Calculate(tasks []*models.Task, now time.Time) int {
	loc := now.Location()

	completed := make(map[day]struct{})
	for _, t := range tasks {
		if t == nil || !t.Completed || t.CompletedAt == nil {
			continue
		}
		completed[dayOf(*t.CompletedAt, loc)] = struct{}{}
	}
	if len(completed) == 0 {
		return 0
	}

	cursor := dayOf(now, loc)
	if _, ok := completed[cursor]; !ok {
		cursor = cursor.previous(loc)
	}

	count := 0
	for {
		if _, ok := completed[cursor]; !ok {
			break
		}
		count++
		cursor = cursor.previous(loc)
	}
	return count
}
