// Package deadline computes the business-day review window attached to
// every uploaded document.
package deadline

import "time"

const DefaultBusinessDays = 5

type Level string

const (
	Normal  Level = "normal"
	Warning Level = "warning"
	Urgent  Level = "urgent"
	Overdue Level = "overdue"
)

// Status is the SLA state of a document at a point in time.
type Status struct {
	Deadline time.Time `json:"deadline"`
	// Progress is elapsed over total wall-clock time, clamped to [0,1].
	Progress float64 `json:"progress"`
	// DaysLeft counts business days until the deadline; negative once overdue.
	DaysLeft int   `json:"days_left"`
	Level    Level `json:"level"`
}

type Tracker struct {
	BusinessDays int
}

func NewTracker(businessDays int) Tracker {
	if businessDays <= 0 {
		businessDays = DefaultBusinessDays
	}
	return Tracker{BusinessDays: businessDays}
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddBusinessDays advances t by n weekdays, keeping the time of day.
func AddBusinessDays(t time.Time, n int) time.Time {
	for added := 0; added < n; {
		t = t.AddDate(0, 0, 1)
		if !isWeekend(t) {
			added++
		}
	}
	return t
}

// businessDaysBetween counts weekdays in the calendar-day range (from, to].
func businessDaysBetween(from, to time.Time) int {
	count := 0
	for d := day(from).AddDate(0, 0, 1); !d.After(day(to)); d = d.AddDate(0, 0, 1) {
		if !isWeekend(d) {
			count++
		}
	}
	return count
}

func (t Tracker) Deadline(createdAt time.Time) time.Time {
	return AddBusinessDays(createdAt, t.BusinessDays)
}

// Evaluate returns the SLA status of a document created at createdAt as
// observed at now.
func (t Tracker) Evaluate(createdAt, now time.Time) Status {
	deadline := t.Deadline(createdAt)
	now = now.In(createdAt.Location())

	progress := 0.0
	if total := deadline.Sub(createdAt); total > 0 {
		progress = float64(now.Sub(createdAt)) / float64(total)
	}
	progress = min(max(progress, 0), 1)

	var daysLeft int
	if day(now).After(day(deadline)) {
		daysLeft = -max(businessDaysBetween(deadline, now), 1)
	} else {
		daysLeft = businessDaysBetween(now, deadline)
	}

	return Status{
		Deadline: deadline,
		Progress: progress,
		DaysLeft: daysLeft,
		Level:    levelFor(daysLeft),
	}
}

func levelFor(daysLeft int) Level {
	switch {
	case daysLeft < 0:
		return Overdue
	case daysLeft <= 1:
		return Urgent
	case daysLeft <= 2:
		return Warning
	default:
		return Normal
	}
}
