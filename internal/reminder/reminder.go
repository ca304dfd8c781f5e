package reminder

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates no reminder matched the id for this user.
	ErrNotFound = errors.New("reminder not found")
)

// Priorities and repeat cadences a reminder can carry.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"

	RepeatNone    = "none"
	RepeatDaily   = "daily"
	RepeatWeekly  = "weekly"
	RepeatMonthly = "monthly"
)

// Reminder is a personal, timed note. Notified flips once the worker has
// dispatched it; repeating reminders get a fresh row for the next occurrence.
type Reminder struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	DueAt       time.Time `json:"date_time"`
	Priority    string    `json:"priority"`
	Color       string    `json:"color"`
	Repeat      string    `json:"repeat"`
	Notified    bool      `json:"notified"`
	CreatedAt   time.Time `json:"created_at"`
}

func validPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

func validRepeat(r string) bool {
	return r == RepeatNone || r == RepeatDaily || r == RepeatWeekly || r == RepeatMonthly
}

// nextOccurrence advances a due time by one repeat step.
func nextOccurrence(due time.Time, repeat string) time.Time {
	switch repeat {
	case RepeatDaily:
		return due.AddDate(0, 0, 1)
	case RepeatWeekly:
		return due.AddDate(0, 0, 7)
	case RepeatMonthly:
		return due.AddDate(0, 1, 0)
	}
	return due
}
