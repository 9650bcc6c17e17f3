package task

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/td0m/remind/pkg/task/date"
)

// ReminderWindow is how many days ahead of the due date a task starts
// nagging. Due-today counts, so the window is [0,5] days left.
const ReminderWindow = 5

// Task is a single item someone asked to be reminded about.
// Due is a calendar date (midnight in the reference timezone); the
// description is opaque and also how snooze/done address tasks.
type Task struct {
	Description  string
	Due          time.Time
	SnoozedUntil *time.Time
}

// the persisted form uses a plain ISO date for Due,
// time-of-day would be meaningless there
type taskJSON struct {
	Description  string     `json:"description"`
	Due          string     `json:"dueDate"`
	SnoozedUntil *time.Time `json:"snoozedUntil,omitempty"`
}

const dueLayout = "2006-01-02"

func (t Task) MarshalJSON() ([]byte, error) {
	return json.Marshal(taskJSON{
		Description:  t.Description,
		Due:          t.Due.Format(dueLayout),
		SnoozedUntil: t.SnoozedUntil,
	})
}

func (t *Task) UnmarshalJSON(bs []byte) error {
	var out taskJSON
	if err := json.Unmarshal(bs, &out); err != nil {
		return err
	}
	due, err := time.ParseInLocation(dueLayout, out.Due, date.Reference)
	if err != nil {
		return err
	}
	t.Description = out.Description
	t.Due = due
	t.SnoozedUntil = out.SnoozedUntil
	return nil
}

// Classification is the reminder decision for a task at an instant
type Classification int

const (
	// NotYet: outside the reminder window, nothing to say
	NotYet Classification = iota
	// Due: inside the window and not snoozed, remind now
	Due
	// Snoozed: inside or outside the window, suppressed until the
	// snooze expires
	Snoozed
)

// DaysLeft is the number of calendar days until the due date.
// Negative once the date has passed.
func (t Task) DaysLeft(now time.Time) int {
	return date.DaysBetween(now, t.Due)
}

// Classify decides whether a task should remind at a given instant.
// It depends only on its inputs, so the same task and time always
// classify the same way.
// An active snooze wins over everything else. Overdue tasks do not
// remind: once the window has passed the task goes quiet again.
func (t Task) Classify(now time.Time) Classification {
	if t.SnoozedUntil != nil && now.Before(*t.SnoozedUntil) {
		return Snoozed
	}
	if d := t.DaysLeft(now); d >= 0 && d <= ReminderWindow {
		return Due
	}
	return NotYet
}

// Status renders the listing status for a task: "Overdue", "Due today"
// or a pluralised days-left count.
func (t Task) Status(now time.Time) string {
	switch d := t.DaysLeft(now); {
	case d < 0:
		return "Overdue"
	case d == 0:
		return "Due today"
	case d == 1:
		return "1 day left"
	default:
		return strconv.Itoa(d) + " days left"
	}
}
