package engine

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/td0m/remind/pkg/persist"
	"github.com/td0m/remind/pkg/task"
	"github.com/td0m/remind/pkg/task/date"
)

var (
	ErrNoDescription   = errors.New("empty task description")
	ErrIndexOutOfRange = errors.New("task index out of range")
	ErrPersistorNil    = errors.New("persistor is nil")
	ErrClockNil        = errors.New("clock is nil")
)

// the two snooze lengths offered by reminder prompts
const (
	SnoozeHour = time.Hour
	SnoozeDay  = 24 * time.Hour
)

// Listed pairs a task with its rendered due status for display
type Listed struct {
	task.Task
	Status string
}

// Engine owns the user → task mapping and implements every mutating
// and querying operation on it. The persisted medium has no isolation
// of its own, so all operations run read-modify-write under one lock;
// a whole-mapping save never interleaves with another.
//
// Mutations apply in memory first and then save. A failed save leaves
// the mutation applied and surfaces the error, so callers can warn
// that durability is uncertain instead of losing the change.
type Engine struct {
	mu      sync.Mutex
	store   *task.Store
	persist persist.Persistor
	clock   Clock
}

// New loads existing state and builds an engine around it. A missing
// file is a fine first run, but an unreadable one fails construction:
// starting empty over a real file would drop everyone's tasks on the
// next save.
func New(p persist.Persistor, c Clock) (*Engine, error) {
	if p == nil {
		return nil, ErrPersistorNil
	}
	if c == nil {
		return nil, ErrClockNil
	}
	store, err := p.Load()
	if err != nil {
		return nil, err
	}
	return &Engine{store: store, persist: p, clock: c}, nil
}

// Add appends a task for a user. The due date is a yearless month/day:
// it resolves against the current year and rolls forward a year when
// the day has already passed, so "01-01" always means the next New
// Year. Returns date.ErrInvalidDate for impossible combinations.
func (e *Engine) Add(user, description string, md date.MonthDay) (task.Task, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return task.Task{}, ErrNoDescription
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	due, err := md.Resolve(e.clock.Now())
	if err != nil {
		return task.Task{}, err
	}
	t := task.Task{Description: description, Due: due}
	e.store.Append(user, t)
	return t, e.persist.Save(e.store)
}

// List returns a user's tasks with display statuses, in insertion
// order. No tasks is an empty list, not an error.
func (e *Engine) List(user string) []Listed {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	tasks := e.store.Tasks(user)
	listed := make([]Listed, len(tasks))
	for i, t := range tasks {
		listed[i] = Listed{Task: t, Status: t.Status(now)}
	}
	return listed
}

// EvaluateOnActivity returns the subset of a user's tasks that should
// remind right now. It is read-only and makes no attempt to remember
// what it already returned: the same activity twice gets the same
// reminders twice unless a snooze intervenes.
func (e *Engine) EvaluateOnActivity(user string) []task.Task {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	due := []task.Task{}
	for _, t := range e.store.Tasks(user) {
		if t.Classify(now) == task.Due {
			due = append(due, t)
		}
	}
	return due
}

// Snooze suppresses reminders until now+d for every task whose
// description is in descriptions. Matching is by exact text, so
// duplicate descriptions snooze together. Unmatched descriptions are
// silently ignored.
func (e *Engine) Snooze(user string, descriptions []string, d time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	match := toSet(descriptions)
	until := e.clock.Now().Add(d)
	tasks := e.store.Tasks(user)
	changed := false
	for i := range tasks {
		if match[tasks[i].Description] {
			u := until
			tasks[i].SnoozedUntil = &u
			changed = true
		}
	}
	if !changed {
		return nil
	}
	e.store.Replace(user, tasks)
	return e.persist.Save(e.store)
}

// Complete removes every task whose description is in descriptions.
// No matches is a no-op, not an error.
func (e *Engine) Complete(user string, descriptions []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	match := toSet(descriptions)
	tasks := e.store.Tasks(user)
	kept := tasks[:0]
	for _, t := range tasks {
		if !match[t.Description] {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(tasks) {
		return nil
	}
	e.store.Replace(user, kept)
	return e.persist.Save(e.store)
}

// DeleteAt removes the task at the given position in the current
// listing order and hands back a single-use undo. The save error, if
// any, is reported alongside a still-valid PendingDeletion.
func (e *Engine) DeleteAt(user string, index int) (*PendingDeletion, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tasks := e.store.Tasks(user)
	if index < 0 || index >= len(tasks) {
		return nil, ErrIndexOutOfRange
	}
	removed := tasks[index]
	e.store.Replace(user, append(tasks[:index], tasks[index+1:]...))
	return &PendingDeletion{engine: e, user: user, task: removed}, e.persist.Save(e.store)
}

// Now exposes the engine's clock so callers rendering reminders use
// the same notion of "now" as the decisions behind them.
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// Users reports how many users currently have tasks, for status
// reporting.
func (e *Engine) Users() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Users()
}

func toSet(descriptions []string) map[string]bool {
	set := make(map[string]bool, len(descriptions))
	for _, d := range descriptions {
		set[d] = true
	}
	return set
}
