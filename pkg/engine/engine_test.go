package engine

import (
	"errors"
	"path"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/td0m/remind/pkg/persist"
	"github.com/td0m/remind/pkg/task"
	"github.com/td0m/remind/pkg/task/date"
)

// fixedClock pins "now" so temporal behaviour is deterministic
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) Now() time.Time { return c.t }

func (c *fixedClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// brokenPersistor loads fine but cannot save
type brokenPersistor struct{}

func (brokenPersistor) Load() (*task.Store, error) { return task.NewStore(), nil }
func (brokenPersistor) Save(*task.Store) error     { return persist.ErrUnavailable }

func newTestEngine(t *testing.T) (*Engine, *fixedClock) {
	t.Helper()
	clock := &fixedClock{t: time.Date(2024, time.June, 1, 10, 0, 0, 0, date.Reference)}
	e, err := New(persist.InJSON(path.Join(t.TempDir(), "tasks.json")), clock)
	if err != nil {
		t.Fatal(err)
	}
	return e, clock
}

func descriptions(tasks []task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Description
	}
	return out
}

func TestNew(t *testing.T) {
	t.Run("guards against nil collaborators", func(t *testing.T) {
		is := is.New(t)
		_, err := New(nil, SystemClock())
		is.Equal(err, ErrPersistorNil)
		_, err = New(brokenPersistor{}, nil)
		is.Equal(err, ErrClockNil)
	})
	t.Run("fails on an unreadable medium", func(t *testing.T) {
		is := is.New(t)
		// a directory is readable as a path but not as a json file
		_, err := New(persist.InJSON(t.TempDir()), SystemClock())
		is.True(errors.Is(err, persist.ErrUnavailable))
	})
}

func TestEngine_Add(t *testing.T) {
	t.Run("future month/day lands in the current year", func(t *testing.T) {
		is := is.New(t)
		e, _ := newTestEngine(t)
		added, err := e.Add("alice", "wrap presents", date.MonthDay{Month: time.December, Day: 25})
		is.NoErr(err)
		is.Equal(added.Due.Year(), 2024)
	})
	t.Run("past month/day rolls into next year", func(t *testing.T) {
		is := is.New(t)
		e, _ := newTestEngine(t)
		added, err := e.Add("alice", "new year cards", date.MonthDay{Month: time.January, Day: 1})
		is.NoErr(err)
		is.Equal(added.Due.Year(), 2025)
	})
	t.Run("impossible date adds nothing", func(t *testing.T) {
		is := is.New(t)
		e, _ := newTestEngine(t)
		_, err := e.Add("alice", "never", date.MonthDay{Month: time.February, Day: 30})
		is.True(errors.Is(err, date.ErrInvalidDate))
		is.Equal(len(e.List("alice")), 0)
	})
	t.Run("blank description is rejected", func(t *testing.T) {
		is := is.New(t)
		e, _ := newTestEngine(t)
		_, err := e.Add("alice", "   ", date.MonthDay{Month: time.June, Day: 5})
		is.Equal(err, ErrNoDescription)
	})
}

func TestEngine_List(t *testing.T) {
	is := is.New(t)
	e, _ := newTestEngine(t)

	is.Equal(len(e.List("nobody")), 0)

	_, err := e.Add("alice", "report", date.MonthDay{Month: time.June, Day: 4})
	is.NoErr(err)
	_, err = e.Add("alice", "laundry", date.MonthDay{Month: time.June, Day: 11})
	is.NoErr(err)
	_, err = e.Add("alice", "due-today", date.MonthDay{Month: time.June, Day: 1})
	is.NoErr(err)

	listed := e.List("alice")
	is.Equal(len(listed), 3)
	// insertion order, with rendered statuses
	is.Equal(listed[0].Description, "report")
	is.Equal(listed[0].Status, "3 days left")
	is.Equal(listed[1].Status, "10 days left")
	is.Equal(listed[2].Status, "Due today")

	// repeated calls without mutations are identical
	is.True(reflect.DeepEqual(e.List("alice"), listed))
}

func TestEngine_EvaluateOnActivity(t *testing.T) {
	is := is.New(t)
	e, clock := newTestEngine(t)

	_, err := e.Add("alice", "Report", date.MonthDay{Month: time.June, Day: 4})
	is.NoErr(err)
	_, err = e.Add("alice", "Laundry", date.MonthDay{Month: time.June, Day: 11})
	is.NoErr(err)

	// only the task inside the window reminds
	is.Equal(descriptions(e.EvaluateOnActivity("alice")), []string{"Report"})
	// re-evaluating without state change repeats the same answer
	is.Equal(descriptions(e.EvaluateOnActivity("alice")), []string{"Report"})

	// snoozing silences it for a day
	is.NoErr(e.Snooze("alice", []string{"Report"}, SnoozeDay))
	is.Equal(len(e.EvaluateOnActivity("alice")), 0)

	// and it comes back once the snooze elapses
	clock.advance(SnoozeDay + time.Minute)
	is.Equal(descriptions(e.EvaluateOnActivity("alice")), []string{"Report"})
}

func TestEngine_Snooze(t *testing.T) {
	is := is.New(t)
	e, clock := newTestEngine(t)

	_, err := e.Add("alice", "report", date.MonthDay{Month: time.June, Day: 3})
	is.NoErr(err)

	is.NoErr(e.Snooze("alice", []string{"report"}, SnoozeHour))

	// suppressed right up to the expiry instant, due again after
	is.Equal(len(e.EvaluateOnActivity("alice")), 0)
	clock.advance(59 * time.Minute)
	is.Equal(len(e.EvaluateOnActivity("alice")), 0)
	clock.advance(time.Minute)
	is.Equal(descriptions(e.EvaluateOnActivity("alice")), []string{"report"})

	t.Run("unknown descriptions are ignored", func(t *testing.T) {
		is := is.New(t)
		is.NoErr(e.Snooze("alice", []string{"no such task"}, SnoozeHour))
		is.Equal(descriptions(e.EvaluateOnActivity("alice")), []string{"report"})
	})
	t.Run("duplicate descriptions snooze together", func(t *testing.T) {
		is := is.New(t)
		_, err := e.Add("bob", "standup", date.MonthDay{Month: time.June, Day: 2})
		is.NoErr(err)
		_, err = e.Add("bob", "standup", date.MonthDay{Month: time.June, Day: 3})
		is.NoErr(err)
		is.NoErr(e.Snooze("bob", []string{"standup"}, SnoozeHour))
		is.Equal(len(e.EvaluateOnActivity("bob")), 0)
	})
}

func TestEngine_Complete(t *testing.T) {
	is := is.New(t)
	e, _ := newTestEngine(t)

	_, err := e.Add("alice", "report", date.MonthDay{Month: time.June, Day: 3})
	is.NoErr(err)
	_, err = e.Add("alice", "laundry", date.MonthDay{Month: time.June, Day: 4})
	is.NoErr(err)

	is.NoErr(e.Complete("alice", []string{"report", "not a task"}))
	is.Equal(descriptions(e.EvaluateOnActivity("alice")), []string{"laundry"})

	// completing the last task prunes the user from the mapping
	is.NoErr(e.Complete("alice", []string{"laundry"}))
	is.Equal(len(e.List("alice")), 0)

	t.Run("no matches is a no-op", func(t *testing.T) {
		is := is.New(t)
		is.NoErr(e.Complete("alice", []string{"anything"}))
	})
}

func TestEngine_DeleteRestore(t *testing.T) {
	is := is.New(t)
	e, _ := newTestEngine(t)

	_, err := e.Add("alice", "first", date.MonthDay{Month: time.June, Day: 3})
	is.NoErr(err)
	_, err = e.Add("alice", "second", date.MonthDay{Month: time.June, Day: 4})
	is.NoErr(err)
	_, err = e.Add("alice", "third", date.MonthDay{Month: time.June, Day: 5})
	is.NoErr(err)

	before := descriptions(tasksOf(e, "alice"))

	pending, err := e.DeleteAt("alice", 1)
	is.NoErr(err)
	is.Equal(pending.Task().Description, "second")
	is.Equal(descriptions(tasksOf(e, "alice")), []string{"first", "third"})

	// restore brings the same set back, though at the end of the list
	is.NoErr(pending.Restore())
	after := descriptions(tasksOf(e, "alice"))
	sort.Strings(before)
	sort.Strings(after)
	is.Equal(before, after)

	t.Run("restore is single-use", func(t *testing.T) {
		is := is.New(t)
		is.Equal(pending.Restore(), ErrAlreadyRestored)
		is.Equal(len(tasksOf(e, "alice")), 3)
	})
	t.Run("bad index", func(t *testing.T) {
		is := is.New(t)
		_, err := e.DeleteAt("alice", 3)
		is.Equal(err, ErrIndexOutOfRange)
		_, err = e.DeleteAt("alice", -1)
		is.Equal(err, ErrIndexOutOfRange)
		_, err = e.DeleteAt("nobody", 0)
		is.Equal(err, ErrIndexOutOfRange)
	})
	t.Run("deleting the last task prunes the user", func(t *testing.T) {
		is := is.New(t)
		_, err := e.Add("carol", "only", date.MonthDay{Month: time.June, Day: 3})
		is.NoErr(err)
		_, err = e.DeleteAt("carol", 0)
		is.NoErr(err)
		is.Equal(len(e.List("carol")), 0)
	})
}

func TestEngine_SaveFailureKeepsState(t *testing.T) {
	is := is.New(t)

	clock := &fixedClock{t: time.Date(2024, time.June, 1, 10, 0, 0, 0, date.Reference)}
	e, err := New(brokenPersistor{}, clock)
	is.NoErr(err)

	// the error surfaces, but the task is applied in memory
	_, err = e.Add("alice", "report", date.MonthDay{Month: time.June, Day: 3})
	is.True(errors.Is(err, persist.ErrUnavailable))
	is.Equal(len(e.List("alice")), 1)
}

func TestEngine_Persistence(t *testing.T) {
	is := is.New(t)

	file := path.Join(t.TempDir(), "tasks.json")
	clock := &fixedClock{t: time.Date(2024, time.June, 1, 10, 0, 0, 0, date.Reference)}

	e, err := New(persist.InJSON(file), clock)
	is.NoErr(err)
	_, err = e.Add("alice", "report", date.MonthDay{Month: time.June, Day: 4})
	is.NoErr(err)
	is.NoErr(e.Snooze("alice", []string{"report"}, SnoozeHour))

	// a second engine over the same file sees the snoozed task
	e2, err := New(persist.InJSON(file), clock)
	is.NoErr(err)
	is.Equal(len(e2.List("alice")), 1)
	is.Equal(len(e2.EvaluateOnActivity("alice")), 0)
}

func tasksOf(e *Engine, user string) []task.Task {
	listed := e.List(user)
	tasks := make([]task.Task, len(listed))
	for i, l := range listed {
		tasks[i] = l.Task
	}
	return tasks
}
