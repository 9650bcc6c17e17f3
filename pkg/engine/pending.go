package engine

import (
	"errors"

	"github.com/td0m/remind/pkg/task"
)

var ErrAlreadyRestored = errors.New("deletion already restored")

// PendingDeletion holds the one task removed by the latest DeleteAt so
// a user can change their mind once. It lives only in memory: restart
// the process and the undo is gone.
type PendingDeletion struct {
	engine   *Engine
	user     string
	task     task.Task
	restored bool
}

// Task returns the removed task
func (p *PendingDeletion) Task() task.Task {
	return p.task
}

// Restore re-appends the removed task to the end of its owner's list.
// The original position is not preserved. A second Restore fails: the
// undo is single-use.
func (p *PendingDeletion) Restore() error {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()

	if p.restored {
		return ErrAlreadyRestored
	}
	p.restored = true
	p.engine.store.Append(p.user, p.task)
	return p.engine.persist.Save(p.engine.store)
}
