package engine

import (
	"time"

	"github.com/td0m/remind/pkg/task/date"
)

// Clock supplies the current time in the reference timezone. Every
// temporal decision in the engine goes through it, so tests can pin
// the "current" moment.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().In(date.Reference)
}

func SystemClock() Clock {
	return systemClock{}
}
