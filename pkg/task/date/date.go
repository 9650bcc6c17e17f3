package date

import (
	"errors"
	"time"
)

// Reference is the single timezone all due-date comparisons happen in.
// Mixing timezones makes "due today" ambiguous, so everything is
// normalised here first.
var Reference = time.Local

var ErrInvalidDate = errors.New("invalid date")

// StartOfDay truncates an instant to midnight in the reference timezone
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(Reference).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, Reference)
}

// DaysBetween returns the number of calendar days from one instant's day
// to another's. Negative when to is before from.
func DaysBetween(from, to time.Time) int {
	diff := StartOfDay(to).Sub(StartOfDay(from))
	// rounding absorbs the odd-length days around DST changes
	days := diff.Hours() / 24
	if days < 0 {
		return int(days - 0.5)
	}
	return int(days + 0.5)
}

// MonthDay is a yearless calendar date, e.g. "07-15" for July 15th
type MonthDay struct {
	Month time.Month
	Day   int
}

// at builds the month/day in a concrete year, or fails if the
// combination does not exist in that year (e.g. Feb 30, or Feb 29
// outside a leap year)
func (md MonthDay) at(year int) (time.Time, error) {
	t := time.Date(year, md.Month, md.Day, 0, 0, 0, 0, Reference)
	if t.Month() != md.Month || t.Day() != md.Day {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// Resolve turns a yearless month/day into a concrete date on or after
// today: it tries the current year first and rolls over to the next
// year when that day has already passed. This lets "01-01" mean next
// New Year no matter when you type it.
func (md MonthDay) Resolve(today time.Time) (time.Time, error) {
	today = StartOfDay(today)
	due, err := md.at(today.Year())
	if err != nil {
		return time.Time{}, err
	}
	if due.Before(today) {
		return md.at(today.Year() + 1)
	}
	return due, nil
}
