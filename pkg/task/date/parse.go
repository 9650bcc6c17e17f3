package date

import (
	"strconv"
	"strings"
	"time"
)

// ParseMonthDay parses a yearless "MM-DD" date, e.g. "07-15" for July
// 15th. Single digits are accepted ("7-4"), a year is not.
// The returned MonthDay is only known to be numerically plausible;
// whether the day exists in a given year is decided by Resolve.
func ParseMonthDay(s string) (MonthDay, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return MonthDay{}, ErrInvalidDate
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return MonthDay{}, ErrInvalidDate
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return MonthDay{}, ErrInvalidDate
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return MonthDay{}, ErrInvalidDate
	}
	return MonthDay{Month: time.Month(month), Day: day}, nil
}
