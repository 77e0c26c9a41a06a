package util

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// DateLayout is the calendar date format used on the wire, in config and in SQL parameters.
const DateLayout = "2006-01-02"

// DateOnly truncates t to midnight UTC of its calendar day.
// Attendance dates carry no time-of-day, so every date is normalized to UTC
// before it is compared or grouped.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a date string in YYYY-MM-DD format as a UTC calendar date.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(dateStr))
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid date %q", dateStr)
	}
	return t, nil
}

// FormatDate renders a date in YYYY-MM-DD format.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ValidatePeriod checks that a selection window is well formed.
// Both bounds are inclusive, so start == end selects a single day.
func ValidatePeriod(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return errors.New("period start and end dates are required")
	}
	if DateOnly(start).After(DateOnly(end)) {
		return errors.Newf("period start %s is after period end %s", FormatDate(start), FormatDate(end))
	}
	return nil
}

// ComparePeriodIDs orders two roll call ids as a total order.
// Integer ids sort before all others and compare numerically, so "9" < "10".
// Everything else compares as strings. Ids that are numerically equal but
// spelled differently ("1", "01") fall back to string order, so only
// identical ids compare equal.
func ComparePeriodIDs(a, b string) int {
	ai, aErr := strconv.ParseInt(a, 10, 64)
	bi, bErr := strconv.ParseInt(b, 10, 64)
	aNum, bNum := aErr == nil, bErr == nil

	switch {
	case aNum && !bNum:
		return -1
	case !aNum && bNum:
		return 1
	case aNum && bNum && ai != bi:
		if ai < bi {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
