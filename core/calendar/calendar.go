package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the day.month.year format used by the timetable provider.
const DateLayout = "02.01.2006"

// ErrNoWorkdays is returned when a range contains no workday.
var ErrNoWorkdays = errors.New("no workdays in the given range")

// FormatError reports a date string that does not match DateLayout.
type FormatError struct {
	Field string
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s date %q: expected dd.mm.yyyy", e.Field, e.Value)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Range is an inclusive span of calendar dates.
type Range struct {
	Begin time.Time
	End   time.Time
}

// ParseRange parses begin and end using DateLayout. It does not require
// begin <= end; an inverted range simply has no workdays.
func ParseRange(begin, end string) (Range, error) {
	b, err := ParseDate(begin)
	if err != nil {
		return Range{}, &FormatError{Field: "begin", Value: begin, Err: err}
	}
	e, err := ParseDate(end)
	if err != nil {
		return Range{}, &FormatError{Field: "end", Value: end, Err: err}
	}
	return Range{Begin: b, End: e}, nil
}

// ParseDate parses a single day.month.year value after trimming spaces.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// Format renders d in DateLayout.
func Format(d time.Time) string { return d.Format(DateLayout) }

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Days returns the number of calendar days in r, or 0 when r is inverted.
func (r Range) Days() int {
	b, e := Day(r.Begin), Day(r.End)
	if e.Before(b) {
		return 0
	}
	return int(e.Sub(b).Hours()/24) + 1
}

// String renders the range as "begin..end".
func (r Range) String() string {
	return Format(r.Begin) + ".." + Format(r.End)
}

// IsWorkday reports whether d falls on Monday through Friday.
func IsWorkday(d time.Time) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// Workdays lists every workday from r.Begin to r.End inclusive in
// ascending order. An inverted range yields an empty slice.
func Workdays(r Range) []time.Time {
	n := r.Days()
	if n == 0 {
		return nil
	}
	days := make([]time.Time, 0, n)
	for d := Day(r.Begin); !d.After(Day(r.End)); d = d.AddDate(0, 0, 1) {
		if IsWorkday(d) {
			days = append(days, d)
		}
	}
	return days
}
