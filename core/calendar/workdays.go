package calendar

import "time"

// WorkdaySet is an immutable set of workdays used both as the occupancy
// denominator and as a membership filter.
type WorkdaySet struct {
	days  []time.Time
	index map[time.Time]struct{}
}

// NewWorkdaySet builds a set from r's workdays.
func NewWorkdaySet(r Range) WorkdaySet {
	return SetOf(Workdays(r)...)
}

// SetOf builds a set from arbitrary dates. Weekend dates and duplicates are
// dropped so the set only ever holds distinct workdays.
func SetOf(dates ...time.Time) WorkdaySet {
	s := WorkdaySet{index: make(map[time.Time]struct{}, len(dates))}
	for _, d := range dates {
		d = Day(d)
		if !IsWorkday(d) {
			continue
		}
		if _, ok := s.index[d]; ok {
			continue
		}
		s.index[d] = struct{}{}
		s.days = append(s.days, d)
	}
	return s
}

// Len returns the number of workdays.
func (s WorkdaySet) Len() int { return len(s.days) }

// Empty reports whether the set has no workdays.
func (s WorkdaySet) Empty() bool { return len(s.days) == 0 }

// Contains reports whether the calendar date of d is in the set.
func (s WorkdaySet) Contains(d time.Time) bool {
	_, ok := s.index[Day(d)]
	return ok
}

// Days returns a copy of the workdays in insertion order.
func (s WorkdaySet) Days() []time.Time {
	return append([]time.Time(nil), s.days...)
}
