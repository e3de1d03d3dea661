package model

import "time"

// ScheduleEntry is one raw lesson record of a room schedule as reported by
// the provider. Only Date, LessonNumber and LessonDescription take part in
// occupancy computation; the other fields are carried for sinks and logs.
type ScheduleEntry struct {
	Object            string
	Date              string
	Comment           string
	LessonNumber      string
	LessonName        string
	LessonTime        string
	LessonDescription string
}

// NormalizedEntry is the computed form of a ScheduleEntry. Date and Slot are
// nil when the raw value could not be parsed; such entries are ignored by
// aggregation.
type NormalizedEntry struct {
	Date     *time.Time
	Slot     *int
	Occupied bool
}

// Usable reports whether both the date and the lesson slot were parsed.
func (e NormalizedEntry) Usable() bool {
	return e.Date != nil && e.Slot != nil
}
