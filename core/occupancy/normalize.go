package occupancy

import (
	"strconv"
	"strings"

	"github.com/kilianp07/roomload/core/calendar"
	"github.com/kilianp07/roomload/core/model"
)

// Normalize converts a raw schedule entry into its computed form.
func Normalize(e model.ScheduleEntry) model.NormalizedEntry {
	var n model.NormalizedEntry
	if d, err := calendar.ParseDate(e.Date); err == nil {
		n.Date = &d
	}
	if slot, ok := parseSlot(e.LessonNumber); ok {
		n.Slot = &slot
	}
	n.Occupied = strings.TrimSpace(e.LessonDescription) != ""
	return n
}

// NormalizeAll normalizes entries and reports how many of them lack a
// usable date or lesson slot.
func NormalizeAll(entries []model.ScheduleEntry) ([]model.NormalizedEntry, int) {
	out := make([]model.NormalizedEntry, len(entries))
	skipped := 0
	for i, e := range entries {
		out[i] = Normalize(e)
		if !out[i].Usable() {
			skipped++
		}
	}
	return out, skipped
}

func parseSlot(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > model.LessonSlots {
		return 0, false
	}
	return n, true
}
