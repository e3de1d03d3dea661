package occupancy

import (
	"time"

	"github.com/kilianp07/roomload/core/calendar"
	"github.com/kilianp07/roomload/core/model"
)

// ComputePercentages returns, for each lesson slot, the fraction of
// workdays on which the slot was occupied.
//
// An entry counts only when its date and slot are present, it is occupied,
// its date is a workday and the date belongs to workdays. Several entries
// for the same date and slot count once. An empty workday set yields all
// zeros.
func ComputePercentages(entries []model.NormalizedEntry, workdays calendar.WorkdaySet) model.Occupancy {
	var out model.Occupancy
	total := workdays.Len()
	if total == 0 {
		return out
	}

	var busy [model.LessonSlots]map[time.Time]struct{}
	for _, e := range entries {
		if !e.Usable() || !e.Occupied {
			continue
		}
		slot := *e.Slot
		if slot < 1 || slot > model.LessonSlots {
			continue
		}
		d := calendar.Day(*e.Date)
		if !calendar.IsWorkday(d) || !workdays.Contains(d) {
			continue
		}
		if busy[slot-1] == nil {
			busy[slot-1] = make(map[time.Time]struct{})
		}
		busy[slot-1][d] = struct{}{}
	}

	for i, dates := range busy {
		out[i] = float64(len(dates)) / float64(total)
	}
	return out
}
