package report

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/roomload/core/model"
)

// SlotStats aggregates one lesson slot across rooms.
type SlotStats struct {
	Slot   int     `json:"slot"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// Summary describes a run across all rooms. Failed rooms are counted but
// excluded from the slot statistics.
type Summary struct {
	Rooms  int
	Failed int
	Slots  [model.LessonSlots]SlotStats
}

// Summarize computes per-slot statistics over the successful rows.
func Summarize(rows []model.OccupancyRow) Summary {
	s := Summary{Rooms: len(rows)}
	var ok []model.OccupancyRow
	for _, r := range rows {
		if r.Failed {
			s.Failed++
			continue
		}
		ok = append(ok, r)
	}
	for i := range s.Slots {
		s.Slots[i].Slot = i + 1
		if len(ok) == 0 {
			continue
		}
		xs := make([]float64, len(ok))
		for j, r := range ok {
			xs[j] = r.Occupancy[i]
		}
		sort.Float64s(xs)
		s.Slots[i].Mean = stat.Mean(xs, nil)
		s.Slots[i].Median = stat.Quantile(0.5, stat.Empirical, xs, nil)
		s.Slots[i].Max = floats.Max(xs)
	}
	return s
}

// Busiest returns the slot with the highest mean occupancy. Ties resolve to
// the lower slot number.
func (s Summary) Busiest() SlotStats {
	best := s.Slots[0]
	for _, st := range s.Slots[1:] {
		if st.Mean > best.Mean {
			best = st
		}
	}
	return best
}
