package model

// LessonSlots is the number of fixed teaching periods per day.
const LessonSlots = 8

// Occupancy holds the occupied fraction of each lesson slot. Index 0 is
// slot 1. Every slot always has a value in [0,1].
type Occupancy [LessonSlots]float64

// Slot returns the fraction for the 1-based lesson slot n, or 0 when n is
// out of range.
func (o Occupancy) Slot(n int) float64 {
	if n < 1 || n > LessonSlots {
		return 0
	}
	return o[n-1]
}

// Map returns the fractions keyed by 1-based slot number.
func (o Occupancy) Map() map[int]float64 {
	m := make(map[int]float64, LessonSlots)
	for i, v := range o {
		m[i+1] = v
	}
	return m
}

// OccupancyRow is the per-room result of a run. Failed marks a zero-filled
// row substituted after the room could not be processed.
type OccupancyRow struct {
	RoomID    string
	RoomName  string
	Occupancy Occupancy
	Failed    bool
	Err       string
}

// FallbackRow returns the zero-filled row used when processing room fails.
func FallbackRow(room Room, err error) OccupancyRow {
	row := OccupancyRow{RoomID: room.ID, RoomName: room.Name, Failed: true}
	if err != nil {
		row.Err = err.Error()
	}
	return row
}
