package report

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kilianp07/roomload/core/calendar"
	"github.com/kilianp07/roomload/core/model"
)

// Report is the immutable result of one run.
type Report struct {
	RunID       string
	Range       calendar.Range
	Workdays    int
	GeneratedAt time.Time
	// Rows are ordered by room name, case-insensitively.
	Rows    []model.OccupancyRow
	Summary Summary
}

// New copies and sorts rows and computes the summary.
func New(runID string, r calendar.Range, workdays int, rows []model.OccupancyRow, at time.Time) *Report {
	sorted := append([]model.OccupancyRow(nil), rows...)
	SortRows(sorted)
	return &Report{
		RunID:       runID,
		Range:       r,
		Workdays:    workdays,
		GeneratedAt: at,
		Rows:        sorted,
		Summary:     Summarize(sorted),
	}
}

// SortRows orders rows by room name ignoring case, then by room id.
func SortRows(rows []model.OccupancyRow) {
	slices.SortStableFunc(rows, func(a, b model.OccupancyRow) int {
		if c := strings.Compare(strings.ToUpper(a.RoomName), strings.ToUpper(b.RoomName)); c != 0 {
			return c
		}
		return strings.Compare(a.RoomID, b.RoomID)
	})
}

// Header returns the tabular column names: room id, room name and one column
// per lesson slot.
func Header() []string {
	h := []string{"Room ID", "Room Name"}
	for slot := 1; slot <= model.LessonSlots; slot++ {
		h = append(h, fmt.Sprint(slot))
	}
	return h
}

// FormatPercent renders a fraction with one decimal, e.g. 0.2 -> "20.0%".
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// Sink persists a report.
type Sink interface {
	Write(ctx context.Context, r *Report) error
}

// Locator is implemented by sinks that can describe where they wrote the
// report, e.g. a file path or an object URL.
type Locator interface {
	Location() string
}
