// Package export encodes occupancy reports into portable formats.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"

	"github.com/kilianp07/roomload/core/calendar"
	"github.com/kilianp07/roomload/core/report"
)

// Document is the JSON form of a report.
type Document struct {
	RunID       string        `json:"run_id"`
	Begin       string        `json:"begin"`
	End         string        `json:"end"`
	Workdays    int           `json:"workdays"`
	GeneratedAt time.Time     `json:"generated_at"`
	Rooms       []RoomRecord  `json:"rooms"`
	Summary     SummaryRecord `json:"summary"`
}

// RoomRecord is one room of a Document. Slots maps "1".."8" to the occupied
// fraction.
type RoomRecord struct {
	RoomID   string             `json:"room_id"`
	RoomName string             `json:"room_name"`
	Slots    map[string]float64 `json:"slots"`
	Failed   bool               `json:"failed,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// SummaryRecord is the JSON form of report.Summary.
type SummaryRecord struct {
	Rooms  int                `json:"rooms"`
	Failed int                `json:"failed"`
	Slots  []report.SlotStats `json:"slots"`
}

// NewDocument converts r.
func NewDocument(r *report.Report) Document {
	doc := Document{
		RunID:       r.RunID,
		Begin:       calendar.Format(r.Range.Begin),
		End:         calendar.Format(r.Range.End),
		Workdays:    r.Workdays,
		GeneratedAt: r.GeneratedAt.UTC(),
		Rooms:       make([]RoomRecord, 0, len(r.Rows)),
		Summary: SummaryRecord{
			Rooms:  r.Summary.Rooms,
			Failed: r.Summary.Failed,
			Slots:  r.Summary.Slots[:],
		},
	}
	for _, row := range r.Rows {
		slots := make(map[string]float64, len(row.Occupancy))
		for slot, v := range row.Occupancy.Map() {
			slots[strconv.Itoa(slot)] = v
		}
		doc.Rooms = append(doc.Rooms, RoomRecord{
			RoomID:   row.RoomID,
			RoomName: row.RoomName,
			Slots:    slots,
			Failed:   row.Failed,
			Error:    row.Err,
		})
	}
	return doc
}

// WriteJSON writes r to w as an indented Document.
func WriteJSON(w io.Writer, r *report.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(r))
}

// WriteCSV writes one line per room under report.Header. Fractions are
// written as percentages ("20.0%") when percent is set, raw otherwise.
func WriteCSV(w io.Writer, r *report.Report, percent bool) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(report.Header()); err != nil {
		return err
	}
	for _, row := range r.Rows {
		if err := cw.Write(cells(row.RoomID, row.RoomName, row.Occupancy[:], percent)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTable renders r as an aligned text table followed by the per-slot
// mean.
func WriteTable(w io.Writer, r *report.Report) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader(report.Header())
	table.SetAutoFormatHeaders(false)
	for _, row := range r.Rows {
		table.Append(cells(row.RoomID, row.RoomName, row.Occupancy[:], true))
	}
	means := make([]float64, len(r.Summary.Slots))
	for i, s := range r.Summary.Slots {
		means[i] = s.Mean
	}
	table.SetFooter(cells("", "mean", means, true))
	table.Render()
	return nil
}

func cells(id, name string, fractions []float64, percent bool) []string {
	rec := make([]string, 0, 2+len(fractions))
	rec = append(rec, id, name)
	for _, f := range fractions {
		if percent {
			rec = append(rec, report.FormatPercent(f))
		} else {
			rec = append(rec, strconv.FormatFloat(f, 'f', -1, 64))
		}
	}
	return rec
}
