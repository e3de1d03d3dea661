package report

import (
	"context"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/kilianp07/roomload/core/calendar"
	"github.com/kilianp07/roomload/core/report"
	"github.com/kilianp07/roomload/infra/logger"
)

const (
	loadSheet    = "Load"
	summarySheet = "Summary"
	percentFmt   = "0.0%"
)

// XLSXSink writes the report as an Excel workbook with a "Load" sheet of
// per-room fractions and a "Summary" sheet.
type XLSXSink struct {
	path string
	log  logger.Logger
}

// NewXLSXSink creates a sink writing to path.
func NewXLSXSink(path string) (*XLSXSink, error) {
	if path == "" {
		return nil, fmt.Errorf("xlsx sink: path is required")
	}
	return &XLSXSink{path: path, log: logger.New("xlsx-sink")}, nil
}

// Location returns the output path.
func (s *XLSXSink) Location() string { return s.path }

// Write builds the workbook and saves it.
func (s *XLSXSink) Write(_ context.Context, r *report.Report) error {
	f, err := buildWorkbook(r)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.log.Errorf("close workbook: %v", err)
		}
	}()
	return writeFile(s.path, func(w io.Writer) error {
		_, err := f.WriteTo(w)
		return err
	})
}

func buildWorkbook(r *report.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", loadSheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := writeLoadSheet(f, r); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("load sheet: %w", err)
	}
	if err := writeSummarySheet(f, r); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("summary sheet: %w", err)
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeLoadSheet(f *excelize.File, r *report.Report) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	pctFmt := percentFmt
	pct, err := f.NewStyle(&excelize.Style{CustomNumFmt: &pctFmt})
	if err != nil {
		return err
	}

	header := report.Header()
	widths := make([]int, len(header))
	hdr := make([]any, len(header))
	for i, h := range header {
		hdr[i] = h
		widths[i] = utf8.RuneCountInString(h)
	}
	if err := f.SetSheetRow(loadSheet, "A1", &hdr); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(loadSheet, "A1", last, bold); err != nil {
		return err
	}

	for i, row := range r.Rows {
		values := make([]any, 0, len(header))
		values = append(values, row.RoomID, row.RoomName)
		for _, v := range row.Occupancy {
			values = append(values, v)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(loadSheet, cell, &values); err != nil {
			return err
		}
		widths[0] = max(widths[0], utf8.RuneCountInString(row.RoomID))
		widths[1] = max(widths[1], utf8.RuneCountInString(row.RoomName))
	}
	if len(r.Rows) > 0 {
		from, _ := excelize.CoordinatesToCellName(3, 2)
		to, _ := excelize.CoordinatesToCellName(len(header), len(r.Rows)+1)
		if err := f.SetCellStyle(loadSheet, from, to, pct); err != nil {
			return err
		}
	}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if i >= 2 {
			w = max(w, len("100.0%"))
		}
		if err := f.SetColWidth(loadSheet, col, col, float64(w)+2); err != nil {
			return err
		}
	}
	return f.SetPanes(loadSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeSummarySheet(f *excelize.File, r *report.Report) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	pctFmt := percentFmt
	pct, err := f.NewStyle(&excelize.Style{CustomNumFmt: &pctFmt})
	if err != nil {
		return err
	}
	meta := [][]any{
		{"Run ID", r.RunID},
		{"Begin", calendar.Format(r.Range.Begin)},
		{"End", calendar.Format(r.Range.End)},
		{"Workdays", r.Workdays},
		{"Rooms", r.Summary.Rooms},
		{"Failed rooms", r.Summary.Failed},
		{"Generated at", r.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST")},
	}
	for i, row := range meta {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}

	start := len(meta) + 2
	hdr := []any{"Slot", "Mean", "Median", "Max"}
	cell, _ := excelize.CoordinatesToCellName(1, start)
	if err := f.SetSheetRow(summarySheet, cell, &hdr); err != nil {
		return err
	}
	for i, st := range r.Summary.Slots {
		row := []any{st.Slot, st.Mean, st.Median, st.Max}
		cell, _ := excelize.CoordinatesToCellName(1, start+i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	from, _ := excelize.CoordinatesToCellName(2, start+1)
	to, _ := excelize.CoordinatesToCellName(4, start+len(r.Summary.Slots))
	if err := f.SetCellStyle(summarySheet, from, to, pct); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "A", "B", 16)
}
