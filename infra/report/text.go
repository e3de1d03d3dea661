package report

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/kilianp07/roomload/core/report"
	"github.com/kilianp07/roomload/pkg/export"
)

// CSVSink writes one CSV line per room.
type CSVSink struct {
	path string
	// raw writes fractions instead of percentages.
	raw bool
}

// CSVConfig configures a CSVSink.
type CSVConfig struct {
	Path string `json:"path"`
	Raw  bool   `json:"raw"`
}

// NewCSVSink creates a CSV sink.
func NewCSVSink(cfg CSVConfig) (*CSVSink, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("csv sink: path is required")
	}
	return &CSVSink{path: cfg.Path, raw: cfg.Raw}, nil
}

func (s *CSVSink) Location() string { return s.path }

func (s *CSVSink) Write(_ context.Context, r *report.Report) error {
	return writeFile(s.path, func(w io.Writer) error {
		return export.WriteCSV(w, r, !s.raw)
	})
}

// JSONSink writes the report as a JSON document.
type JSONSink struct{ path string }

// NewJSONSink creates a JSON sink.
func NewJSONSink(path string) (*JSONSink, error) {
	if path == "" {
		return nil, fmt.Errorf("json sink: path is required")
	}
	return &JSONSink{path: path}, nil
}

func (s *JSONSink) Location() string { return s.path }

func (s *JSONSink) Write(_ context.Context, r *report.Report) error {
	return writeFile(s.path, func(w io.Writer) error {
		return export.WriteJSON(w, r)
	})
}

// TableSink prints the report as a text table, to stdout unless a path is
// configured.
type TableSink struct {
	path string
	out  io.Writer
}

// NewTableSink creates a table sink. An empty path writes to stdout.
func NewTableSink(path string) *TableSink {
	return &TableSink{path: path, out: os.Stdout}
}

func (s *TableSink) Location() string { return s.path }

func (s *TableSink) Write(_ context.Context, r *report.Report) error {
	if s.path == "" {
		return export.WriteTable(s.out, r)
	}
	return writeFile(s.path, func(w io.Writer) error {
		return export.WriteTable(w, r)
	})
}
