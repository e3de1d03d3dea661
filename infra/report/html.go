package report

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/roomload/core/calendar"
	"github.com/kilianp07/roomload/core/model"
	"github.com/kilianp07/roomload/core/report"
)

// HTMLSink renders an interactive chart page: the mean, median and maximum
// occupancy per lesson slot, plus the busiest rooms.
type HTMLSink struct {
	path string
	top  int
}

// HTMLConfig configures an HTMLSink.
type HTMLConfig struct {
	Path string `json:"path"`
	// Top is the number of rooms in the per-room chart.
	Top int `json:"top"`
}

// NewHTMLSink creates an HTML chart sink.
func NewHTMLSink(cfg HTMLConfig) (*HTMLSink, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("html sink: path is required")
	}
	if cfg.Top <= 0 {
		cfg.Top = 15
	}
	return &HTMLSink{path: cfg.Path, top: cfg.Top}, nil
}

func (s *HTMLSink) Location() string { return s.path }

func (s *HTMLSink) Write(_ context.Context, r *report.Report) error {
	page := components.NewPage()
	page.PageTitle = "Room load " + r.Range.String()
	page.AddCharts(slotChart(r), roomChart(r, s.top))
	return writeFile(s.path, func(w io.Writer) error {
		if err := page.Render(w); err != nil {
			return fmt.Errorf("render chart: %w", err)
		}
		return nil
	})
}

func slotAxis() []string {
	axis := make([]string, model.LessonSlots)
	for i := range axis {
		axis[i] = strconv.Itoa(i + 1)
	}
	return axis
}

func pct(f float64) float64 { return float64(int(f*1000+0.5)) / 10 }

func slotChart(r *report.Report) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Occupancy per lesson",
			Subtitle: fmt.Sprintf("%s to %s, %d workdays, %d rooms", calendar.Format(r.Range.Begin), calendar.Format(r.Range.End), r.Workdays, r.Summary.Rooms),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Lesson"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "%"}),
	)
	var mean, median, maxv []opts.BarData
	for _, st := range r.Summary.Slots {
		mean = append(mean, opts.BarData{Value: pct(st.Mean)})
		median = append(median, opts.BarData{Value: pct(st.Median)})
		maxv = append(maxv, opts.BarData{Value: pct(st.Max)})
	}
	bar.SetXAxis(slotAxis()).
		AddSeries("Mean", mean).
		AddSeries("Median", median).
		AddSeries("Max", maxv)
	return bar
}

func roomChart(r *report.Report, top int) *charts.Bar {
	rows := busiestRooms(r.Rows, top)
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Busiest %d rooms", len(rows))}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Lesson"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "%"}),
	)
	bar.SetXAxis(slotAxis())
	for _, row := range rows {
		data := make([]opts.BarData, 0, model.LessonSlots)
		for _, v := range row.Occupancy {
			data = append(data, opts.BarData{Value: pct(v)})
		}
		bar.AddSeries(row.RoomName, data)
	}
	return bar
}

// busiestRooms returns up to n successful rows with the highest total
// occupancy, keeping report order among equals.
func busiestRooms(rows []model.OccupancyRow, n int) []model.OccupancyRow {
	var ok []model.OccupancyRow
	for _, r := range rows {
		if !r.Failed {
			ok = append(ok, r)
		}
	}
	total := func(r model.OccupancyRow) float64 {
		var t float64
		for _, v := range r.Occupancy {
			t += v
		}
		return t
	}
	slices.SortStableFunc(ok, func(a, b model.OccupancyRow) int {
		return cmp.Compare(total(b), total(a))
	})
	if len(ok) > n {
		ok = ok[:n]
	}
	return ok
}
