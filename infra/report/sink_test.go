package report

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kilianp07/roomload/core/calendar"
	"github.com/kilianp07/roomload/core/factory"
	"github.com/kilianp07/roomload/core/model"
	"github.com/kilianp07/roomload/core/report"
	"github.com/kilianp07/roomload/pkg/export"
)

func sampleReport(t *testing.T) *report.Report {
	t.Helper()
	rng, err := calendar.ParseRange("01.09.2025", "05.09.2025")
	require.NoError(t, err)
	rows := []model.OccupancyRow{
		{RoomID: "2", RoomName: "Лабораторія 2", Occupancy: model.Occupancy{0.2, 0.4, 0, 0, 0, 0, 0, 1}},
		{RoomID: "1", RoomName: "Аудиторія 1", Occupancy: model.Occupancy{0.6}},
		{RoomID: "3", RoomName: "Спортзал", Failed: true, Err: "status 500"},
	}
	return report.New("run-42", rng, 5, rows, time.Date(2025, 9, 6, 8, 0, 0, 0, time.UTC))
}

func TestXLSXSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "rooms-load.xlsx")
	sink, err := NewXLSXSink(path)
	require.NoError(t, err)
	require.NoError(t, sink.Write(context.Background(), sampleReport(t)))
	assert.Equal(t, path, sink.Location())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{loadSheet, summarySheet}, f.GetSheetList())
	rows, err := f.GetRows(loadSheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Room ID", "Room Name", "1", "2", "3", "4", "5", "6", "7", "8"}, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "Аудиторія 1", rows[1][1])
	assert.Equal(t, "0.6", rows[1][2])
	assert.Equal(t, "1", rows[2][9])
	assert.Equal(t, "Спортзал", rows[3][1])

	styleID, err := f.GetCellStyle(loadSheet, "C2")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.CustomNumFmt)
	assert.Equal(t, percentFmt, *style.CustomNumFmt)

	runID, err := f.GetCellValue(summarySheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "run-42", runID)
}

func TestXLSXSinkEmptyReport(t *testing.T) {
	rng, _ := calendar.ParseRange("01.09.2025", "05.09.2025")
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	sink, err := NewXLSXSink(path)
	require.NoError(t, err)
	require.NoError(t, sink.Write(context.Background(), report.New("r", rng, 5, nil, time.Now())))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(loadSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestFileSinksFromRegistry(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "load.csv")
	jsonPath := filepath.Join(dir, "load.json")
	tablePath := filepath.Join(dir, "load.txt")
	htmlPath := filepath.Join(dir, "load.html")

	sink, err := report.NewSink([]factory.ModuleConfig{
		{Type: "csv", Conf: map[string]any{"path": csvPath}},
		{Type: "json", Conf: map[string]any{"path": jsonPath}},
		{Type: "table", Conf: map[string]any{"path": tablePath}},
		{Type: "html", Conf: map[string]any{"path": htmlPath, "top": "2"}},
	})
	require.NoError(t, err)
	require.NoError(t, sink.Write(context.Background(), sampleReport(t)))

	loc, ok := sink.(report.Locator)
	require.True(t, ok)
	assert.Equal(t, strings.Join([]string{csvPath, jsonPath, tablePath, htmlPath}, ", "), loc.Location())

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Room ID,Room Name,1,2,3,4,5,6,7,8\n1,Аудиторія 1,60.0%"))

	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	var doc export.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "run-42", doc.RunID)
	assert.Len(t, doc.Rooms, 3)

	data, err = os.ReadFile(tablePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Лабораторія 2")

	data, err = os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Occupancy per lesson")
	assert.Contains(t, string(data), "Busiest 2 rooms")
}

func TestFileSinksRequirePath(t *testing.T) {
	for _, typ := range []string{"xlsx", "csv", "json", "html", "sqlite"} {
		_, err := report.NewSink([]factory.ModuleConfig{{Type: typ}})
		assert.Error(t, err, typ)
	}
}

func TestTableSinkStdout(t *testing.T) {
	var buf strings.Builder
	sink := NewTableSink("")
	sink.out = &buf
	require.NoError(t, sink.Write(context.Background(), sampleReport(t)))
	assert.Contains(t, buf.String(), "Аудиторія 1")
	assert.Equal(t, "", sink.Location())
}

func TestBusiestRooms(t *testing.T) {
	rows := sampleReport(t).Rows
	top := busiestRooms(rows, 1)
	require.Len(t, top, 1)
	assert.Equal(t, "2", top[0].RoomID)
	assert.Len(t, busiestRooms(rows, 10), 2)
}

func TestSQLiteSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	sink, err := NewSQLiteSink(path)
	require.NoError(t, err)
	defer func() { _ = sink.Close() }()

	r := sampleReport(t)
	require.NoError(t, sink.Write(context.Background(), r))
	require.NoError(t, sink.Write(context.Background(), r))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var runs, rows int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&runs))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM room_occupancy WHERE run_id = ?`, "run-42").Scan(&rows))
	assert.Equal(t, 1, runs)
	assert.Equal(t, 3*model.LessonSlots, rows)

	var fraction float64
	require.NoError(t, db.QueryRow(`SELECT fraction FROM room_occupancy WHERE room_id = '2' AND slot = 8`).Scan(&fraction))
	assert.Equal(t, 1.0, fraction)

	var failed, workdays int
	require.NoError(t, db.QueryRow(`SELECT failed, workdays FROM runs WHERE run_id = 'run-42'`).Scan(&failed, &workdays))
	assert.Equal(t, 1, failed)
	assert.Equal(t, 5, workdays)
}
