package test

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/kilianp07/roomload/app"
	"github.com/kilianp07/roomload/config"
	"github.com/kilianp07/roomload/infra/logger"
	"github.com/kilianp07/roomload/infra/provider"
	"github.com/kilianp07/roomload/pkg/export"
	"github.com/kilianp07/roomload/test/util"
)

const fixtureYAML = `rooms:
  - {block: "Building 1", id: "201", name: "Lecture hall"}
  - {block: "Building 1", id: "202", name: "Lab"}
  - {block: "Building 2", id: "301", name: "Seminar room"}
schedules:
  "201":
    - {date: "01.09.2025", lesson_number: "1", lesson_description: "Calculus"}
    - {date: "02.09.2025", lesson_number: "1", lesson_description: "Calculus"}
    - {date: "03.09.2025", lesson_number: "1", lesson_description: "Calculus"}
    - {date: "04.09.2025", lesson_number: "2", lesson_description: "Mechanics"}
  "202":
    - {date: "05.09.2025", lesson_number: "8", lesson_description: "Lab work"}
    - {date: "07.09.2025", lesson_number: "8", lesson_description: "Sunday lab"}
`

// startMock runs the timetable mock on a free local port and returns its
// base URL.
func startMock(t *testing.T, cfg config.MockServerConfig) (*provider.ServerMock, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixtureYAML), 0o644))
	fx, err := provider.LoadFixture(path)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	cfg.Address = ln.Addr().String()
	require.NoError(t, ln.Close())

	srv := provider.NewServerMockWithRegistry(cfg, fx, prometheus.NewRegistry())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	waitCtx, waitCancel := context.WithTimeout(ctx, util.MockServerTimeout)
	defer waitCancel()
	require.NoError(t, util.WaitForMockServer(waitCtx, srv))
	return srv, "http://" + srv.Addr() + "/cgi-bin/timetable_export.cgi"
}

func TestExportFromConfigFile(t *testing.T) {
	srv, baseURL := startMock(t, config.MockServerConfig{Gzip: true, FailRooms: []string{"301"}})
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "out", "load.json")
	dbPath := filepath.Join(dir, "runs.db")
	promPath := filepath.Join(dir, "roomload.prom")

	cfgPath := filepath.Join(dir, "config.yaml")
	cfgYAML := fmt.Sprintf(`range:
  begin: "01.09.2025"
  end: "07.09.2025"
provider:
  base_url: %q
  encoding: UTF-8
report:
  sinks:
    - type: json
      conf: {path: %q}
    - type: sqlite
      conf: {path: %q}
    - type: html
      conf: {path: %q}
metrics:
  textfile: %q
`, baseURL, jsonPath, dbPath, filepath.Join(dir, "load.html"), promPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o644))
	t.Setenv("ROOMLOAD_PROVIDER__MAX_CONCURRENCY", "1")

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.Provider.MaxConcurrency)

	var out bytes.Buffer
	svc, err := app.New(context.Background(), cfg, app.WithOutput(&out), app.WithLogger(logger.NopLogger{}))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	res, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, res.Report.Workdays)
	assert.Equal(t, 1, res.Report.Summary.Failed)
	assert.Contains(t, out.String(), "Rooms to process: 3")

	raw, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var doc export.Document
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Len(t, doc.Rooms, 3)
	// Lab, Lecture hall, Seminar room
	assert.Equal(t, "202", doc.Rooms[0].RoomID)
	assert.InDelta(t, 0.2, doc.Rooms[0].Slots["8"], 1e-9)
	assert.Equal(t, "201", doc.Rooms[1].RoomID)
	assert.InDelta(t, 0.6, doc.Rooms[1].Slots["1"], 1e-9)
	assert.InDelta(t, 0.2, doc.Rooms[1].Slots["2"], 1e-9)
	assert.True(t, doc.Rooms[2].Failed)
	assert.NotEmpty(t, doc.Rooms[2].Error)

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()
	var rows int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM room_occupancy WHERE run_id = ?`, doc.RunID).Scan(&rows))
	assert.Equal(t, 24, rows)
	var failed int
	require.NoError(t, db.QueryRow(`SELECT failed FROM runs WHERE run_id = ?`, doc.RunID).Scan(&failed))
	assert.Equal(t, 1, failed)

	assert.FileExists(t, filepath.Join(dir, "load.html"))
	prom, err := os.ReadFile(promPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `roomload_last_run_rooms{status="failed"} 1`)

	ctx, cancel := context.WithTimeout(context.Background(), util.MetricTimeout)
	defer cancel()
	require.NoError(t, util.WaitForMetric(ctx, "http://"+srv.Addr()+"/metrics",
		`roomload_mock_requests_total{code="500",req_type="rozklad"} 1`))
}

func TestExportRateLimited(t *testing.T) {
	_, baseURL := startMock(t, config.MockServerConfig{})
	cfg := &config.Config{
		Range:    config.RangeConfig{Begin: "01.09.2025", End: "02.09.2025"},
		Provider: config.ProviderConfig{BaseURL: baseURL, MaxConcurrency: 4, RequestsPerSecond: 2},
		Output:   filepath.Join(t.TempDir(), "rooms-load.xlsx"),
	}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())

	svc, err := app.New(context.Background(), cfg, app.WithOutput(&bytes.Buffer{}), app.WithLogger(logger.NopLogger{}))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	start := time.Now()
	res, err := svc.Export(context.Background())
	require.NoError(t, err)
	// four requests with a burst of two at 2 req/s
	assert.GreaterOrEqual(t, time.Since(start), 900*time.Millisecond)
	assert.Equal(t, 0, res.Report.Summary.Failed)
	assert.FileExists(t, cfg.Output)
}
