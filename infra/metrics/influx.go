package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/roomload/config"
	coremetrics "github.com/kilianp07/roomload/core/metrics"
	"github.com/kilianp07/roomload/infra/logger"
)

// InfluxRecorder writes room fetch and run events to InfluxDB.
type InfluxRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxRecorder creates a recorder for the given endpoint.
func NewInfluxRecorder(cfg config.InfluxConfig) *InfluxRecorder {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxRecorder{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-recorder"),
	}
}

// NewInfluxRecorderWithFallback pings InfluxDB and returns a NopRecorder if
// the health check fails.
func NewInfluxRecorderWithFallback(ctx context.Context, cfg config.InfluxConfig) coremetrics.Recorder {
	rec := NewInfluxRecorder(cfg)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	health, err := rec.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			rec.log.Errorf("influx health check error: %v", err)
		} else {
			rec.log.Errorf("influx health status: %s", health.Status)
		}
		rec.client.Close()
		return coremetrics.NopRecorder{}
	}
	return rec
}

// RecordRoomFetch writes a room_fetch point.
func (s *InfluxRecorder) RecordRoomFetch(ev coremetrics.RoomFetchEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	status := "ok"
	errText := ""
	if ev.Err != nil {
		status = "failed"
		errText = ev.Err.Error()
	}
	p := write.NewPointWithMeasurement("room_fetch").
		AddTag("room_id", ev.RoomID).
		AddTag("status", status).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		AddField("entries", ev.Entries).
		AddField("skipped", ev.Skipped).
		SetTime(time.Now())
	if errText != "" {
		p = p.AddField("error", errText)
	}
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRun writes an exporter_run point.
func (s *InfluxRecorder) RecordRun(ev coremetrics.RunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("exporter_run").
		AddField("rooms", ev.Rooms).
		AddField("failed", ev.Failed).
		AddField("workdays", ev.Workdays).
		AddField("duration_s", round3(ev.Duration.Seconds())).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxRecorder) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
