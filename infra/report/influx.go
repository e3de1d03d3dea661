package report

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/roomload/config"
	"github.com/kilianp07/roomload/core/model"
	"github.com/kilianp07/roomload/core/report"
)

// InfluxSink writes one room_occupancy point per room and slot, timestamped
// with the report generation time.
type InfluxSink struct {
	url      string
	bucket   string
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
}

// NewInfluxSink creates a sink for the given bucket.
func NewInfluxSink(cfg config.InfluxConfig) (*InfluxSink, error) {
	if cfg.URL == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("influx sink: url and bucket are required")
	}
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 10 * time.Second}))
	return &InfluxSink{
		url:      base,
		bucket:   cfg.Bucket,
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
	}, nil
}

func (s *InfluxSink) Location() string { return s.url + "#" + s.bucket }

func (s *InfluxSink) Write(ctx context.Context, r *report.Report) error {
	points := make([]*write.Point, 0, len(r.Rows)*model.LessonSlots)
	for _, row := range r.Rows {
		for slot, v := range row.Occupancy.Map() {
			p := write.NewPointWithMeasurement("room_occupancy").
				AddTag("room_id", row.RoomID).
				AddTag("room_name", row.RoomName).
				AddTag("slot", strconv.Itoa(slot)).
				AddTag("run_id", r.RunID).
				AddField("fraction", math.Round(v*1000)/1000).
				AddField("failed", row.Failed).
				SetTime(r.GeneratedAt)
			points = append(points, p)
		}
	}
	if len(points) == 0 {
		return nil
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// Close releases the client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}
