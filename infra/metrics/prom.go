package metrics

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	coremetrics "github.com/kilianp07/roomload/core/metrics"
)

// PromRecorder records room fetches and runs as Prometheus metrics.
type PromRecorder struct {
	gatherer prometheus.Gatherer
	fetches  *prometheus.CounterVec
	entries  prometheus.Counter
	skipped  prometheus.Counter
	duration prometheus.Histogram
	inFlight prometheus.Gauge
	rooms    *prometheus.GaugeVec
	lastRun  prometheus.Gauge
	runTime  prometheus.Gauge
}

// NewPromRecorder registers the exporter metrics on a fresh registry.
func NewPromRecorder() (*PromRecorder, error) {
	return NewPromRecorderWithRegistry(prometheus.NewRegistry())
}

// NewPromRecorderWithRegistry registers metrics on reg. A nil registry
// defaults to the global Prometheus registry.
func NewPromRecorderWithRegistry(reg *prometheus.Registry) (*PromRecorder, error) {
	var r prometheus.Registerer = reg
	var g prometheus.Gatherer = reg
	if reg == nil {
		r, g = prometheus.DefaultRegisterer, prometheus.DefaultGatherer
	}

	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roomload_room_fetch_total",
		Help: "Processed rooms by outcome",
	}, []string{"status"})
	entries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roomload_schedule_entries_total",
		Help: "Raw schedule entries returned by the provider",
	})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roomload_schedule_entries_skipped_total",
		Help: "Schedule entries without a usable date or lesson number",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "roomload_room_fetch_duration_seconds",
		Help:    "Time spent fetching and aggregating one room",
		Buckets: prometheus.DefBuckets,
	})
	inFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "roomload_rooms_in_flight",
		Help: "Room fetches currently admitted",
	})
	rooms := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "roomload_last_run_rooms",
		Help: "Rooms in the last run by outcome",
	}, []string{"status"})
	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "roomload_last_run_timestamp_seconds",
		Help: "Completion time of the last run",
	})
	runTime := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "roomload_last_run_duration_seconds",
		Help: "Duration of the last run",
	})

	var err error
	if fetches, err = register(r, fetches); err != nil {
		return nil, err
	}
	if entries, err = register(r, entries); err != nil {
		return nil, err
	}
	if skipped, err = register(r, skipped); err != nil {
		return nil, err
	}
	if duration, err = register(r, duration); err != nil {
		return nil, err
	}
	if inFlight, err = register(r, inFlight); err != nil {
		return nil, err
	}
	if rooms, err = register(r, rooms); err != nil {
		return nil, err
	}
	if lastRun, err = register(r, lastRun); err != nil {
		return nil, err
	}
	if runTime, err = register(r, runTime); err != nil {
		return nil, err
	}

	return &PromRecorder{
		gatherer: g,
		fetches:  fetches,
		entries:  entries,
		skipped:  skipped,
		duration: duration,
		inFlight: inFlight,
		rooms:    rooms,
		lastRun:  lastRun,
		runTime:  runTime,
	}, nil
}

// register adds c to reg, returning the existing collector when an
// identical one is already registered.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return c, err
		}
		existing, ok := are.ExistingCollector.(C)
		if !ok {
			return c, fmt.Errorf("existing collector has wrong type %T", are.ExistingCollector)
		}
		return existing, nil
	}
	return c, nil
}

// RecordRoomFetch counts a processed room.
func (p *PromRecorder) RecordRoomFetch(ev coremetrics.RoomFetchEvent) error {
	status := "ok"
	if ev.Err != nil {
		status = "failed"
	}
	p.fetches.WithLabelValues(status).Inc()
	p.entries.Add(float64(ev.Entries))
	p.skipped.Add(float64(ev.Skipped))
	p.duration.Observe(ev.Duration.Seconds())
	return nil
}

// RecordInFlight sets the in-flight gauge.
func (p *PromRecorder) RecordInFlight(n int) error {
	p.inFlight.Set(float64(n))
	return nil
}

// RecordRun stores the summary of a completed run.
func (p *PromRecorder) RecordRun(ev coremetrics.RunEvent) error {
	p.rooms.WithLabelValues("ok").Set(float64(ev.Rooms - ev.Failed))
	p.rooms.WithLabelValues("failed").Set(float64(ev.Failed))
	p.lastRun.Set(float64(ev.Time.Unix()))
	p.runTime.Set(ev.Duration.Seconds())
	return nil
}

// Gatherer exposes the registry backing the recorder.
func (p *PromRecorder) Gatherer() prometheus.Gatherer { return p.gatherer }

// WriteTextfile writes all metrics in the text exposition format, suitable
// for the node_exporter textfile collector.
func (p *PromRecorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, p.gatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Push sends all metrics to a Pushgateway under job.
func (p *PromRecorder) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(p.gatherer).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
