package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/roomload/config"
	"github.com/kilianp07/roomload/core/calendar"
	"github.com/kilianp07/roomload/core/fetch"
	coremetrics "github.com/kilianp07/roomload/core/metrics"
	coremon "github.com/kilianp07/roomload/core/monitoring"
	"github.com/kilianp07/roomload/core/model"
	"github.com/kilianp07/roomload/core/report"
	"github.com/kilianp07/roomload/infra/logger"
	"github.com/kilianp07/roomload/infra/metrics"
	"github.com/kilianp07/roomload/infra/monitoring"
	"github.com/kilianp07/roomload/infra/provider"
	_ "github.com/kilianp07/roomload/infra/report"
	"github.com/kilianp07/roomload/internal/eventbus"
)

// Provider is the timetable source used by the exporter.
type Provider interface {
	FetchRooms(ctx context.Context) ([]model.Room, error)
	fetch.ScheduleProvider
}

// Result describes a finished export.
type Result struct {
	Report *report.Report
	// Location is where the sinks stored the report; empty when no sink
	// reports a location.
	Location string
}

// Service runs room occupancy exports.
type Service struct {
	cfg      *config.Config
	provider Provider
	prom     *metrics.PromRecorder
	recorder *coremetrics.MultiRecorder
	monitor  coremon.Monitor
	closers  []func()
	log      logger.Logger
	out      io.Writer
	now      func() time.Time
	runID    func() string
}

// Option customizes a Service.
type Option func(*Service)

// WithProvider replaces the HTTP timetable client.
func WithProvider(p Provider) Option { return func(s *Service) { s.provider = p } }

// WithOutput redirects user-facing progress messages (stdout by default).
func WithOutput(w io.Writer) Option { return func(s *Service) { s.out = w } }

// WithLogger replaces the service logger.
func WithLogger(l logger.Logger) Option { return func(s *Service) { s.log = l } }

// WithMonitor replaces the Sentry monitor built from the configuration.
func WithMonitor(m coremon.Monitor) Option { return func(s *Service) { s.monitor = m } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// New creates a Service from a validated configuration.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	s := &Service{
		cfg:   cfg,
		log:   logger.New("exporter"),
		out:   os.Stdout,
		now:   time.Now,
		runID: uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	if s.provider == nil {
		client, err := provider.NewClient(cfg.Provider)
		if err != nil {
			return nil, fmt.Errorf("provider client: %w", err)
		}
		s.provider = client
	}

	prom, err := metrics.NewPromRecorder()
	if err != nil {
		return nil, fmt.Errorf("prom recorder: %w", err)
	}
	s.prom = prom
	if s.monitor == nil {
		mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
		if err != nil {
			return nil, fmt.Errorf("sentry: %w", err)
		}
		s.monitor = mon
	}
	recorders := []coremetrics.Recorder{prom, coremon.FetchErrorRecorder{Monitor: s.monitor}}
	if cfg.Metrics.Influx.Enabled() {
		rec := metrics.NewInfluxRecorderWithFallback(ctx, cfg.Metrics.Influx)
		if ir, ok := rec.(*metrics.InfluxRecorder); ok {
			s.closers = append(s.closers, ir.Close)
		}
		recorders = append(recorders, rec)
	}
	s.recorder = coremetrics.NewMultiRecorder(recorders...)
	return s, nil
}

// Metrics exposes the Prometheus recorder of the service.
func (s *Service) Metrics() *metrics.PromRecorder { return s.prom }

// Export runs one export: it computes the workdays of the configured
// range, fetches every room schedule, aggregates occupancy and writes the
// report to the configured sinks. calendar.ErrNoWorkdays is returned,
// without writing anything, when the range has no workday.
func (s *Service) Export(ctx context.Context) (*Result, error) {
	res, err := s.export(ctx)
	if err != nil && !IsGracefulExit(err) {
		s.monitor.CaptureException(err, map[string]string{
			"begin": s.cfg.Range.Begin,
			"end":   s.cfg.Range.End,
		})
	}
	return res, err
}

func (s *Service) export(ctx context.Context) (*Result, error) {
	start := s.now()
	rng, err := calendar.ParseRange(s.cfg.Range.Begin, s.cfg.Range.End)
	if err != nil {
		return nil, err
	}
	workdays := calendar.NewWorkdaySet(rng)
	if workdays.Empty() {
		s.printf("No workdays in the given range. Exiting.\n")
		return nil, calendar.ErrNoWorkdays
	}
	s.printf("Date range: %s .. %s | Workdays: %d\n",
		rng.Begin.Format(time.DateOnly), rng.End.Format(time.DateOnly), workdays.Len())

	sink, err := report.NewSink(s.cfg.SinkConfigs())
	if err != nil {
		return nil, err
	}
	defer func() {
		if c, ok := sink.(io.Closer); ok {
			if err := c.Close(); err != nil {
				s.log.Errorf("close sink: %v", err)
			}
		}
	}()

	rooms, err := s.provider.FetchRooms(ctx)
	if err != nil {
		return nil, err
	}
	if n := s.cfg.MaxRooms; n > 0 && len(rooms) > n {
		rooms = rooms[:n]
	}
	s.printf("Rooms to process: %d\n", len(rooms))

	bus := eventbus.New[coremetrics.RoomFetchEvent]()
	done := s.watchProgress(bus.Subscribe(len(rooms)), len(rooms))
	orch := fetch.New(s.provider, fetch.Options{
		MaxConcurrency: s.cfg.Provider.MaxConcurrency,
		Logger:         s.log,
		Recorder:       coremetrics.NewMultiRecorder(s.recorder, busRecorder{bus: bus}),
	})
	dates := fetch.DateText{Begin: calendar.Format(rng.Begin), End: calendar.Format(rng.End)}
	rows := orch.BuildResults(ctx, rooms, dates, workdays)
	bus.Close()
	<-done
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("export interrupted: %w", err)
	}

	rep := report.New(s.runID(), rng, workdays.Len(), rows, s.now())
	if err := sink.Write(ctx, rep); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	s.logSummary(rep)

	if err := s.recorder.RecordRun(coremetrics.RunEvent{
		Rooms:    rep.Summary.Rooms,
		Failed:   rep.Summary.Failed,
		Workdays: rep.Workdays,
		Duration: s.now().Sub(start),
		Time:     rep.GeneratedAt,
	}); err != nil {
		s.log.Warnf("record run: %v", err)
	}
	s.exportMetrics(ctx)

	res := &Result{Report: rep}
	if l, ok := sink.(report.Locator); ok {
		res.Location = l.Location()
	}
	s.printf("Done. Report saved to: %s\n", res.Location)
	return res, nil
}

func (s *Service) logSummary(r *report.Report) {
	busiest := r.Summary.Busiest()
	s.log.Infof("run %s: %d rooms, %d failed, %d workdays; busiest lesson %d (mean %s)",
		r.RunID, r.Summary.Rooms, r.Summary.Failed, r.Workdays, busiest.Slot, report.FormatPercent(busiest.Mean))
}

// exportMetrics writes the textfile and pushes to the gateway. Failures are
// logged; the report has already been written at this point.
func (s *Service) exportMetrics(ctx context.Context) {
	mc := s.cfg.Metrics
	if mc.Textfile != "" {
		if err := s.prom.WriteTextfile(mc.Textfile); err != nil {
			s.log.Warnf("%v", err)
		}
	}
	if mc.Pushgateway != "" {
		if err := s.prom.Push(ctx, mc.Pushgateway, mc.Job); err != nil {
			s.log.Warnf("%v", err)
		}
	}
}

func (s *Service) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(s.out, format, args...); err != nil {
		s.log.Errorf("write output: %v", err)
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	for _, c := range s.closers {
		c()
	}
	if !s.monitor.Flush(2 * time.Second) {
		s.log.Warnf("sentry: events still buffered at shutdown")
	}
	return nil
}

// IsGracefulExit reports whether err ends a run without being a failure.
func IsGracefulExit(err error) bool {
	return errors.Is(err, calendar.ErrNoWorkdays)
}
