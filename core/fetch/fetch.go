package fetch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/kilianp07/roomload/core/calendar"
	"github.com/kilianp07/roomload/core/logger"
	"github.com/kilianp07/roomload/core/metrics"
	"github.com/kilianp07/roomload/core/model"
	"github.com/kilianp07/roomload/core/occupancy"
)

// DefaultMaxConcurrency is used when Options.MaxConcurrency is not positive.
const DefaultMaxConcurrency = 8

// ScheduleProvider returns the raw schedule of one room between two
// day.month.year dates.
type ScheduleProvider interface {
	FetchRoomSchedule(ctx context.Context, roomID, begin, end string) ([]model.ScheduleEntry, error)
}

// ProviderFunc adapts a function to ScheduleProvider.
type ProviderFunc func(ctx context.Context, roomID, begin, end string) ([]model.ScheduleEntry, error)

func (f ProviderFunc) FetchRoomSchedule(ctx context.Context, roomID, begin, end string) ([]model.ScheduleEntry, error) {
	return f(ctx, roomID, begin, end)
}

// DateText holds the range bounds exactly as they are sent to the provider.
type DateText struct {
	Begin string
	End   string
}

// RoomError wraps a failure that happened while processing a single room.
type RoomError struct {
	RoomID   string
	RoomName string
	Err      error
}

func (e *RoomError) Error() string {
	return fmt.Sprintf("room %s %q: %v", e.RoomID, e.RoomName, e.Err)
}

func (e *RoomError) Unwrap() error { return e.Err }

// Options configures an Orchestrator.
type Options struct {
	MaxConcurrency int
	Logger         logger.Logger
	Recorder       metrics.Recorder
}

// Orchestrator processes rooms concurrently.
type Orchestrator struct {
	provider       ScheduleProvider
	maxConcurrency int
	log            logger.Logger
	recorder       metrics.Recorder
	inFlight       atomic.Int64
}

// New creates an Orchestrator. Nil logger and recorder default to no-ops.
func New(p ScheduleProvider, opts Options) *Orchestrator {
	o := &Orchestrator{
		provider:       p,
		maxConcurrency: opts.MaxConcurrency,
		log:            opts.Logger,
		recorder:       opts.Recorder,
	}
	if o.maxConcurrency <= 0 {
		o.maxConcurrency = DefaultMaxConcurrency
	}
	if o.log == nil {
		o.log = logger.NopLogger{}
	}
	if o.recorder == nil {
		o.recorder = metrics.NopRecorder{}
	}
	return o
}

// MaxConcurrency returns the admission limit in effect.
func (o *Orchestrator) MaxConcurrency() int { return o.maxConcurrency }

// BuildResults processes every room and waits for all of them. The returned
// slice has one row per room in completion order.
func (o *Orchestrator) BuildResults(ctx context.Context, rooms []model.Room, dates DateText, workdays calendar.WorkdaySet) []model.OccupancyRow {
	sem := semaphore.NewWeighted(int64(o.maxConcurrency))
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make([]model.OccupancyRow, 0, len(rooms))
	)
	for _, room := range rooms {
		wg.Add(1)
		go func(room model.Room) {
			defer wg.Done()
			row := o.processRoom(ctx, sem, room, dates, workdays)
			mu.Lock()
			results = append(results, row)
			mu.Unlock()
		}(room)
	}
	wg.Wait()
	return results
}

func (o *Orchestrator) processRoom(ctx context.Context, sem *semaphore.Weighted, room model.Room, dates DateText, workdays calendar.WorkdaySet) model.OccupancyRow {
	if err := sem.Acquire(ctx, 1); err != nil {
		return o.fail(room, err)
	}
	defer sem.Release(1)
	o.trackInFlight(1)
	defer o.trackInFlight(-1)

	start := time.Now()
	occ, entries, skipped, err := o.compute(ctx, room, dates, workdays)
	ev := metrics.RoomFetchEvent{
		RoomID:   room.ID,
		RoomName: room.Name,
		Duration: time.Since(start),
		Entries:  entries,
		Skipped:  skipped,
		Err:      err,
	}
	if rerr := o.recorder.RecordRoomFetch(ev); rerr != nil {
		o.log.Errorf("metrics error: %v", rerr)
	}
	if err != nil {
		return o.fail(room, err)
	}
	if skipped > 0 {
		o.log.Debugw("skipped unparseable schedule entries", map[string]any{
			"room_id": room.ID,
			"skipped": skipped,
			"entries": entries,
		})
	}
	return model.OccupancyRow{RoomID: room.ID, RoomName: room.Name, Occupancy: occ}
}

// compute runs the fetch, normalize and aggregate steps. A panic in any of
// them is returned as an error.
func (o *Orchestrator) compute(ctx context.Context, room model.Room, dates DateText, workdays calendar.WorkdaySet) (occ model.Occupancy, entries, skipped int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	raw, err := o.provider.FetchRoomSchedule(ctx, room.ID, dates.Begin, dates.End)
	if err != nil {
		return occ, 0, 0, err
	}
	normalized, skipped := occupancy.NormalizeAll(raw)
	return occupancy.ComputePercentages(normalized, workdays), len(raw), skipped, nil
}

func (o *Orchestrator) fail(room model.Room, err error) model.OccupancyRow {
	rerr := &RoomError{RoomID: room.ID, RoomName: room.Name, Err: err}
	o.log.Warnw("room processing failed", map[string]any{
		"room_id":   room.ID,
		"room_name": room.Name,
		"error":     err.Error(),
	})
	return model.FallbackRow(room, rerr)
}

func (o *Orchestrator) trackInFlight(delta int64) {
	n := o.inFlight.Add(delta)
	if fr, ok := o.recorder.(metrics.InFlightRecorder); ok {
		if err := fr.RecordInFlight(int(n)); err != nil {
			o.log.Errorf("metrics error: %v", err)
		}
	}
}
