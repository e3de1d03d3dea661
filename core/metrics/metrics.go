package metrics

import "time"

// RoomFetchEvent describes the outcome of processing one room.
type RoomFetchEvent struct {
	RoomID   string
	RoomName string
	Duration time.Duration
	// Entries is the number of raw schedule entries returned by the provider.
	Entries int
	// Skipped counts entries without a usable date or lesson slot.
	Skipped int
	Err     error
}

// Recorder records per-room fetch events.
type Recorder interface {
	RecordRoomFetch(ev RoomFetchEvent) error
}

// InFlightRecorder tracks how many room fetches are currently admitted.
type InFlightRecorder interface {
	RecordInFlight(n int) error
}

// RunEvent summarizes a completed run.
type RunEvent struct {
	Rooms    int
	Failed   int
	Workdays int
	Duration time.Duration
	Time     time.Time
}

// RunRecorder records completed runs.
type RunRecorder interface {
	RecordRun(ev RunEvent) error
}

// NopRecorder implements every recorder interface with no-op methods.
type NopRecorder struct{}

func (NopRecorder) RecordRoomFetch(RoomFetchEvent) error { return nil }
func (NopRecorder) RecordInFlight(int) error             { return nil }
func (NopRecorder) RecordRun(RunEvent) error             { return nil }
