// Package monitoring reports errors to an external tracker.
package monitoring

import (
	"time"

	"github.com/kilianp07/roomload/core/metrics"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	// Flush waits until buffered events are sent or timeout elapses.
	Flush(timeout time.Duration) bool
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Flush(time.Duration) bool                  { return true }

// FetchErrorRecorder reports failed room fetches to a Monitor.
type FetchErrorRecorder struct {
	Monitor Monitor
}

func (r FetchErrorRecorder) RecordRoomFetch(ev metrics.RoomFetchEvent) error {
	if ev.Err == nil || r.Monitor == nil {
		return nil
	}
	r.Monitor.CaptureException(ev.Err, map[string]string{
		"room_id":   ev.RoomID,
		"room_name": ev.RoomName,
	})
	return nil
}
