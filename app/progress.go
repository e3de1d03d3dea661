package app

import (
	coremetrics "github.com/kilianp07/roomload/core/metrics"
	"github.com/kilianp07/roomload/internal/eventbus"
)

// busRecorder publishes room events so that a single goroutine can report
// progress without interleaving output from concurrent workers.
type busRecorder struct {
	bus *eventbus.Bus[coremetrics.RoomFetchEvent]
}

func (r busRecorder) RecordRoomFetch(ev coremetrics.RoomFetchEvent) error {
	r.bus.Publish(ev)
	return nil
}

// watchProgress reports every event of sub until the bus is closed. The
// returned channel is closed once all events have been handled.
func (s *Service) watchProgress(sub <-chan coremetrics.RoomFetchEvent, total int) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		n := 0
		for ev := range sub {
			n++
			if ev.Err != nil {
				s.printf("[WARN] Room %s '%s': %v\n", ev.RoomID, ev.RoomName, ev.Err)
			}
			s.log.Debugf("processed %d/%d rooms (room %s, %d entries)", n, total, ev.RoomID, ev.Entries)
		}
	}()
	return done
}
