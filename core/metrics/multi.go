package metrics

import "errors"

// MultiRecorder forwards events to all recorders that support them.
type MultiRecorder struct {
	Recorders []Recorder
}

// NewMultiRecorder creates a MultiRecorder.
func NewMultiRecorder(recs ...Recorder) *MultiRecorder {
	return &MultiRecorder{Recorders: recs}
}

func (m *MultiRecorder) RecordRoomFetch(ev RoomFetchEvent) error {
	var errs []error
	for _, r := range m.Recorders {
		errs = append(errs, r.RecordRoomFetch(ev))
	}
	return errors.Join(errs...)
}

func (m *MultiRecorder) RecordInFlight(n int) error {
	var errs []error
	for _, r := range m.Recorders {
		if fr, ok := r.(InFlightRecorder); ok {
			errs = append(errs, fr.RecordInFlight(n))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiRecorder) RecordRun(ev RunEvent) error {
	var errs []error
	for _, r := range m.Recorders {
		if rr, ok := r.(RunRecorder); ok {
			errs = append(errs, rr.RecordRun(ev))
		}
	}
	return errors.Join(errs...)
}
