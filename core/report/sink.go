package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kilianp07/roomload/core/factory"
)

var sinkRegistry = factory.NewRegistry[Sink]()

// RegisterSink adds a sink factory identified by name.
func RegisterSink(name string, f factory.Factory[Sink]) error {
	return sinkRegistry.Register(name, f)
}

// SinkNames lists the registered sink types.
func SinkNames() []string { return sinkRegistry.Names() }

// NewSink creates the sink described by cfgs. Several configurations are
// combined into a MultiSink.
func NewSink(cfgs []factory.ModuleConfig) (Sink, error) {
	if len(cfgs) == 0 {
		return nil, errors.New("no report sink configured")
	}
	sinks := make([]Sink, 0, len(cfgs))
	for _, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			_ = NewMultiSink(sinks...).Close()
			return nil, fmt.Errorf("sink %s: %w", c.Type, err)
		}
		sinks = append(sinks, s)
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return NewMultiSink(sinks...), nil
}

// MultiSink writes the report to every sink.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// Write writes to all sinks even if some fail and returns the joined errors.
func (m *MultiSink) Write(ctx context.Context, r *Report) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.Write(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Location joins the locations of the sinks that report one.
func (m *MultiSink) Location() string {
	var locs []string
	for _, s := range m.Sinks {
		if l, ok := s.(Locator); ok && l.Location() != "" {
			locs = append(locs, l.Location())
		}
	}
	return strings.Join(locs, ", ")
}

// Close closes every sink implementing io.Closer.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if c, ok := s.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
