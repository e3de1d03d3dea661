// Package metrics defines the recorder interfaces the fetch pipeline reports
// to. Recorders are optional: a Recorder only has to handle per-room fetch
// events, while InFlightRecorder and RunRecorder are detected with type
// assertions. NewMultiRecorder fans events out to several recorders.
package metrics
