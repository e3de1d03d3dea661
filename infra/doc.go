// Package infra contains technical adapters: the timetable HTTP client,
// report sinks, metrics exporters, MQTT and error monitoring. These
// packages depend only on the interfaces defined in the core packages.
package infra
