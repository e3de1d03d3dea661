// Package provider talks to the university timetable export endpoint.
//
// Client lists rooms and fetches per-room schedules. ServerMock serves the
// same query interface from a fixture file for local runs and tests.
package provider
