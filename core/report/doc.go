// Package report assembles the final occupancy report and defines the sinks
// that persist it. Sinks are created by name from configuration through a
// registry; infra/report registers the built-in ones.
package report
