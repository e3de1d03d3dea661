// Package occupancy turns raw room schedules into per-slot occupancy
// fractions.
//
// Normalize parses the semi-structured date and lesson fields of a single
// entry without ever failing: unparseable values become absent fields.
// ComputePercentages then counts, per lesson slot, the distinct workdays on
// which the slot was occupied and divides by the size of the workday set.
package occupancy
