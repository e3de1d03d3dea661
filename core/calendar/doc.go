// Package calendar parses the configured date range and enumerates the
// workdays it contains. Dates carry no time component and are normalized to
// midnight UTC so they can be compared and used as map keys.
package calendar
