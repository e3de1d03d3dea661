// Package report provides the report.Sink implementations: spreadsheet,
// text and chart files as well as database, broker and object store
// targets. Importing the package registers every sink type with
// report.RegisterSink.
package report
