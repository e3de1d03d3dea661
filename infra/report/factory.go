package report

import (
	"github.com/kilianp07/roomload/config"
	"github.com/kilianp07/roomload/core/factory"
	"github.com/kilianp07/roomload/core/report"
)

// init registers the built-in report sinks.
func init() {
	_ = report.RegisterSink("xlsx", func(conf map[string]any) (report.Sink, error) {
		var c FileConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewXLSXSink(c.Path)
	})
	_ = report.RegisterSink("csv", func(conf map[string]any) (report.Sink, error) {
		var c CSVConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewCSVSink(c)
	})
	_ = report.RegisterSink("json", func(conf map[string]any) (report.Sink, error) {
		var c FileConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewJSONSink(c.Path)
	})
	_ = report.RegisterSink("table", func(conf map[string]any) (report.Sink, error) {
		var c FileConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewTableSink(c.Path), nil
	})
	_ = report.RegisterSink("html", func(conf map[string]any) (report.Sink, error) {
		var c HTMLConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewHTMLSink(c)
	})
	_ = report.RegisterSink("sqlite", func(conf map[string]any) (report.Sink, error) {
		var c FileConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewSQLiteSink(c.Path)
	})
	_ = report.RegisterSink("influx", func(conf map[string]any) (report.Sink, error) {
		var c config.InfluxConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSink(c)
	})
	_ = report.RegisterSink("mqtt", func(conf map[string]any) (report.Sink, error) {
		var c MQTTConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewMQTTSink(c)
	})
	_ = report.RegisterSink("s3", func(conf map[string]any) (report.Sink, error) {
		var c S3Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewS3Sink(c)
	})
}
