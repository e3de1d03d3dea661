package config

import (
	"fmt"

	"github.com/kilianp07/roomload/core/factory"
)

// ReportConfig lists the sinks the report is written to.
type ReportConfig struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
}

// Validate checks that every sink names a type.
func (c ReportConfig) Validate() error {
	for i, s := range c.Sinks {
		if s.Type == "" {
			return fmt.Errorf("report.sinks[%d]: type is required", i)
		}
	}
	return nil
}

// SinkConfigs returns the configured sinks, or a single xlsx sink writing to
// output when none is configured.
func (c *Config) SinkConfigs() []factory.ModuleConfig {
	if len(c.Report.Sinks) > 0 {
		return c.Report.Sinks
	}
	return []factory.ModuleConfig{{Type: "xlsx", Conf: map[string]any{"path": c.Output}}}
}
