package config

// MetricsConfig controls export of run metrics. Both targets are optional.
type MetricsConfig struct {
	// Textfile is written in Prometheus text format after the run.
	Textfile string `json:"textfile"`
	// Pushgateway is the base URL of a Prometheus Pushgateway.
	Pushgateway string `json:"pushgateway" validate:"omitempty,url"`
	Job         string `json:"job"`
	// Influx receives per-room fetch and run events when configured.
	Influx InfluxConfig `json:"influx"`
}

// SetDefaults applies fallback values.
func (c *MetricsConfig) SetDefaults() {
	if c.Job == "" {
		c.Job = "roomload"
	}
}

// Enabled reports whether any export target is configured.
func (c MetricsConfig) Enabled() bool {
	return c.Textfile != "" || c.Pushgateway != ""
}

// InfluxConfig points at an InfluxDB v2 bucket.
type InfluxConfig struct {
	URL    string `json:"url" validate:"omitempty,url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// Enabled reports whether a URL is configured.
func (c InfluxConfig) Enabled() bool { return c.URL != "" }
