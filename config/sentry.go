package config

// SentryConfig defines settings for Sentry error monitoring. Reporting is
// disabled when DSN is empty.
type SentryConfig struct {
	DSN         string `json:"dsn"`
	Environment string `json:"environment"`
	Release     string `json:"release"`
	Debug       bool   `json:"debug"`
}
