package config

import "time"

// DefaultBaseURL is the public timetable export endpoint.
const DefaultBaseURL = "https://dekanat.nung.edu.ua/cgi-bin/timetable_export.cgi"

// ProviderConfig configures the timetable API client.
type ProviderConfig struct {
	BaseURL string `json:"base_url" validate:"required,url"`
	// MaxConcurrency caps the number of room schedules fetched at once.
	MaxConcurrency int    `json:"max_concurrency" validate:"gte=1,lte=64"`
	TimeoutSeconds int    `json:"timeout_seconds" validate:"gte=1"`
	UserAgent      string `json:"user_agent"`
	// Encoding is the charset requested from and used to decode responses.
	Encoding string `json:"encoding"`
	// RequestsPerSecond throttles requests when positive.
	RequestsPerSecond float64 `json:"requests_per_second" validate:"gte=0"`
}

// SetDefaults applies fallback values.
func (c *ProviderConfig) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = 8
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 30
	}
	if c.UserAgent == "" {
		c.UserAgent = "RoomLoadExporter/1.0"
	}
	if c.Encoding == "" {
		c.Encoding = "WINDOWS-1251"
	}
}

// Timeout returns the per-request timeout.
func (c ProviderConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MockServerConfig configures the local timetable mock server.
type MockServerConfig struct {
	Address string `json:"address"`
	// Fixture is a YAML or JSON file with rooms and their schedules.
	Fixture  string `json:"fixture"`
	Encoding string `json:"encoding"`
	// Gzip compresses responses when the client accepts it.
	Gzip bool `json:"gzip"`
	// FailRooms lists room identifiers whose schedule requests return 500.
	FailRooms []string `json:"fail_rooms"`
}

// SetDefaults applies fallback values.
func (c *MockServerConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":9090"
	}
	if c.Encoding == "" {
		c.Encoding = "WINDOWS-1251"
	}
}
