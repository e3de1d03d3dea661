package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes environment overrides. Nested keys are separated by a
// double underscore: ROOMLOAD_PROVIDER__BASE_URL sets provider.base_url.
const EnvPrefix = "ROOMLOAD_"

// DotEnvFile is loaded into the environment before overrides are read, if
// it exists.
var DotEnvFile = ".env"

// Config is the full run configuration.
type Config struct {
	Range    RangeConfig    `json:"range"`
	Output   string         `json:"output"`
	MaxRooms int            `json:"max_rooms" validate:"gte=0"`
	Provider ProviderConfig `json:"provider"`
	Report   ReportConfig   `json:"report"`
	Metrics  MetricsConfig  `json:"metrics"`
	Logging  LoggingConfig  `json:"logging"`
	Sentry   SentryConfig   `json:"sentry"`
}

// RangeConfig holds the requested dates in day.month.year form.
type RangeConfig struct {
	Begin string `json:"begin" validate:"required"`
	End   string `json:"end" validate:"required"`
}

// LoggingConfig selects the minimum log level and an optional rotating log
// file receiving JSON records in addition to stdout.
type LoggingConfig struct {
	Level      string `json:"level" validate:"omitempty,oneof=debug info warn error"`
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `json:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `json:"max_age_days" validate:"gte=0"`
	Compress   bool   `json:"compress"`
}

// Load reads the configuration file at path (YAML or JSON), then applies
// environment overrides. An empty path skips the file. Defaults are applied
// but the result is not validated, so callers can still merge command-line
// flags before calling Validate.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		var parser koanf.Parser
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	return &cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// SetDefaults fills unset optional fields.
func (c *Config) SetDefaults() {
	if c.Output == "" {
		c.Output = "rooms-load.xlsx"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	c.Provider.SetDefaults()
	c.Metrics.SetDefaults()
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return c.Report.Validate()
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}
