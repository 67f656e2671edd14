package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidConfig  = errors.New("invalid config")
)

// Output formats, they define how LaTeX of each expression is wrapped.
const (
	FormatPlain    = "plain"    // x^{2}
	FormatInline   = "inline"   // $x^{2}$
	FormatDisplay  = "display"  // $$x^{2}$$
	FormatEquation = "equation" // \begin{equation} x^{2} \end{equation}
)

// Log formats.
const (
	LogText = "text"
	LogJSON = "json"
)

// MaxWorkers bounds explicit worker count.
const MaxWorkers = 256

// Config holds converter settings.
type Config struct {
	Workers int          `yaml:"workers"` // 0 = from GOMAXPROCS
	Timeout string       `yaml:"timeout"` // per expression, Go duration
	Output  OutputConfig `yaml:"output"`
	Log     LogConfig    `yaml:"log"`
}

// OutputConfig defines how results are printed.
type OutputConfig struct {
	Format string `yaml:"format"`
}

// LogConfig defines diagnostics.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns configuration used when no file is given.
func Default() *Config {
	return &Config{
		Timeout: "10s",
		Output:  OutputConfig{Format: FormatPlain},
		Log:     LogConfig{Level: "warn", Format: LogText},
	}
}

// Load reads YAML file at path on top of defaults. Unknown fields are rejected.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}

		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML on top of defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values which YAML decoding can't check.
func (c *Config) Validate() error {
	if c.Workers < 0 || c.Workers > MaxWorkers {
		return fmt.Errorf("%w: workers must be between 0 and %d, got %d", ErrInvalidConfig, MaxWorkers, c.Workers)
	}

	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}

	switch c.Output.Format {
	case FormatPlain, FormatInline, FormatDisplay, FormatEquation:
	default:
		return fmt.Errorf("%w: unknown output format %q", ErrInvalidConfig, c.Output.Format)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Log.Level)
	}

	switch c.Log.Format {
	case LogText, LogJSON:
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Log.Format)
	}

	return nil
}

// TimeoutDuration parses Timeout, the value must be positive.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: timeout: %v", ErrInvalidConfig, err)
	}

	if d <= 0 {
		return 0, fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidConfig, c.Timeout)
	}

	return d, nil
}
