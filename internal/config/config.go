package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/v0xg/puppetrec/internal/codegen"
)

// EnvPrefix prefixes every environment variable, e.g. PUPPETREC_HEADLESS.
const EnvPrefix = "PUPPETREC"

// Config holds application settings plus the generator options gathered from the
// options file and the environment.
type Config struct {
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogDev      bool   `envconfig:"LOG_DEV" default:"false"`
	Address     string `envconfig:"ADDRESS" default:"127.0.0.1:8123"`
	DBPath      string `envconfig:"DB_PATH"`
	OptionsFile string `envconfig:"OPTIONS_FILE"`

	// FileOptions and EnvOptions are applied over the defaults in that order.
	FileOptions codegen.Overrides `ignored:"true"`
	EnvOptions  codegen.Overrides `ignored:"true"`
}

// Load reads .env (if present), the environment and the options file. A non-empty
// optionsFile takes precedence over PUPPETREC_OPTIONS_FILE.
func Load(optionsFile string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, &cfg.EnvOptions); err != nil {
		return nil, fmt.Errorf("failed to load options from environment: %w", err)
	}

	if optionsFile != "" {
		cfg.OptionsFile = optionsFile
	}
	if cfg.OptionsFile != "" {
		overrides, err := ReadOptionsFile(cfg.OptionsFile)
		if err != nil {
			return nil, err
		}
		cfg.FileOptions = overrides
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Address:  "127.0.0.1:8123",
	}
}

// ReadOptionsFile parses a YAML (or JSON) file of generator options.
func ReadOptionsFile(path string) (codegen.Overrides, error) {
	var overrides codegen.Overrides

	data, err := os.ReadFile(path)
	if err != nil {
		return overrides, fmt.Errorf("failed to read options file: %w", err)
	}
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return overrides, fmt.Errorf("failed to parse options file %s: %w", path, err)
	}
	return overrides, nil
}

// Options resolves the generator options: defaults, then the options file, then the
// environment, then extra (typically command-line flags or a request body).
func (c *Config) Options(extra ...codegen.Overrides) codegen.Options {
	layers := append([]codegen.Overrides{c.FileOptions, c.EnvOptions}, extra...)
	return codegen.Resolve(layers...)
}

// Validate checks settings that would otherwise fail later.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}
	if _, err := NewAttributeMatcher(c.Options()); err != nil {
		return err
	}
	return nil
}
