package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete pipeline configuration. Values come from
// environment variables (PIPELINE_ prefix) with an optional YAML
// overlay; environment wins over file values.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http" envconfig:"HTTP"`
	Period  PeriodConfig  `yaml:"period" envconfig:"PERIOD"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Portal  PortalConfig  `yaml:"portal" envconfig:"PORTAL"`
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
}

// HTTPConfig controls the retry client shared by every extractor.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"60s" validate:"gt=0"`
	MaxAttempts  int           `yaml:"max_attempts" envconfig:"MAX_ATTEMPTS" default:"3" validate:"gte=1"`
	RetryDelay   time.Duration `yaml:"retry_delay" envconfig:"RETRY_DELAY" default:"5s" validate:"gte=0"`
	RequestPause time.Duration `yaml:"request_pause" envconfig:"REQUEST_PAUSE" default:"1s" validate:"gte=0"`
}

// PeriodConfig is the collection window in exercise years. The window
// is an explicit parameter so tests and partial backfills can use
// arbitrary ranges.
type PeriodConfig struct {
	StartYear int `yaml:"start_year" envconfig:"START_YEAR" default:"2015" validate:"gte=2000"`
	EndYear   int `yaml:"end_year" envconfig:"END_YEAR" default:"2025" validate:"gtefield=StartYear"`
}

// PathsConfig contains the data directory layout.
type PathsConfig struct {
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR" default:"dados_nordeste"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"both" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:""`
}

// PortalConfig carries the Portal da Transparência credentials. The
// key is optional: without it the portal module is skipped with a
// warning instead of failing the run.
type PortalConfig struct {
	APIKey string `yaml:"api_key" envconfig:"API_KEY"`
}

// ServerConfig configures the dashboard HTTP server.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load builds the configuration from the optional YAML file at
// configFile (empty string skips the file) and the environment.
func Load(configFile string) (*Config, error) {
	var cfg Config

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			data, err := os.ReadFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := envconfig.Process("PIPELINE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Years returns the configured exercise years in ascending order.
func (p PeriodConfig) Years() []int {
	years := make([]int, 0, p.EndYear-p.StartYear+1)
	for y := p.StartYear; y <= p.EndYear; y++ {
		years = append(years, y)
	}
	return years
}

// String renders the covered period for the run-metadata record.
func (p PeriodConfig) String() string {
	return fmt.Sprintf("%d-%d", p.StartYear, p.EndYear)
}
