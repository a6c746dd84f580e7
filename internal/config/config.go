package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	BackendCLI = "cli"
	BackendAPI = "api"
)

var (
	ErrNoDatasets      = errors.New("at least one dataset is required")
	ErrInvalidInterval = errors.New("polling interval must be a positive number of seconds")
)

// Config holds all application configuration
type Config struct {
	Datasets []string

	// Polling settings
	IntervalSeconds int

	// Job manager settings
	Backend           string
	CrabBin           string
	APIURL            string
	APITimeoutSeconds int

	// Task settings
	TemplatePath string

	// Output settings
	LogFile string
	TUI     bool
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		IntervalSeconds:   600,
		Backend:           BackendCLI,
		CrabBin:           "crab",
		APITimeoutSeconds: 30,
		LogFile:           "crab_status.log",
	}
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() {
	if interval := os.Getenv("CRAB_MONITOR_INTERVAL"); interval != "" {
		if i, err := strconv.Atoi(interval); err == nil {
			c.IntervalSeconds = i
		}
	}

	if backend := os.Getenv("CRAB_BACKEND"); backend != "" {
		c.Backend = backend
	}

	if bin := os.Getenv("CRAB_BIN"); bin != "" {
		c.CrabBin = bin
	}

	if apiURL := os.Getenv("CRAB_API_URL"); apiURL != "" {
		c.APIURL = apiURL
	}

	if timeout := os.Getenv("CRAB_API_TIMEOUT"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil {
			c.APITimeoutSeconds = t
		}
	}

	if template := os.Getenv("CRAB_TEMPLATE"); template != "" {
		c.TemplatePath = template
	}

	if logFile := os.Getenv("CRAB_LOG_FILE"); logFile != "" {
		c.LogFile = logFile
	}
}

// Interval returns the polling interval as a duration
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// APITimeout returns the HTTP client timeout
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutSeconds) * time.Second
}

// ValidateMonitor checks the settings needed to talk to the job manager
// and poll a task.
func (c *Config) ValidateMonitor() error {
	if c.IntervalSeconds <= 0 {
		return fmt.Errorf("%w, got: %d", ErrInvalidInterval, c.IntervalSeconds)
	}

	switch c.Backend {
	case BackendCLI:
		if c.CrabBin == "" {
			return fmt.Errorf("crab binary cannot be empty")
		}
	case BackendAPI:
		if c.APIURL == "" {
			return fmt.Errorf("api url is required when backend is %s", BackendAPI)
		}
		if c.APITimeoutSeconds <= 0 {
			return fmt.Errorf("api timeout must be positive, got: %d", c.APITimeoutSeconds)
		}
	default:
		return fmt.Errorf("unsupported backend: %s", c.Backend)
	}

	if c.LogFile == "" {
		return fmt.Errorf("log file cannot be empty")
	}

	return nil
}

// Validate checks if the configuration is valid for a submit-and-monitor run
func (c *Config) Validate() error {
	if len(c.Datasets) == 0 {
		return ErrNoDatasets
	}

	for i, dataset := range c.Datasets {
		if dataset == "" {
			return fmt.Errorf("dataset at index %d is empty", i)
		}
	}

	return c.ValidateMonitor()
}
