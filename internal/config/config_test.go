package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewConfig_Defaults(t *testing.T) {
	c := NewConfig()

	if c.Interval() != 600*time.Second {
		t.Fatalf("Interval()=%v, want 10m", c.Interval())
	}
	if c.Backend != BackendCLI || c.CrabBin != "crab" || c.LogFile != "crab_status.log" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CRAB_MONITOR_INTERVAL", "5")
	t.Setenv("CRAB_BACKEND", BackendAPI)
	t.Setenv("CRAB_API_URL", "http://localhost:8443")
	t.Setenv("CRAB_API_TIMEOUT", "12")
	t.Setenv("CRAB_TEMPLATE", "crab.yaml")
	t.Setenv("CRAB_LOG_FILE", "other.log")

	c := NewConfig()
	c.LoadFromEnvironment()

	if c.IntervalSeconds != 5 || c.Backend != BackendAPI || c.APIURL != "http://localhost:8443" {
		t.Fatalf("environment not applied: %+v", c)
	}
	if c.APITimeout() != 12*time.Second || c.TemplatePath != "crab.yaml" || c.LogFile != "other.log" {
		t.Fatalf("environment not applied: %+v", c)
	}
}

func TestLoadFromEnvironment_IgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("CRAB_MONITOR_INTERVAL", "soon")

	c := NewConfig()
	c.LoadFromEnvironment()

	if c.IntervalSeconds != 600 {
		t.Fatalf("IntervalSeconds=%d, want default 600", c.IntervalSeconds)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := NewConfig()
		c.Datasets = []string{"/A/B/C"}
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
		ok      bool
	}{
		{name: "valid", mutate: func(c *Config) {}, ok: true},
		{name: "no datasets", mutate: func(c *Config) { c.Datasets = nil }, wantErr: ErrNoDatasets},
		{name: "zero interval", mutate: func(c *Config) { c.IntervalSeconds = 0 }, wantErr: ErrInvalidInterval},
		{name: "negative interval", mutate: func(c *Config) { c.IntervalSeconds = -1 }, wantErr: ErrInvalidInterval},
		{name: "empty dataset", mutate: func(c *Config) { c.Datasets = []string{"/A/B/C", ""} }},
		{name: "unknown backend", mutate: func(c *Config) { c.Backend = "grpc" }},
		{name: "api without url", mutate: func(c *Config) { c.Backend = BackendAPI }},
		{name: "api with url", mutate: func(c *Config) { c.Backend = BackendAPI; c.APIURL = "http://x" }, ok: true},
		{name: "empty crab bin", mutate: func(c *Config) { c.CrabBin = "" }},
		{name: "empty log file", mutate: func(c *Config) { c.LogFile = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()

			if tt.ok {
				if err != nil {
					t.Fatalf("Validate() err=%v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() err=nil, want non-nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() err=%v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadEnvFiles_CurrentDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("CRAB_TEST_DOTENV=loaded\n"), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Chdir(dir)
	t.Setenv("CRAB_TEST_DOTENV", "")
	os.Unsetenv("CRAB_TEST_DOTENV")

	loaded := LoadEnvFiles()

	if len(loaded) == 0 || loaded[0] != ".env" {
		t.Fatalf("LoadEnvFiles()=%v, want .env first", loaded)
	}
	if got := os.Getenv("CRAB_TEST_DOTENV"); got != "loaded" {
		t.Fatalf("CRAB_TEST_DOTENV=%q, want loaded", got)
	}
}
