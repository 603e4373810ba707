package config

import (
	"fmt"
	"os"
	"time"
)

// TokenEnvName names the environment variable holding the bearer token.
const TokenEnvName = "SECURAPASS_TOKEN"

// Job modes. ModeAsync submits and polls; ModeSync blocks on the run
// endpoints.
const (
	ModeAsync = "async"
	ModeSync  = "sync"
)

// S3 points reports at an S3-compatible bucket. Uploads are off while Bucket
// is empty.
type S3 struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// Config holds runtime settings for the SecuraPass CLI.
type Config struct {
	CrackerBaseURL string
	ManagerBaseURL string
	// AuthToken is sent as a bearer token when an entry is revealed.
	AuthToken string

	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration

	PollInterval    time.Duration
	PollMaxAttempts int
	PollDeadline    time.Duration

	// Mode is the default for crack and hash commands, ModeAsync or ModeSync.
	Mode string

	CacheDSN   string
	ReportsDir string
	LogLevel   string

	S3 S3
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.CrackerBaseURL = "http://127.0.0.1:5000"
	c.ManagerBaseURL = "http://127.0.0.1:8000"
	c.RequestTimeout = 2 * time.Minute
	c.RetryAttempts = 1
	c.RetryDelay = 500 * time.Millisecond
	c.PollInterval = time.Second
	c.PollMaxAttempts = 0
	c.PollDeadline = 10 * time.Minute
	c.Mode = ModeAsync
	c.CacheDSN = "securapass.db"
	c.ReportsDir = "reports"
	c.LogLevel = "info"
	c.S3.Region = "us-east-1"
}

func (c *Config) Validate() error {
	if c.Mode != ModeAsync && c.Mode != ModeSync {
		return fmt.Errorf("mode must be %q or %q, got %q", ModeAsync, ModeSync, c.Mode)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.PollMaxAttempts < 0 || c.RetryAttempts < 0 {
		return fmt.Errorf("attempt counts must not be negative")
	}
	if c.CacheDSN == "" {
		return fmt.Errorf("cache path is empty")
	}
	return nil
}

// LoadConfig builds a Config from defaults, then the JSON file named by -c
// or -config, then SECURAPASS_TOKEN, then flags. Later sources win.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if token := os.Getenv(TokenEnvName); token != "" {
		cfg.AuthToken = token
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
