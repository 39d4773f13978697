// Package config handles runtime settings and the credential store for the
// exporter: defaults, JSON credentials file, environment overlay, and
// command-line flags, in that order of precedence.
package config

import (
	"errors"
	"time"
)

// Config holds everything a run needs.
//
// APIKey/APISecret/ReturnURL are required at start. AccessToken and
// AccessTokenSecret stay empty until the first successful handshake; once
// persisted they are durable across runs and the handshake is skipped.
type Config struct {
	APIKey            string
	APISecret         string
	ReturnURL         string
	AccessToken       string
	AccessTokenSecret string

	APIBaseURL  string
	ExportDir   string
	SummaryFile string

	BoardFilter         string
	DownloadAttachments bool
	Debug               bool

	MaxRetries     uint64
	RetryBaseDelay time.Duration

	S3Endpoint        string
	S3Region          string
	S3Bucket          string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ReturnURL = "oob"
	c.APIBaseURL = "https://api.trello.com/1"
	c.ExportDir = "trello_exports"
	c.SummaryFile = "trello_export.csv"
	c.DownloadAttachments = true
	c.MaxRetries = 5
	c.RetryBaseDelay = 1 * time.Second
	c.S3Region = "us-east-1"
}

// HasTokens reports whether a durable access token pair is present, in
// which case the interactive handshake is skipped entirely.
func (c *Config) HasTokens() bool {
	return c.AccessToken != "" && c.AccessTokenSecret != ""
}

// Validate checks the fields required before any network call.
func (c *Config) Validate() error {
	if c.APIKey == "" || c.APISecret == "" {
		return errors.New("TRELLO_KEY and TRELLO_SECRET must be set (env or credentials file)")
	}
	if c.ReturnURL == "" {
		return errors.New("TRELLO_RETURN_URL must not be empty (use \"oob\" for PIN entry)")
	}
	return nil
}

// Load builds a Config by applying defaults, then overlaying the JSON
// credentials file (if any), environment variables, and command-line
// flags. The returned Store points at the credentials file so the
// authenticator can persist tokens after the handshake.
func Load() (*Config, *Store, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	store := NewStore(resolvePath())
	if err := store.Load(cfg); err != nil {
		return nil, nil, err
	}
	applyEnv(cfg)
	if err := parseFlags(cfg); err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}
