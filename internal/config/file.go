package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/trellodump/trellodump/internal/flagx"
)

// DefaultFileName is the credentials file looked up in the working
// directory when no -c/-config flag is given.
const DefaultFileName = "trellodump.json"

// fileConfig is the DTO for the JSON credentials file. Empty fields leave
// the current Config value untouched.
type fileConfig struct {
	APIKey            string `json:"api_key,omitempty"`
	APISecret         string `json:"api_secret,omitempty"`
	ReturnURL         string `json:"return_url,omitempty"`
	AccessToken       string `json:"access_token,omitempty"`
	AccessTokenSecret string `json:"access_token_secret,omitempty"`

	APIBaseURL  string `json:"api_base_url,omitempty"`
	ExportDir   string `json:"export_dir,omitempty"`
	BoardFilter string `json:"board_filter,omitempty"`

	S3Endpoint        string `json:"s3_endpoint,omitempty"`
	S3Region          string `json:"s3_region,omitempty"`
	S3Bucket          string `json:"s3_bucket,omitempty"`
	S3AccessKeyID     string `json:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `json:"s3_secret_access_key,omitempty"`
}

// Store reads and writes the JSON credentials file. It is the only place
// access tokens are persisted; the authenticator writes through it exactly
// once, after a successful handshake.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

func resolvePath() string {
	if p := flagx.ConfigFileFlag(); p != "" {
		return p
	}
	return DefaultFileName
}

// Load overlays cfg with values from the credentials file. A missing file
// is not an error (first run, or env-only configuration).
func (s *Store) Load(cfg *Config) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read credentials file %s: %w", s.path, err)
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse credentials file %s: %w", s.path, err)
	}

	overlay(&cfg.APIKey, fc.APIKey)
	overlay(&cfg.APISecret, fc.APISecret)
	overlay(&cfg.ReturnURL, fc.ReturnURL)
	overlay(&cfg.AccessToken, fc.AccessToken)
	overlay(&cfg.AccessTokenSecret, fc.AccessTokenSecret)
	overlay(&cfg.APIBaseURL, fc.APIBaseURL)
	overlay(&cfg.ExportDir, fc.ExportDir)
	overlay(&cfg.BoardFilter, fc.BoardFilter)
	overlay(&cfg.S3Endpoint, fc.S3Endpoint)
	overlay(&cfg.S3Region, fc.S3Region)
	overlay(&cfg.S3Bucket, fc.S3Bucket)
	overlay(&cfg.S3AccessKeyID, fc.S3AccessKeyID)
	overlay(&cfg.S3SecretAccessKey, fc.S3SecretAccessKey)
	return nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// SaveTokens persists the access token pair into the credentials file,
// preserving any fields already stored there, and updates cfg in place.
// The file is created when configuration so far came from env only.
func (s *Store) SaveTokens(cfg *Config, token, secret string) error {
	var fc fileConfig
	if data, err := os.ReadFile(s.path); err == nil {
		if err := json.Unmarshal(data, &fc); err != nil {
			return fmt.Errorf("parse credentials file %s: %w", s.path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read credentials file %s: %w", s.path, err)
	}

	fc.AccessToken = token
	fc.AccessTokenSecret = secret

	out, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, append(out, '\n'), 0o600); err != nil {
		return fmt.Errorf("write credentials file %s: %w", s.path, err)
	}

	cfg.AccessToken = token
	cfg.AccessTokenSecret = secret
	return nil
}
