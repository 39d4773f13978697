package config

import (
	"os"
	"strconv"
)

// Environment variable names follow the original .env contract of the
// exporter; the credentials file uses snake_case equivalents.
const (
	envKey         = "TRELLO_KEY"
	envSecret      = "TRELLO_SECRET"
	envReturnURL   = "TRELLO_RETURN_URL"
	envToken       = "TRELLO_TOKEN"
	envTokenSecret = "TRELLO_TOKEN_SECRET"
	envAPIURL      = "TRELLO_API_URL"
	envBoard       = "TRELLO_BOARD"
	envDebug       = "TRELLO_DEBUG"

	envS3Endpoint  = "TRELLO_S3_ENDPOINT"
	envS3Region    = "TRELLO_S3_REGION"
	envS3Bucket    = "TRELLO_S3_BUCKET"
	envS3AccessKey = "TRELLO_S3_ACCESS_KEY"
	envS3SecretKey = "TRELLO_S3_SECRET_KEY"
)

// applyEnv overlays cfg with values from the environment. Unset variables
// leave the current value untouched.
func applyEnv(cfg *Config) {
	overlay(&cfg.APIKey, os.Getenv(envKey))
	overlay(&cfg.APISecret, os.Getenv(envSecret))
	overlay(&cfg.ReturnURL, os.Getenv(envReturnURL))
	overlay(&cfg.AccessToken, os.Getenv(envToken))
	overlay(&cfg.AccessTokenSecret, os.Getenv(envTokenSecret))
	overlay(&cfg.APIBaseURL, os.Getenv(envAPIURL))
	overlay(&cfg.BoardFilter, os.Getenv(envBoard))

	if v := os.Getenv(envDebug); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}

	overlay(&cfg.S3Endpoint, os.Getenv(envS3Endpoint))
	overlay(&cfg.S3Region, os.Getenv(envS3Region))
	overlay(&cfg.S3Bucket, os.Getenv(envS3Bucket))
	overlay(&cfg.S3AccessKeyID, os.Getenv(envS3AccessKey))
	overlay(&cfg.S3SecretAccessKey, os.Getenv(envS3SecretKey))
}
