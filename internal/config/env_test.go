package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyEnv_OverlaysSetVariables(t *testing.T) {
	t.Setenv("TRELLO_KEY", "env-key")
	t.Setenv("TRELLO_SECRET", "env-secret")
	t.Setenv("TRELLO_TOKEN", "env-token")
	t.Setenv("TRELLO_TOKEN_SECRET", "env-token-secret")
	t.Setenv("TRELLO_API_URL", "http://127.0.0.1:8080/1")
	t.Setenv("TRELLO_BOARD", "5f67b24e3bf4a71838a837cf")
	t.Setenv("TRELLO_DEBUG", "true")

	cfg := &Config{}
	cfg.LoadDefaults()
	applyEnv(cfg)

	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "env-secret", cfg.APISecret)
	assert.Equal(t, "env-token", cfg.AccessToken)
	assert.Equal(t, "env-token-secret", cfg.AccessTokenSecret)
	assert.Equal(t, "http://127.0.0.1:8080/1", cfg.APIBaseURL)
	assert.Equal(t, "5f67b24e3bf4a71838a837cf", cfg.BoardFilter)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "oob", cfg.ReturnURL, "unset variable keeps the default")
}

func TestApplyEnv_EnvWinsOverFileLayer(t *testing.T) {
	t.Setenv("TRELLO_KEY", "env-key")

	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.APIKey = "file-key"
	applyEnv(cfg)

	assert.Equal(t, "env-key", cfg.APIKey)
}

func TestApplyEnv_IgnoresBadDebugValue(t *testing.T) {
	t.Setenv("TRELLO_DEBUG", "maybe")

	cfg := &Config{}
	cfg.LoadDefaults()
	applyEnv(cfg)

	assert.False(t, cfg.Debug)
}
