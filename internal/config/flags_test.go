package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "board filter and export dir",
			args: []string{"bin", "-b", "abc123", "-o", "out"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "abc123", cfg.BoardFilter)
				assert.Equal(t, "out", cfg.ExportDir)
			},
		},
		{
			name: "debug and no-attachments",
			args: []string{"bin", "-debug", "-no-attachments"},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.Debug)
				assert.False(t, cfg.DownloadAttachments)
			},
		},
		{
			name: "no flags keeps defaults",
			args: []string{"bin"},
			check: func(t *testing.T, cfg *Config) {
				assert.Empty(t, cfg.BoardFilter)
				assert.Equal(t, "trello_exports", cfg.ExportDir)
				assert.True(t, cfg.DownloadAttachments)
			},
		},
		{
			name: "foreign flags are ignored",
			args: []string{"bin", "-c", "creds.json", "-b", "abc123"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "abc123", cfg.BoardFilter)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			cfg := &Config{}
			cfg.LoadDefaults()
			require.NoError(t, parseFlags(cfg))
			tt.check(t, cfg)
		})
	}
}
