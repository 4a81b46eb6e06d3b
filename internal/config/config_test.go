package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets the variables a developer machine may export.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"NEXI_ADDR", "NEXI_LOG_LEVEL", "NEXI_LOG_FORMAT", "NEXI_FLOW_PATH", "NEXI_BLACKLIST_PATHS",
		"NEXI_REDIS_ADDR", "NEXI_QUOTA_USER_DAILY", "NEXI_QUOTA_ANONYMOUS_DAILY", "NEXI_MAX_INPUT_SIZE",
		"GEMINI_API_KEY", "GOOGLE_API_KEY", "NEXI_GEMINI_API_KEY",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
	assert.Equal(t, []string{"data/blacklist.json", "data/blacklist.csv"}, cfg.BlacklistPaths)
	assert.Equal(t, "China", cfg.DefaultOrigin)
	assert.Equal(t, 4096, cfg.MaxInputSize)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 24*time.Hour, cfg.Redis.ConversationTTL)
	assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.Model)
	assert.Equal(t, 90*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, 20, cfg.Quota.UserDaily)
	assert.Equal(t, 3, cfg.Quota.AnonymousDaily)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("NEXI_ADDR=:9999\nNEXI_REDIS_ADDR=localhost:6379\nGOOGLE_API_KEY=from-google\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("NEXI_ADDR")
		os.Unsetenv("NEXI_REDIS_ADDR")
		os.Unsetenv("GOOGLE_API_KEY")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "from-google", cfg.Gemini.APIKey, "GOOGLE_API_KEY is the fallback key")
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEXI_ADDR", ":7000")
	t.Setenv("GEMINI_API_KEY", "primary")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NEXI_ADDR=:9999\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, "primary", cfg.Gemini.APIKey)
}

func TestLoad_MissingEnvFileIsFine(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	assert.NoError(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"level", "NEXI_LOG_LEVEL", "loud", "invalid log level"},
		{"format", "NEXI_LOG_FORMAT", "xml", "invalid log format"},
		{"input size", "NEXI_MAX_INPUT_SIZE", "0", "max input size"},
		{"quota", "NEXI_QUOTA_USER_DAILY", "-1", "quota limits"},
		{"not a number", "NEXI_QUOTA_USER_DAILY", "many", "failed to process environment config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)
			_, err := Load("")
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)

	l, err = ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)
}
