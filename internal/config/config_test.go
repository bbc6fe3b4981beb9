package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etaboard/internal/domain"
)

func noEnvFile(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoad_Defaults(t *testing.T) {
	noEnvFile(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, domain.DefaultDisplayOptions(), cfg.Display)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.RedisEnabled)
}

func TestLoad_FromEnvironment(t *testing.T) {
	noEnvFile(t)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("POLL_INTERVAL", "15s")
	t.Setenv("MAX_CONCURRENT_FETCH", "4")
	t.Setenv("DEFAULT_LANGUAGE", "en")
	t.Setenv("DEFAULT_PLATFORM_MODE", "symbol")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RATE_LIMIT_WHITELIST", "127.0.0.1,::1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 15*time.Second, cfg.PollInterval)
	assert.Equal(t, 4, cfg.MaxConcurrentFetch)
	assert.Equal(t, domain.LangEN, cfg.Display.Language)
	assert.Equal(t, domain.PlatformSymbol, cfg.Display.PlatformMode)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, []string{"127.0.0.1", "::1"}, cfg.RateLimitWhitelist)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unsupported language", "DEFAULT_LANGUAGE", "fr"},
		{"unknown time format", "DEFAULT_TIME_FORMAT", "relative"},
		{"poll interval too short", "POLL_INTERVAL", "100ms"},
		{"watch ttl below poll interval", "WATCH_TTL", "5s"},
		{"bad eta url", "ETA_API_URL", "not a url"},
		{"bad whitelist entry", "RATE_LIMIT_WHITELIST", "localhost"},
		{"zero concurrency", "MAX_CONCURRENT_FETCH", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			noEnvFile(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("# local overrides\nHTTP_ADDR=:9191\n"), 0o644))
	t.Setenv("ENV_FILE", path)
	t.Cleanup(func() { os.Unsetenv("HTTP_ADDR") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9191", cfg.HTTPAddr)
}

func TestGetLogLevelEnv(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Setenv("TEST_LEVEL", tt.in)
			assert.Equal(t, tt.want, getLogLevelEnv("TEST_LEVEL", slog.LevelInfo))
		})
	}
}
