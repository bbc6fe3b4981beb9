// Package config reads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"etaboard/internal/domain"
)

type Config struct {
	LogLevel        slog.Level
	HTTPAddr        string        `validate:"required"`
	ReadTimeout     time.Duration `validate:"gt=0"`
	WriteTimeout    time.Duration `validate:"gt=0"`
	ShutdownTimeout time.Duration `validate:"gt=0"`

	ETAAPIURL          string        `validate:"required,url"`
	ETAFetchTimeout    time.Duration `validate:"gt=0"`
	ETAFetchRetries    int           `validate:"gte=0,lte=10"`
	PollInterval       time.Duration `validate:"gte=1s"`
	WatchTTL           time.Duration `validate:"gtefield=PollInterval"`
	MaxConcurrentFetch int           `validate:"gte=1,lte=256"`

	RouteDBURL            string        `validate:"required,url"`
	RouteDBUpdateInterval time.Duration `validate:"gte=1m"`
	RouteDBCacheDir       string        `validate:"required"`

	RedisEnabled  bool
	RedisAddr     string `validate:"required_if=RedisEnabled true"`
	RedisPassword string
	RedisDB       int           `validate:"gte=0"`
	CacheTTL      time.Duration `validate:"gt=0"`

	RateLimitPerWindow int           `validate:"gte=1"`
	RateLimitWindow    time.Duration `validate:"gt=0"`
	RateLimitWhitelist []string      `validate:"dive,ip"`
	CORSOrigins        []string      `validate:"min=1"`

	PhrasesFile string
	Display     domain.DisplayOptions
}

// Load reads an optional .env file, then the environment, and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(getEnv("ENV_FILE", ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{
		LogLevel:        getLogLevelEnv("LOG_LEVEL", slog.LevelInfo),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		ReadTimeout:     getDurationEnv("READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    getDurationEnv("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),

		ETAAPIURL:          getEnv("ETA_API_URL", "http://localhost:9090/v1/eta"),
		ETAFetchTimeout:    getDurationEnv("ETA_FETCH_TIMEOUT", 10*time.Second),
		ETAFetchRetries:    getIntEnv("ETA_FETCH_RETRIES", 3),
		PollInterval:       getDurationEnv("POLL_INTERVAL", 30*time.Second),
		WatchTTL:           getDurationEnv("WATCH_TTL", 5*time.Minute),
		MaxConcurrentFetch: getIntEnv("MAX_CONCURRENT_FETCH", 8),

		RouteDBURL:            getEnv("ROUTEDB_URL", "https://data.hkbus.app/routeFareList.min.json"),
		RouteDBUpdateInterval: getDurationEnv("ROUTEDB_UPDATE_INTERVAL", 24*time.Hour),
		RouteDBCacheDir:       getEnv("ROUTEDB_CACHE_DIR", defaultCacheDir()),

		RedisEnabled:  getBoolEnv("REDIS_ENABLED", false),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),
		CacheTTL:      getDurationEnv("CACHE_TTL", 48*time.Hour),

		RateLimitPerWindow: getIntEnv("RATE_LIMIT_PER_WINDOW", 120),
		RateLimitWindow:    getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
		RateLimitWhitelist: getCSVEnv("RATE_LIMIT_WHITELIST"),
		CORSOrigins:        getCSVEnvDefault("CORS_ORIGINS", []string{"*"}),

		PhrasesFile: getEnv("PHRASES_FILE", ""),
		Display: domain.DisplayOptions{
			Language:     domain.Language(getEnv("DEFAULT_LANGUAGE", string(domain.DefaultLanguage))),
			TimeFormat:   domain.TimeFormat(getEnv("DEFAULT_TIME_FORMAT", string(domain.TimeFormatDiff))),
			PlatformMode: domain.PlatformMode(getEnv("DEFAULT_PLATFORM_MODE", string(domain.PlatformText))),
			ShowStopName: getBoolEnv("DEFAULT_SHOW_STOP_NAME", false),
		},
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir + "/etaboard"
	}
	return os.TempDir() + "/etaboard"
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getLogLevelEnv(key string, defaultVal slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}

	switch strings.ToLower(v) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return defaultVal
	}
}

func getCSVEnv(key string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}

	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			result = append(result, t)
		}
	}
	return result
}

func getCSVEnvDefault(key string, defaultVal []string) []string {
	if v := getCSVEnv(key); len(v) > 0 {
		return v
	}
	return defaultVal
}
