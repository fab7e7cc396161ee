package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"rivals-tracker/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	APIKey           string
	APIVersion       string
	PublicAPIVersion string
	UpstreamBaseURL  string
	ProxyBaseURL     string
	ServerPort       string
	LogLevel         string

	StoreBackend  string
	DBPath        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	FreshnessWindow  time.Duration
	UpdateLockWindow time.Duration
}

// Load reads .env (if present) and the environment. A missing API key is not fatal:
// the proxy reports it per request.
func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	port := getEnv("SERVER_PORT", "8080")
	cfg := &Config{
		APIKey:           getEnv("MARVEL_RIVALS_API_KEY", ""),
		APIVersion:       getEnv("MARVEL_RIVALS_API_VERSION", constants.DefaultAPIVersion),
		PublicAPIVersion: getEnv("NEXT_PUBLIC_MARVEL_RIVALS_API_VERSION", constants.DefaultAPIVersion),
		UpstreamBaseURL:  strings.TrimRight(getEnv("UPSTREAM_BASE_URL", constants.DefaultUpstreamBaseURL), "/"),
		ProxyBaseURL:     strings.TrimRight(getEnv("PROXY_BASE_URL", "http://localhost:"+port), "/"),
		ServerPort:       port,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		StoreBackend:     strings.ToLower(getEnv("STORE_BACKEND", constants.StoreSQLite)),
		DBPath:           getEnv("DB_PATH", "rivals.db"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt(logger, "REDIS_DB", 0),
		FreshnessWindow:  getEnvDuration(logger, "FRESHNESS_WINDOW", constants.FreshnessWindow),
		UpdateLockWindow: getEnvDuration(logger, "UPDATE_LOCK_WINDOW", constants.UpdateLockWindow),
	}

	if cfg.APIKey == "" {
		logger.Warn().Msg("MARVEL_RIVALS_API_KEY is not set, proxy requests will fail")
	}

	logger.Info().
		Str("api_version", cfg.APIVersion).
		Str("upstream", cfg.UpstreamBaseURL).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("store", cfg.StoreBackend).
		Dur("freshness_window", cfg.FreshnessWindow).
		Dur("update_lock_window", cfg.UpdateLockWindow).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(logger zerolog.Logger, key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Str("value", v).Msg("invalid integer, using default")
		return fallback
	}
	return n
}

// getEnvDuration accepts Go durations ("45m") or a bare number of minutes.
func getEnvDuration(logger zerolog.Logger, key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Minute
	}
	logger.Warn().Str("key", key).Str("value", v).Msg("invalid duration, using default")
	return fallback
}

var Module = fx.Provide(Load)
