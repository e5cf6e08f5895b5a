// Package config loads the process-level settings of the dashboard server.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"bond_dashboard/internal/platform/cache"
)

// Config holds settings that are not owned by a single platform package.
type Config struct {
	HTTPAddr         string        // listen address (e.g., ":8080")
	GinMode          string        // debug, release or test
	LogLevel         slog.Level    // minimum level of the JSON logger
	CacheTTL         time.Duration // lifetime of cached query results
	DBConnectTimeout time.Duration // how long startup keeps retrying the database
	ShutdownTimeout  time.Duration // grace period for in-flight requests
	CORSOrigins      []string      // allowed browser origins for /api; empty disables CORS
}

const (
	defaultHTTPAddr         = ":8080"
	defaultDBConnectTimeout = 30 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
)

// Load reads the configuration from environment variables.
// 値の形式が不正な場合はエラーを返します。
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:         getenv("HTTP_ADDR", defaultHTTPAddr),
		GinMode:          os.Getenv("GIN_MODE"),
		LogLevel:         slog.LevelInfo,
		CacheTTL:         cache.DefaultTTL,
		DBConnectTimeout: defaultDBConnectTimeout,
		ShutdownTimeout:  defaultShutdownTimeout,
		CORSOrigins:      splitList(os.Getenv("CORS_ALLOW_ORIGINS")),
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		lvl, err := ParseLevel(v)
		if err != nil {
			return Config{}, err
		}
		cfg.LogLevel = lvl
	}

	var err error
	if cfg.CacheTTL, err = durationEnv("BOND_CACHE_TTL", cfg.CacheTTL); err != nil {
		return Config{}, err
	}
	if cfg.DBConnectTimeout, err = durationEnv("DB_CONNECT_TIMEOUT", cfg.DBConnectTimeout); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseLevel converts debug|info|warn|error into a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(s)))); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return lvl, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, v)
	}
	return d, nil
}

// splitList splits a comma separated value and drops empty items.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
