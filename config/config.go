/*
Package config loads runtime settings from the environment.

SOURCES (later wins):
  1. Built-in defaults
  2. A .env file in the working directory, if present
  3. Process environment
  4. Command-line flags (applied by cmd/server after Load)

KEYS:
  APP_PORT       HTTP port                     (8080)
  APP_ENV        development | production      (development)
  LOG_LEVEL      debug | info | warn | error   (info)
  DB_PATH        SQLite file, or :memory:      (attendance.db)
  DEFAULT_SHIFT  sat-wed | sat-thu             (sat-wed)
  CORS_ORIGINS   comma-separated origins       (*)
  UPLOAD_MAX_MB  largest accepted punch feed   (10)
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/warp/attendance-engine/shift"
)

type Config struct {
	App          AppConfig
	DB           DatabaseConfig
	DefaultShift shift.Policy
	CORSOrigins  []string
	UploadMaxMB  int
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

type DatabaseConfig struct {
	Path string
}

// Load reads .env (when present) and the environment, then validates.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	config := &Config{}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	config.DB = DatabaseConfig{
		Path: getEnv("DB_PATH", "attendance.db"),
	}

	policy, err := shift.Parse(getEnv("DEFAULT_SHIFT", string(shift.SatWed)))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_SHIFT: %w", err)
	}
	config.DefaultShift = policy

	config.CORSOrigins = getEnvSlice("CORS_ORIGINS", "*")

	uploadMax, err := strconv.Atoi(getEnv("UPLOAD_MAX_MB", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_MAX_MB: %w", err)
	}
	config.UploadMaxMB = uploadMax

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("APP_PORT out of range: %d", c.App.Port)
	}
	if _, err := ParseLevel(c.App.LogLevel); err != nil {
		return err
	}
	if c.DB.Path == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if !c.DefaultShift.Valid() {
		return fmt.Errorf("DEFAULT_SHIFT: %w", shift.ErrUnknownPolicy)
	}
	if c.UploadMaxMB <= 0 {
		return fmt.Errorf("UPLOAD_MAX_MB must be positive")
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
}

// UploadMaxBytes is UploadMaxMB in bytes.
func (c *Config) UploadMaxBytes() int64 {
	return int64(c.UploadMaxMB) << 20
}

// SlogLevel maps LOG_LEVEL to a slog.Level. Validate has already run.
func (c *Config) SlogLevel() slog.Level {
	level, _ := ParseLevel(c.App.LogLevel)
	return level
}

// ParseLevel accepts debug, info, warn (or warning) and error.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL: %q", s)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key, fallback string) []string {
	var result []string
	for _, part := range strings.Split(getEnv(key, fallback), ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
