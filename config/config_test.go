package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/shift"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"APP_PORT", "APP_ENV", "LOG_LEVEL", "DB_PATH", "DEFAULT_SHIFT", "CORS_ORIGINS", "UPLOAD_MAX_MB"} {
		t.Setenv(key, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "attendance.db", cfg.DB.Path)
	assert.Equal(t, shift.SatWed, cfg.DefaultShift)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, int64(10<<20), cfg.UploadMaxBytes())
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.False(t, cfg.IsProduction())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_ENV", "Production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DB_PATH", ":memory:")
	t.Setenv("DEFAULT_SHIFT", " SAT-THU ")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, ":memory:", cfg.DB.Path)
	assert.Equal(t, shift.SatThu, cfg.DefaultShift)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"APP_PORT", "http"},
		{"APP_PORT", "70000"},
		{"LOG_LEVEL", "loud"},
		{"DEFAULT_SHIFT", "mon-fri"},
		{"UPLOAD_MAX_MB", "0"},
		{"UPLOAD_MAX_MB", "ten"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
