package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ember_test")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("STREAK_TIMEZONE", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://app.example.com , https://staging.example.com ,")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr, "default addr")
	assert.Equal(t, "postgres://localhost/ember_test", cfg.DatabaseURL)
	assert.Equal(t, "Asia/Kolkata", cfg.StreakTimezone, "default streak timezone")
	assert.Equal(t, []string{"https://app.example.com", "https://staging.example.com"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.CORSAllowCredentials)
}

func TestGetenv(t *testing.T) {
	t.Setenv("EMBER_TEST_KEY", "  value  ")
	assert.Equal(t, "value", getenv("EMBER_TEST_KEY", "def"))

	t.Setenv("EMBER_TEST_KEY", "")
	assert.Equal(t, "def", getenv("EMBER_TEST_KEY", "def"))
}
