package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DEBUG", "FRONTEND_ORIGIN", "API_KEYS", "TICK_INTERVAL",
		"MAIN_INITIAL_TIME", "MAIN_INCREMENT", "SIDE_ATTACKER_TIME", "SIDE_DEFENDER_TIME",
		"OTEL_ENDPOINT", "OTEL_ENABLED",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 15*time.Minute, cfg.MainInitialTime)
	assert.Equal(t, 2*time.Second, cfg.MainIncrement)
	assert.Equal(t, 5*time.Minute, cfg.SideAttackerTime)
	assert.Equal(t, time.Minute, cfg.SideDefenderTime)
	assert.True(t, cfg.OTelEnabled)
	assert.Empty(t, cfg.APIKeys)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("API_KEYS", "k1,k2")
	t.Setenv("SIDE_DEFENDER_TIME", "30s")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, []string{"k1", "k2"}, cfg.APIKeys)
	assert.Equal(t, 30*time.Second, cfg.SideDefenderTime)
	assert.True(t, cfg.Debug)
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv("TICK_INTERVAL", "soon")
	_, err := Load()
	assert.ErrorContains(t, err, "parse env:")

	t.Setenv("TICK_INTERVAL", "0s")
	_, err = Load()
	assert.ErrorContains(t, err, "TICK_INTERVAL")
}
