package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8181", config.ServerURL)
	assert.Equal(t, 30*time.Second, config.PollInterval)
	assert.Equal(t, 500*time.Millisecond, config.NotifyDebounce)
	assert.Equal(t, 1000, config.MaxPages)
	assert.Equal(t, 30*time.Second, config.HTTPTimeout)
	assert.Equal(t, 5*time.Minute, config.CacheTTL)
	assert.Equal(t, 250, config.MaxContentLength)
	assert.Empty(t, config.CacheRedisAddr)
	assert.Empty(t, config.SeenDB)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("TRSST_SERVER_URL", "https://trsst.example.com")
	t.Setenv("POLL_INTERVAL", "1m")
	t.Setenv("MAX_PAGES", "5")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://trsst.example.com", config.ServerURL)
	assert.Equal(t, time.Minute, config.PollInterval)
	assert.Equal(t, 5, config.MaxPages)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "soon")

	_, err := LoadConfig()
	assert.Error(t, err)
}
