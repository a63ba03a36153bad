package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DefaultDepartureURL, cfg.Transit.DepartureURL)
	assert.Equal(t, DefaultTripURL, cfg.Transit.TripURL)
	assert.Equal(t, 20*time.Second, cfg.Transit.RequestTimeout)
	assert.Equal(t, 40, cfg.Transit.InteractivePageSize)
	assert.Equal(t, 75, cfg.Transit.WidgetPageSize)
	assert.Equal(t, 30*time.Second, cfg.Poll.SuccessInterval)
	assert.Equal(t, time.Second, cfg.Poll.FailureInterval)
	assert.Equal(t, "constant", cfg.Poll.FailureBackoff)
	assert.True(t, cfg.Activity.Enabled)
	assert.Equal(t, DefaultUserAgent, cfg.Activity.UserAgent)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, DefaultStopGID, cfg.Worker.DefaultStop)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("POLL_SUCCESS_INTERVAL", "10")
	t.Setenv("POLL_FAILURE_INTERVAL", "250")
	t.Setenv("STORE_BACKEND", " Postgres ")
	t.Setenv("ACTIVITY_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Poll.SuccessInterval)
	assert.Equal(t, 250*time.Millisecond, cfg.Poll.FailureInterval)
	assert.Equal(t, "postgres", cfg.Store.Backend)
	assert.False(t, cfg.Activity.Enabled)
	assert.Equal(t, "localhost:0", (&Config{Redis: RedisConfig{Host: "localhost"}}).GetRedisAddr())
}

func TestTransitConfig_Location(t *testing.T) {
	c := TransitConfig{Timezone: "Europe/Berlin"}
	loc, err := c.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())

	c.Timezone = "Nowhere/Invalid"
	_, err = c.Location()
	assert.Error(t, err)
}
