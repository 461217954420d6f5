package config_test

import (
	"testing"

	"guesthub/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, "3:00P", cfg.Schedule.CheckinTime)
	assert.Equal(t, "11:00A", cfg.Schedule.CheckoutTime)
	assert.Equal(t, 15, cfg.Schedule.IntervalMinutes)
	assert.Equal(t, "3", cfg.Locks.Slot)
	assert.Equal(t, 3, cfg.Locks.MaxAttempts)
	assert.Equal(t, 60, cfg.Modes.CooldownSeconds)
	assert.Equal(t, 5, cfg.Calendar.RetryAttempts)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("HUB_BASE_URL", "http://hub.local/apps/api/42")
	t.Setenv("SCHEDULE_CHECKIN_TIME", "4:00P")
	t.Setenv("SCHEDULE_TIMEZONE", "America/Denver")
	t.Setenv("LOCKS_DEVICE_IDS", "12,13")
	t.Setenv("STORE_BACKEND", "database")
	t.Setenv("STORE_DATABASE_DRIVER", "sqlite")

	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "http://hub.local/apps/api/42", cfg.Hub.BaseURL)
	assert.Equal(t, "4:00P", cfg.Schedule.CheckinTime)
	assert.Equal(t, "America/Denver", cfg.Schedule.Timezone)
	assert.Equal(t, []string{"12", "13"}, cfg.Locks.Devices())
	assert.Equal(t, "database", cfg.Store.Backend)
	assert.Equal(t, "sqlite", cfg.Store.Database.Driver)
}
