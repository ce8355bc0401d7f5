package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Server.ShutdownSeconds)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "America/St_Johns", cfg.Property.Timezone)
	assert.Equal(t, []string{"confirmed", "checked_in"}, cfg.Property.ActiveStatuses)
	assert.Equal(t, 5, cfg.Property.PinLength)
	assert.Equal(t, "out_of_service", cfg.RoomBlock.BlockType)
	assert.Equal(t, "@every 15m", cfg.Schedule.Spec)
	assert.True(t, cfg.Schedule.Enabled)
	assert.Equal(t, "https://connect.getseam.com", cfg.Seam.BaseURL)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PROPERTY_PIN_LENGTH", "6")
	t.Setenv("SCHEDULE_ENABLED", "false")
	t.Setenv("ROOM_BLOCK_REASON_TAG", "maintenance")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Property.PinLength)
	assert.False(t, cfg.Schedule.Enabled)
	assert.Equal(t, "maintenance", cfg.RoomBlock.ReasonTag)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PROPERTY_TIMEZONE=Europe/Lisbon\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("PROPERTY_TIMEZONE") })

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Lisbon", cfg.Property.Timezone)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{name: "Driver", key: "DATABASE_DRIVER", val: "postgres", want: "database"},
		{name: "Timezone", key: "PROPERTY_TIMEZONE", val: "Mars/Olympus", want: "property"},
		{name: "PinLength", key: "PROPERTY_PIN_LENGTH", val: "12", want: "property"},
		{name: "BlockClock", key: "ROOM_BLOCK_START_TIME", val: "25:00", want: "room_block"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := LoadConfig(t.TempDir())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
