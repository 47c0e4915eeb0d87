package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
	assert.Equal(t, 10*time.Second, cfg.Scheduler.PollInterval.Duration)
	assert.Equal(t, 10, cfg.Game.WeightLogCoins)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "levelup.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[app]
environment = "production"

[storage]
driver = "redis"
cache_size_mb = 8

[redis]
host = "cache.internal"

[scheduler]
poll_interval = "5s"

[game]
default_time_zone = "Europe/Belgrade"
`), 0o600))

	t.Setenv(ConfigFileEnv, path)
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("SCHEDULER_POLL_INTERVAL", "2s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, DriverRedis, cfg.Storage.Driver)
	assert.Equal(t, 8, cfg.Storage.CacheSizeMB)
	assert.Equal(t, "cache.internal", cfg.Redis.Host)
	assert.Equal(t, 6380, cfg.Redis.Port)
	assert.Equal(t, "levelup:", cfg.Redis.KeyPrefix, "keys missing from the file keep defaults")
	assert.Equal(t, 2*time.Second, cfg.Scheduler.PollInterval.Duration, "env wins over the file")
	assert.Equal(t, "Europe/Belgrade", cfg.Game.DefaultTimeZone)
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[scheduler]\npoll_interval = \"soon\"\n"), 0o600))
	t.Setenv(ConfigFileEnv, path)

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown driver", func(c *Config) { c.Storage.Driver = "etcd" }, "unknown STORAGE_DRIVER"},
		{"postgres without url", func(c *Config) { c.Storage.Driver = DriverPostgres }, "DATABASE_URL"},
		{"bad zone", func(c *Config) { c.Game.DefaultTimeZone = "Nowhere/Land" }, "GAME_DEFAULT_TIME_ZONE"},
		{"zero poll", func(c *Config) { c.Scheduler.PollInterval.Duration = 0 }, "SCHEDULER_POLL_INTERVAL"},
		{"half telegram", func(c *Config) { c.Telegram.Token = "t" }, "TELEGRAM_CHAT_ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestTelegramEnabled(t *testing.T) {
	assert.False(t, TelegramConfig{}.Enabled())
	assert.True(t, TelegramConfig{Token: "t", ChatID: 1}.Enabled())
}
