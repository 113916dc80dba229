package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/collie/pkg/observability"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.HealthPort)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "collie.db", cfg.Database.Path)
	assert.Equal(t, 5*time.Second, cfg.Database.BusyTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Producer.PollingInterval)
	assert.Equal(t, 30*time.Second, cfg.Producer.FetchTimeout)
	assert.Empty(t, cfg.Producer.Proxy)
	assert.Equal(t, observability.InfoLevel, cfg.Observability.LogLevel)
	assert.True(t, cfg.Observability.MetricsEnabled)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("COLLIE_HOST", "127.0.0.1")
	t.Setenv("COLLIE_PORT", "8080")
	t.Setenv("COLLIE_DB_PATH", "/var/lib/collie/collie.db")
	t.Setenv("COLLIE_POLLING_INTERVAL", "10m")
	t.Setenv("COLLIE_PROXY", "http://proxy.internal:3128")
	t.Setenv("COLLIE_LOG_LEVEL", "debug")
	t.Setenv("COLLIE_METRICS_ENABLED", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "/var/lib/collie/collie.db", cfg.Database.Path)
	assert.Equal(t, 10*time.Minute, cfg.Producer.PollingInterval)
	assert.Equal(t, "http://proxy.internal:3128", cfg.Producer.Proxy)
	assert.Equal(t, observability.DebugLevel, cfg.Observability.LogLevel)
	assert.False(t, cfg.Observability.MetricsEnabled)
}

func TestDurationsAcceptPlainSeconds(t *testing.T) {
	t.Setenv("COLLIE_READ_TIMEOUT", "45")
	t.Setenv("COLLIE_WRITE_TIMEOUT", "1m30s")
	t.Setenv("COLLIE_IDLE_TIMEOUT", "not-a-duration")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 45*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 90*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := LoadConfig()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty port", func(c *Config) { c.Server.Port = "" }, "server port"},
		{"empty health port", func(c *Config) { c.Server.HealthPort = "" }, "health port"},
		{"same ports", func(c *Config) { c.Server.HealthPort = c.Server.Port }, "must be different"},
		{"empty db path", func(c *Config) { c.Database.Path = "" }, "database path"},
		{"polling too fast", func(c *Config) { c.Producer.PollingInterval = 500 * time.Millisecond }, "polling interval"},
		{"zero fetch timeout", func(c *Config) { c.Producer.FetchTimeout = 0 }, "fetch timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAddrs(t *testing.T) {
	t.Setenv("COLLIE_HOST", "10.0.0.1")
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.1:3000", cfg.APIAddr())
	assert.Equal(t, "10.0.0.1:9090", cfg.HealthAddr())
}
