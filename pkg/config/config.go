package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/platinummonkey/collie/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Producer      ProducerConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for probes)
	HealthPort string
}

// DatabaseConfig holds SQLite configuration
type DatabaseConfig struct {
	Path        string
	BusyTimeout time.Duration
}

// ProducerConfig holds feed ingestion configuration
type ProducerConfig struct {
	PollingInterval time.Duration
	FetchTimeout    time.Duration
	Proxy           string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("COLLIE_HOST", "0.0.0.0"),
			Port:            getEnv("COLLIE_PORT", "3000"),
			ReadTimeout:     getEnvDuration("COLLIE_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("COLLIE_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("COLLIE_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("COLLIE_SHUTDOWN_TIMEOUT", 30*time.Second),
			HealthPort:      getEnv("COLLIE_HEALTH_PORT", "9090"),
		},
		Database: DatabaseConfig{
			Path:        getEnv("COLLIE_DB_PATH", "collie.db"),
			BusyTimeout: getEnvDuration("COLLIE_DB_BUSY_TIMEOUT", 5*time.Second),
		},
		Producer: ProducerConfig{
			PollingInterval: getEnvDuration("COLLIE_POLLING_INTERVAL", 5*time.Minute),
			FetchTimeout:    getEnvDuration("COLLIE_FETCH_TIMEOUT", 30*time.Second),
			Proxy:           getEnv("COLLIE_PROXY", ""),
		},
		Observability: ObservabilityConfig{
			LogLevel:       observability.ParseLogLevel(strings.ToLower(getEnv("COLLIE_LOG_LEVEL", "info"))),
			MetricsEnabled: getEnvBool("COLLIE_METRICS_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Producer.PollingInterval < time.Second {
		return fmt.Errorf("polling interval must be at least one second")
	}
	if c.Producer.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}
	return nil
}

// APIAddr returns the listen address of the API server.
func (c *Config) APIAddr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// HealthAddr returns the listen address of the health/metrics server.
func (c *Config) HealthAddr() string {
	return c.Server.Host + ":" + c.Server.HealthPort
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default.
// Plain integers are read as seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return defaultValue
}
