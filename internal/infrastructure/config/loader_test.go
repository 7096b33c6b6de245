package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
server:
  port: 9090
database:
  driver: memory
lifecycle:
  paymentTimeoutMinutes: 20
audit:
  workers: 2
`

func withConfigDir(t *testing.T, name, body string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(body), 0o600))

	paths, dotenv := ConfigPaths, DotEnvPaths
	ConfigPaths = []string{dir}
	DotEnvPaths = []string{filepath.Join(dir, ".env")}
	t.Cleanup(func() {
		ConfigPaths, DotEnvPaths = paths, dotenv
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("file values over defaults", func(t *testing.T) {
		withConfigDir(t, Test, testYAML)
		t.Setenv("LK_ENV", Test)

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, Test, cfg.Environment)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, "memory", cfg.Database.Driver)
		assert.Equal(t, 20*time.Minute, cfg.Lifecycle.PaymentTimeout())
		assert.Equal(t, time.Minute, cfg.Lifecycle.SweepInterval())
		assert.Equal(t, 2, cfg.Audit.Workers)
		assert.Equal(t, 256, cfg.Audit.BufferSize)
		assert.Equal(t, AuditSinkDatabase, cfg.Audit.Sink)
		assert.Equal(t, 5, cfg.Availability.MaxAttempts)
		assert.Equal(t, "locker.logs", cfg.RabbitMQ.Queue)
	})

	t.Run("environment overrides win", func(t *testing.T) {
		withConfigDir(t, Test, testYAML)
		t.Setenv("LK_ENV", Test)
		t.Setenv("LK_SERVER_PORT", "7070")
		t.Setenv("LK_LIFECYCLE_PAYMENT_TIMEOUT_MINUTES", "5")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, 7070, cfg.Server.Port)
		assert.Equal(t, 5*time.Minute, cfg.Lifecycle.PaymentTimeout())
	})

	t.Run("non numeric override", func(t *testing.T) {
		withConfigDir(t, Test, testYAML)
		t.Setenv("LK_ENV", Test)
		t.Setenv("LK_SERVER_PORT", "eighty")

		_, err := LoadConfig()
		assert.ErrorContains(t, err, "LK_SERVER_PORT must be an integer")
	})

	t.Run("missing file", func(t *testing.T) {
		withConfigDir(t, Test, testYAML)
		t.Setenv("LK_ENV", Production)

		_, err := LoadConfig()
		assert.ErrorContains(t, err, "error reading config file")
	})

	t.Run("postgres requires connection settings", func(t *testing.T) {
		withConfigDir(t, Test, "database:\n  driver: postgres\n")
		t.Setenv("LK_ENV", Test)

		_, err := LoadConfig()
		assert.ErrorContains(t, err, "database host is required")
	})
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:    ServerConfig{Port: 8080},
			Database:  DatabaseConfig{Driver: "memory"},
			Audit:     AuditConfig{Sink: AuditSinkDatabase},
			Lifecycle: LifecycleConfig{PaymentTimeoutMinutes: 15},
		}
	}

	assert.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"bad driver", func(c *Config) { c.Database.Driver = "sqlite" }, "unsupported database driver"},
		{"rabbit without url", func(c *Config) { c.Audit.Sink = AuditSinkRabbitMQ }, "rabbitmq url is required"},
		{"bad sink", func(c *Config) { c.Audit.Sink = "kafka" }, "unsupported audit sink"},
		{"redis without addr", func(c *Config) { c.Redis.Enabled = true }, "redis addr is required"},
		{"no payment timeout", func(c *Config) { c.Lifecycle.PaymentTimeoutMinutes = 0 }, "payment timeout must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.ErrorContains(t, c.Validate(), tt.want)
		})
	}
}

func TestServerAddress(t *testing.T) {
	assert.Equal(t, "127.0.0.1:8080", ServerConfig{Host: "127.0.0.1", Port: 8080}.Address())
}
