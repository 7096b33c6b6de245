package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/config"
)

func TestNewConfig(t *testing.T) {
	c := NewConfig(config.DatabaseConfig{
		Host:     "db",
		Port:     "6543",
		Username: "locker",
		Database: "lockers",
	}, "")

	assert.Equal(t, DriverPostgres, c.Driver)
	assert.Equal(t, 6543, c.Port)
	assert.Equal(t, "disable", c.SSLMode)
	assert.Equal(t, 25, c.MaxOpenConns)
	assert.Equal(t, 25, c.MaxIdleConns)
	assert.Equal(t, 5*time.Second, c.QueryTimeout)
	assert.Equal(t, 1, c.RetryAttempts)
	assert.Equal(t, "info", c.LogLevel)
	assert.NoError(t, c.Validate())
	assert.Equal(t, "host=db port=6543 user=locker password= dbname=lockers sslmode=disable", c.DSN())
}

func TestConfigValidate(t *testing.T) {
	base := func() *Config {
		return NewConfig(config.DatabaseConfig{Host: "db", Username: "u", Database: "d"}, "info")
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"driver", func(c *Config) { c.Driver = DriverMemory }, "unsupported database driver"},
		{"host", func(c *Config) { c.Host = "" }, "database host is required"},
		{"user", func(c *Config) { c.Username = "" }, "database username is required"},
		{"name", func(c *Config) { c.Database = "" }, "database name is required"},
		{"ssl", func(c *Config) { c.SSLMode = "always" }, "invalid SSL mode"},
		{"pool", func(c *Config) { c.MaxIdleConns = 100 }, "exceed max open connections"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			assert.ErrorContains(t, c.Validate(), tt.want)
		})
	}
}

func TestParsePort(t *testing.T) {
	assert.Equal(t, 5432, ParsePort("5432"))
	assert.Equal(t, 0, ParsePort(""))
	assert.Equal(t, 0, ParsePort("70000"))
	assert.Equal(t, 0, ParsePort("pg"))
}
