package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Environment  string             `mapstructure:"environment"`
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Logger       LoggerConfig       `mapstructure:"logger"`
	Availability AvailabilityConfig `mapstructure:"availability"`
	Lifecycle    LifecycleConfig    `mapstructure:"lifecycle"`
	Audit        AuditConfig        `mapstructure:"audit"`
	RabbitMQ     RabbitMQConfig     `mapstructure:"rabbitmq"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Admin        AdminConfig        `mapstructure:"admin"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`       // seconds
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`      // seconds
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`       // seconds
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"` // seconds
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`   // seconds
}

// Address returns host:port for the listener
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres or memory
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"` // minutes
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"` // minutes
	QueryTimeout    time.Duration `mapstructure:"queryTimeout"`    // seconds
	RetryAttempts   int           `mapstructure:"retryAttempts"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"` // seconds
	AutoMigrate     bool          `mapstructure:"autoMigrate"`
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	TimeFormat string `mapstructure:"timeFormat"`
	CallerInfo bool   `mapstructure:"callerInfo"`
}

// AvailabilityConfig bounds the conflict retry loop of the availability manager
type AvailabilityConfig struct {
	MaxAttempts   int `mapstructure:"maxAttempts"`
	BaseBackoffMs int `mapstructure:"baseBackoffMs"`
	MaxBackoffMs  int `mapstructure:"maxBackoffMs"`
}

// LifecycleConfig contains transaction lifecycle settings
type LifecycleConfig struct {
	PaymentTimeoutMinutes int `mapstructure:"paymentTimeoutMinutes"`
	SweepIntervalSeconds  int `mapstructure:"sweepIntervalSeconds"`
	SweepBatchSize        int `mapstructure:"sweepBatchSize"`
	MaxAttempts           int `mapstructure:"maxAttempts"`
}

// PaymentTimeout returns how long a booking may stay unpaid
func (c LifecycleConfig) PaymentTimeout() time.Duration {
	return time.Duration(c.PaymentTimeoutMinutes) * time.Minute
}

// SweepInterval returns the expiry sweeper period
func (c LifecycleConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// Audit sinks
const (
	AuditSinkDatabase = "database"
	AuditSinkRabbitMQ = "rabbitmq"
)

// AuditConfig configures the asynchronous audit writer
type AuditConfig struct {
	Sink             string `mapstructure:"sink"`
	Workers          int    `mapstructure:"workers"`
	BufferSize       int    `mapstructure:"bufferSize"`
	EnqueueTimeoutMs int    `mapstructure:"enqueueTimeoutMs"`
	WriteTimeoutMs   int    `mapstructure:"writeTimeoutMs"`
}

// RabbitMQConfig contains broker settings
type RabbitMQConfig struct {
	URL      string `mapstructure:"url"`
	Queue    string `mapstructure:"queue"`
	Prefetch int    `mapstructure:"prefetch"`
}

// RedisConfig contains change notification settings
type RedisConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Addr          string `mapstructure:"addr"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	ChannelPrefix string `mapstructure:"channelPrefix"`
}

// AdminConfig seeds the operator account on first start
type AdminConfig struct {
	ID       string `mapstructure:"id"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

// Validate checks the settings every process needs before wiring anything
func (c *Config) Validate() error {
	var problems []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Errorf("invalid server port: %d", c.Server.Port))
	}

	switch c.Database.Driver {
	case "memory":
	case "postgres":
		if c.Database.Host == "" {
			problems = append(problems, errors.New("database host is required"))
		}
		if c.Database.Username == "" {
			problems = append(problems, errors.New("database username is required"))
		}
		if c.Database.Database == "" {
			problems = append(problems, errors.New("database name is required"))
		}
	default:
		problems = append(problems, fmt.Errorf("unsupported database driver: %s", c.Database.Driver))
	}

	switch c.Audit.Sink {
	case AuditSinkDatabase:
	case AuditSinkRabbitMQ:
		if c.RabbitMQ.URL == "" {
			problems = append(problems, errors.New("rabbitmq url is required for the rabbitmq audit sink"))
		}
	default:
		problems = append(problems, fmt.Errorf("unsupported audit sink: %s", c.Audit.Sink))
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		problems = append(problems, errors.New("redis addr is required when redis is enabled"))
	}
	if c.Lifecycle.PaymentTimeoutMinutes <= 0 {
		problems = append(problems, errors.New("lifecycle payment timeout must be positive"))
	}

	return errors.Join(problems...)
}
