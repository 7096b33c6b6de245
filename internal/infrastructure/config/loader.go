package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "LK"

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"./configs/.env",
	"../configs/.env",
}

// envOverride binds one environment variable to a config key.
// Integer overrides are parsed before unmarshalling because the duration fields hold raw unit counts.
type envOverride struct {
	env     string
	key     string
	integer bool
}

var envOverrides = []envOverride{
	{env: "LK_SERVER_HOST", key: "server.host"},
	{env: "LK_SERVER_PORT", key: "server.port", integer: true},

	{env: "LK_DB_DRIVER", key: "database.driver"},
	{env: "LK_DB_HOST", key: "database.host"},
	{env: "LK_DB_PORT", key: "database.port"},
	{env: "LK_DB_USERNAME", key: "database.username"},
	{env: "LK_DB_PASSWORD", key: "database.password"},
	{env: "LK_DB_NAME", key: "database.database"},
	{env: "LK_DB_SSL_MODE", key: "database.sslMode"},
	{env: "LK_DB_MAX_OPEN_CONNS", key: "database.maxOpenConns", integer: true},
	{env: "LK_DB_MAX_IDLE_CONNS", key: "database.maxIdleConns", integer: true},
	{env: "LK_DB_QUERY_TIMEOUT_SECONDS", key: "database.queryTimeout", integer: true},
	{env: "LK_DB_RETRY_ATTEMPTS", key: "database.retryAttempts", integer: true},
	{env: "LK_DB_RETRY_DELAY_SECONDS", key: "database.retryDelay", integer: true},

	{env: "LK_LOGGER_LEVEL", key: "logger.level"},

	{env: "LK_LIFECYCLE_PAYMENT_TIMEOUT_MINUTES", key: "lifecycle.paymentTimeoutMinutes", integer: true},
	{env: "LK_AUDIT_SINK", key: "audit.sink"},

	{env: "LK_RABBITMQ_URL", key: "rabbitmq.url"},
	{env: "LK_RABBITMQ_QUEUE", key: "rabbitmq.queue"},

	{env: "LK_REDIS_ADDR", key: "redis.addr"},
	{env: "LK_REDIS_PASSWORD", key: "redis.password"},

	{env: "LK_ADMIN_EMAIL", key: "admin.email"},
	{env: "LK_ADMIN_PASSWORD", key: "admin.password"},
}

// LoadConfig loads configuration from file based on the environment
func LoadConfig() (*Config, error) {
	// Load environment variables from .env file first
	if err := loadDotEnvFile(); err != nil {
		fmt.Println("Warning: Could not load .env file:", err)
	}

	env := getEnvironment()

	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")
	for _, path := range ConfigPaths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := processEnvOverrides(v); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.Environment = env

	processDurations(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// loadDotEnvFile loads the first .env file found in the search paths
func loadDotEnvFile() error {
	var lastError error

	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			lastError = err
			continue
		}
		return nil
	}

	if lastError != nil {
		return fmt.Errorf("could not load any .env file: %w", lastError)
	}
	return fmt.Errorf("no .env file found in search paths")
}

// setDefaults sets default values for non-critical configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 15)       // seconds
	v.SetDefault("server.writeTimeout", 15)      // seconds
	v.SetDefault("server.idleTimeout", 60)       // seconds
	v.SetDefault("server.readHeaderTimeout", 10) // seconds
	v.SetDefault("server.shutdownTimeout", 10)   // seconds

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 10)
	v.SetDefault("database.connMaxLifetime", 30) // minutes
	v.SetDefault("database.connMaxIdleTime", 15) // minutes
	v.SetDefault("database.queryTimeout", 5)     // seconds
	v.SetDefault("database.retryAttempts", 3)
	v.SetDefault("database.retryDelay", 1) // seconds
	v.SetDefault("database.autoMigrate", true)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.callerInfo", true)

	v.SetDefault("availability.maxAttempts", 5)
	v.SetDefault("availability.baseBackoffMs", 10)
	v.SetDefault("availability.maxBackoffMs", 200)

	v.SetDefault("lifecycle.paymentTimeoutMinutes", 15)
	v.SetDefault("lifecycle.sweepIntervalSeconds", 60)
	v.SetDefault("lifecycle.sweepBatchSize", 100)
	v.SetDefault("lifecycle.maxAttempts", 3)

	v.SetDefault("audit.sink", AuditSinkDatabase)
	v.SetDefault("audit.workers", 4)
	v.SetDefault("audit.bufferSize", 256)
	v.SetDefault("audit.enqueueTimeoutMs", 50)
	v.SetDefault("audit.writeTimeoutMs", 2000)

	v.SetDefault("rabbitmq.queue", "locker.logs")
	v.SetDefault("rabbitmq.prefetch", 32)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.channelPrefix", "lockers")
}

// getEnvironment determines the environment to use based on the LK_ENV environment variable
func getEnvironment() string {
	env := os.Getenv("LK_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}

// processEnvOverrides makes environment variables win over file values
func processEnvOverrides(v *viper.Viper) error {
	for _, o := range envOverrides {
		raw, ok := os.LookupEnv(o.env)
		if !ok || raw == "" {
			continue
		}
		if !o.integer {
			v.Set(o.key, raw)
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", o.env, err)
		}
		v.Set(o.key, n)
	}
	return nil
}

// processDurations converts duration fields from their raw unit counts to actual durations
func processDurations(config *Config) {
	config.Server.ReadTimeout = time.Duration(config.Server.ReadTimeout) * time.Second
	config.Server.WriteTimeout = time.Duration(config.Server.WriteTimeout) * time.Second
	config.Server.IdleTimeout = time.Duration(config.Server.IdleTimeout) * time.Second
	config.Server.ReadHeaderTimeout = time.Duration(config.Server.ReadHeaderTimeout) * time.Second
	config.Server.ShutdownTimeout = time.Duration(config.Server.ShutdownTimeout) * time.Second

	config.Database.ConnMaxLifetime = time.Duration(config.Database.ConnMaxLifetime) * time.Minute
	config.Database.ConnMaxIdleTime = time.Duration(config.Database.ConnMaxIdleTime) * time.Minute
	config.Database.QueryTimeout = time.Duration(config.Database.QueryTimeout) * time.Second
	config.Database.RetryDelay = time.Duration(config.Database.RetryDelay) * time.Second
}
