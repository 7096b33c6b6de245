package database

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/database/migration"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/model"
	timeprovider "github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/time"
	"gorm.io/gorm"
)

// TestDBHostEnv names the variable that enables tests against a real PostgreSQL
const TestDBHostEnv = "LK_TEST_DB_HOST"

// TestDBManager provides utilities for testing with a database
type TestDBManager struct {
	Manager      *Manager
	Config       *Config
	Logger       coreport.Logger
	TimeProvider coreport.TimeProvider
}

// NewTestDBManager creates a test database manager, skipping the test when no database is configured
func NewTestDBManager(t *testing.T, logger coreport.Logger) *TestDBManager {
	t.Helper()

	host, ok := os.LookupEnv(TestDBHostEnv)
	if !ok || host == "" {
		t.Skipf("%s not set, skipping PostgreSQL test", TestDBHostEnv)
	}

	timeProvider := timeprovider.NewRealTimeProvider()

	config := &Config{
		Driver:          DriverPostgres,
		Host:            host,
		Port:            getEnvIntOrDefault("LK_TEST_DB_PORT", 5432),
		Username:        getEnvOrDefault("LK_TEST_DB_USERNAME", "postgres"),
		Password:        getEnvOrDefault("LK_TEST_DB_PASSWORD", "postgres"),
		Database:        getEnvOrDefault("LK_TEST_DB_DATABASE", "locker_service_test"),
		SSLMode:         getEnvOrDefault("LK_TEST_DB_SSL_MODE", "disable"),
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		QueryTimeout:    5 * time.Second,
		LogLevel:        "silent",
		RetryAttempts:   1, // Fail fast
		RetryDelay:      time.Second,
	}

	return &TestDBManager{
		Manager:      NewManager(config, logger, timeProvider),
		Config:       config,
		Logger:       logger,
		TimeProvider: timeProvider,
	}
}

// Connect connects to the test database
func (m *TestDBManager) Connect(t *testing.T) {
	t.Helper()

	if _, err := m.Manager.Connect(context.Background()); err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
}

// Close closes the test database connection
func (m *TestDBManager) Close(t *testing.T) {
	t.Helper()

	if err := m.Manager.Close(); err != nil {
		t.Logf("Warning: Failed to close test database connection: %v", err)
	}
}

// SetupTestDB drops every table and recreates the schema
func (m *TestDBManager) SetupTestDB(t *testing.T) {
	t.Helper()

	db := m.Manager.DB()
	if err := dropAllTables(db); err != nil {
		t.Fatalf("Failed to drop tables: %v", err)
	}
	if err := m.Manager.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
}

// dropAllTables drops all tables in the test database
func dropAllTables(db *gorm.DB) error {
	return db.Exec(`
		DO $$ DECLARE
			r RECORD;
		BEGIN
			FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = current_schema()) LOOP
				EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
			END LOOP;
		END $$;
	`).Error
}

// TruncateAllTables empties the service tables, leaving the migration history
func (m *TestDBManager) TruncateAllTables(t *testing.T) {
	t.Helper()

	db := m.Manager.DB()
	for _, table := range migration.Models() {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
			t.Fatalf("Failed to truncate tables: %v", err)
		}
	}
}

// CreateTestLocker inserts a locker with the given counters
func (m *TestDBManager) CreateTestLocker(t *testing.T, id string, capacity, available int) {
	t.Helper()

	status := "available"
	if available == 0 {
		status = "occupied"
	}
	now := m.TimeProvider.Now()
	locker := model.Locker{
		ID:        id,
		Name:      "Locker " + id,
		Size:      "medium",
		Capacity:  capacity,
		Available: available,
		Status:    status,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.Manager.DB().Create(&locker).Error; err != nil {
		t.Fatalf("Failed to create test locker: %v", err)
	}
}

// Helper functions to get environment variables or defaults
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
	}
	return defaultValue
}
