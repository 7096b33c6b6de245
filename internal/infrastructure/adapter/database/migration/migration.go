package migration

import (
	"context"
	"errors"
	"fmt"

	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

const (
	// CurrentSchemaVersion represents the current database schema version
	CurrentSchemaVersion = "1.1.0"
)

// MigrationManager manages database migrations
type MigrationManager struct {
	db               *gorm.DB
	logger           coreport.Logger
	timeProvider     coreport.TimeProvider
	advancedIndexMgr *AdvancedIndexManager
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(db *gorm.DB, logger coreport.Logger, timeProvider coreport.TimeProvider) *MigrationManager {
	return &MigrationManager{
		db:               db,
		logger:           logger,
		timeProvider:     timeProvider,
		advancedIndexMgr: NewAdvancedIndexManager(db, logger),
	}
}

// Models lists every table the service owns, in creation order
func Models() []any {
	return []any{
		&model.User{},
		&model.Locker{},
		&model.Device{},
		&model.Transaction{},
		&model.Payment{},
		&model.LockerLog{},
	}
}

// MigrateAll brings the schema to CurrentSchemaVersion
func (m *MigrationManager) MigrateAll(ctx context.Context) error {
	m.logger.Info("Starting database migrations", map[string]any{
		"target_version": CurrentSchemaVersion,
	})

	db := m.db.WithContext(ctx)
	started := m.timeProvider.Now()

	if err := db.AutoMigrate(&model.SchemaVersion{}); err != nil {
		return m.fail("create schema version table", err)
	}

	currentVersion, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return m.fail("check current schema version", err)
	}
	if currentVersion == CurrentSchemaVersion {
		m.logger.Info("Database already at target version, skipping migration", map[string]any{
			"version": currentVersion,
		})
		return nil
	}

	m.logger.Info("Current database version", map[string]any{
		"version": currentVersion,
	})

	// AutoMigrate also creates the check constraints declared on the models
	if err := db.AutoMigrate(Models()...); err != nil {
		return m.fail("auto-migrate models", err)
	}

	if err := m.runVersionedMigrations(ctx, currentVersion); err != nil {
		return m.fail("run versioned migrations", err)
	}

	if err := m.advancedIndexMgr.CreateAdvancedIndexes(ctx); err != nil {
		return m.fail("create advanced indexes", err)
	}
	m.advancedIndexMgr.CreatePerformanceTweaks(ctx)

	if err := m.setVersion(ctx, model.SchemaVersion{
		Version:     CurrentSchemaVersion,
		FromVersion: currentVersion,
		Description: describeUpgrade(currentVersion),
		DurationMs:  m.timeProvider.Since(started).Std().Milliseconds(),
	}); err != nil {
		return m.fail("update schema version", err)
	}

	m.logger.Info("Database migrations completed successfully", map[string]any{
		"version": CurrentSchemaVersion,
	})
	return nil
}

func (m *MigrationManager) fail(step string, err error) error {
	m.logger.Error("Database migration failed", map[string]any{
		"step":  step,
		"error": err.Error(),
	})
	return fmt.Errorf("migration: %s: %w", step, err)
}

// GetCurrentVersion gets the current migration version; empty means a fresh database
func (m *MigrationManager) GetCurrentVersion(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	var version model.SchemaVersion
	result := m.db.WithContext(ctx).Order("applied_at desc").First(&version)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", result.Error
	}
	return version.Version, nil
}

// setVersion records an applied upgrade. Re-applying a version refreshes its row.
func (m *MigrationManager) setVersion(ctx context.Context, v model.SchemaVersion) error {
	v.AppliedAt = m.timeProvider.Now()
	return m.db.WithContext(ctx).Save(&v).Error
}

func describeUpgrade(from string) string {
	switch from {
	case "":
		return "initial locker schema"
	case "1.0.0":
		return "derive transaction released flag"
	default:
		return "schema refresh from " + from
	}
}

// runVersionedMigrations runs data fixes specific to version transitions
func (m *MigrationManager) runVersionedMigrations(ctx context.Context, currentVersion string) error {
	m.logger.Info("Running versioned migrations", map[string]any{
		"from": currentVersion,
		"to":   CurrentSchemaVersion,
	})

	switch currentVersion {
	case "":
		return nil
	case "1.0.0":
		return m.migrateFrom1_0_0To1_1_0(ctx)
	}
	return nil
}

// migrateFrom1_0_0To1_1_0 derives the released flag for rows written before it existed.
// A checked out, failed or expired transaction no longer holds its unit.
func (m *MigrationManager) migrateFrom1_0_0To1_1_0(ctx context.Context) error {
	m.logger.Info("Migrating from v1.0.0 to v1.1.0", nil)

	return m.db.WithContext(ctx).Exec(`
		UPDATE transactions
		SET released = TRUE, released_at = COALESCE(released_at, updated_at)
		WHERE released = FALSE
		  AND (checked_out = TRUE OR payment_status IN ('failed', 'expired'))
	`).Error
}
