package migration

import (
	"context"

	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"gorm.io/gorm"
)

// AdvancedIndexManager manages PostgreSQL-specific indexes GORM tags cannot express
type AdvancedIndexManager struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewAdvancedIndexManager creates a new advanced index manager
func NewAdvancedIndexManager(db *gorm.DB, logger coreport.Logger) *AdvancedIndexManager {
	return &AdvancedIndexManager{
		db:     db,
		logger: logger,
	}
}

type indexStatement struct {
	name string
	sql  string
}

var advancedIndexes = []indexStatement{
	{
		// Serves CountUnreleased for consistency checks and locker deletion
		name: "idx_transactions_unreleased",
		sql: `CREATE INDEX IF NOT EXISTS idx_transactions_unreleased
			ON transactions (locker_id) WHERE released = FALSE`,
	},
	{
		// Serves the expiry sweeper
		name: "idx_transactions_pending_expiry",
		sql: `CREATE INDEX IF NOT EXISTS idx_transactions_pending_expiry
			ON transactions (expires_at) WHERE payment_status = 'pending' AND checked_out = FALSE`,
	},
	{
		// Audit entries are appended in time order, which suits BRIN
		name: "idx_locker_logs_timestamp_brin",
		sql: `CREATE INDEX IF NOT EXISTS idx_locker_logs_timestamp_brin
			ON locker_logs USING BRIN (timestamp) WITH (pages_per_range = 32)`,
	},
	{
		name: "idx_esp32_devices_locker_unique",
		sql: `CREATE UNIQUE INDEX IF NOT EXISTS idx_esp32_devices_locker_unique
			ON esp32_devices (locker_id) WHERE locker_id <> ''`,
	},
}

// CreateAdvancedIndexes creates partial and BRIN indexes
func (m *AdvancedIndexManager) CreateAdvancedIndexes(ctx context.Context) error {
	m.logger.Info("Creating advanced PostgreSQL indexes", nil)

	for _, idx := range advancedIndexes {
		if err := m.db.WithContext(ctx).Exec(idx.sql).Error; err != nil {
			m.logger.Error("Failed to create index", map[string]any{
				"index": idx.name,
				"error": err.Error(),
			})
			return err
		}
	}

	m.logger.Info("Advanced PostgreSQL indexes created successfully", nil)
	return nil
}

// CreatePerformanceTweaks applies storage settings; failures are logged and ignored
func (m *AdvancedIndexManager) CreatePerformanceTweaks(ctx context.Context) {
	m.logger.Info("Applying PostgreSQL performance tweaks", nil)

	tweaks := []indexStatement{
		// Counter rows are rewritten constantly; leave room for HOT updates
		{name: "lockers_fillfactor", sql: `ALTER TABLE lockers SET (fillfactor = 70)`},
		{name: "transactions_fillfactor", sql: `ALTER TABLE transactions SET (fillfactor = 90)`},
	}
	for _, tweak := range tweaks {
		if err := m.db.WithContext(ctx).Exec(tweak.sql).Error; err != nil {
			m.logger.Warn("Failed to apply performance tweak", map[string]any{
				"tweak": tweak.name,
				"error": err.Error(),
			})
		}
	}
}
