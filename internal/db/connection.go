package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/evacreport/backend/internal/config"
	"github.com/evacreport/backend/internal/logger"
	"github.com/evacreport/backend/internal/models"
)

var DB *gorm.DB

// Connect opens the SQL database selected by STORE_DRIVER.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.PostgresDSN())
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("store driver %q is not a SQL database", cfg.StoreDriver)
	}

	gdb, err := Open(dialector)
	if err != nil {
		return nil, err
	}
	DB = gdb
	logger.Info("Database connected successfully", map[string]interface{}{"driver": cfg.StoreDriver})
	return gdb, nil
}

// Open wraps gorm.Open with the shared settings. Duplicate-key errors are
// translated to gorm.ErrDuplicatedKey.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Error),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return gdb, nil
}

// AutoMigrate creates or updates the reporting tables.
func AutoMigrate(gdb *gorm.DB) error {
	tables := []interface{}{
		&models.User{},
		&models.Incident{},
		&models.EvacuationCenter{},
		&models.StoredDraft{},
	}
	for _, table := range tables {
		if err := gdb.AutoMigrate(table); err != nil {
			return fmt.Errorf("migration of %T failed: %w", table, err)
		}
		logger.Debug("Table migrated", map[string]interface{}{"model": fmt.Sprintf("%T", table)})
	}
	logger.Info("All database migrations completed successfully", nil)
	return nil
}

// Close releases the underlying connection pool.
func Close(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
