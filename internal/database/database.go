package database

import (
	"context"
	"fmt"
	"time"

	"github.com/packline/jobdesk-api/internal/config"
	"github.com/packline/jobdesk-api/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the configured database. The returned handle is shared by
// every repository; there is no package level connection.
func NewDatabase(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath + "?_foreign_keys=on")
	case "postgres", "":
		dialector = postgres.Open(cfg.ConnectionString())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// AutoMigrate creates or updates every table, including the catalog tables
// which share one model (for development and the sqlite mode)
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, kind := range domain.CatalogKinds {
		if err := db.Table(kind.Table()).AutoMigrate(&domain.CatalogItem{}); err != nil {
			return fmt.Errorf("auto migrate %s: %w", kind.Table(), err)
		}
	}
	return nil
}

// HealthCheck pings the database within ctx
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
