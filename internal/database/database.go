package database

import (
	"fmt"
	"strings"

	"github.com/Till769/zero2prod/internal/config"
	"github.com/Till769/zero2prod/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database instance.
var DB *gorm.DB

// Connect opens a Postgres connection and optionally runs auto-migration.
func Connect(cfg *config.AppConfig, autoMigrate bool) (*gorm.DB, error) {
	db, err := openDB(cfg, resolveLogLevel(cfg))
	if err != nil {
		return nil, err
	}

	if autoMigrate {
		if err := migrate(db); err != nil {
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}

	DB = db
	return db, nil
}

// EnsureDatabase creates the application database when it does not exist yet,
// using a short-lived connection to the server's maintenance database. Skipped
// when an explicit DSN is configured, since the target name cannot be derived
// reliably from it.
func EnsureDatabase(cfg *config.AppConfig) error {
	if strings.TrimSpace(cfg.Database.DSN) != "" || strings.TrimSpace(cfg.Database.URL) != "" {
		return nil
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.MaintenanceDSNValue()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("maintenance connection failed: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("resolve sql db: %w", err)
	}
	defer sqlDB.Close()

	name := cfg.Database.DatabaseName()
	var count int64
	if err := db.Raw("SELECT COUNT(1) FROM pg_database WHERE datname = ?", name).Scan(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		if err := db.Exec(fmt.Sprintf("CREATE DATABASE %q", name)).Error; err != nil {
			return err
		}
	}
	return nil
}

// EnsureSchema applies database migration in a short-lived setup connection.
func EnsureSchema(cfg *config.AppConfig) error {
	db, err := openDB(cfg, resolveLogLevel(cfg))
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("resolve sql db: %w", err)
	}
	defer sqlDB.Close()

	if err := migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

func resolveLogLevel(cfg *config.AppConfig) logger.LogLevel {
	if cfg.IsDev() {
		return logger.Info
	}
	return logger.Warn
}

func openDB(cfg *config.AppConfig, logLevel logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return db, nil
}

// migrate runs GORM auto-migration for all models.
func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.UserModel{},
		&models.UserSession{},
		&models.APIToken{},
		&models.SubscriberModel{},
		&models.SubscriptionTokenModel{},
		&models.NewsletterIssueModel{},
		&models.OptionModel{},
	)
}
