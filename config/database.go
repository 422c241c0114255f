package config

import (
	"fmt"

	"github.com/bagusrestoration/bengkel-progress-api/logger"
	"github.com/bagusrestoration/bengkel-progress-api/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const defaultSQLitePath = "bengkel.db"

var DB *gorm.DB

// ConnectDatabase opens the record store database for the configured driver
func ConnectDatabase(cfg *Config) error {
	dialector, err := openDialector(cfg)
	if err != nil {
		return err
	}

	DB, err = gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.L().Info("database connection established", zap.String("driver", cfg.DatabaseDriver))
	return nil
}

func openDialector(cfg *Config) (gorm.Dialector, error) {
	switch cfg.DatabaseDriver {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for postgres")
		}
		return postgres.Open(cfg.DatabaseURL), nil
	case "sqlite":
		path := cfg.DatabaseURL
		if path == "" {
			path = defaultSQLitePath
		}
		return sqlite.Open(path), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}

// Migrate creates or updates the tables owned by this service
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.JobRecord{}, &models.StaffAccount{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the database instance (primarily for testing)
func SetDB(db *gorm.DB) {
	DB = db
}
