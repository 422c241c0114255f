package main

import (
	"context"
	"testing"
	"time"

	"github.com/bagusrestoration/bengkel-progress-api/config"
	"github.com/bagusrestoration/bengkel-progress-api/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testStaffEmail    = "admin@bengkel.test"
	testStaffPassword = "rahasia123"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		DatabaseDriver:     "sqlite",
		GoEnv:              "test",
		AuthProvider:       "local",
		JWTSecret:          "test-secret",
		SessionTTL:         time.Hour,
		MediaProvider:      "local",
		MaxUploadBytes:     5 * 1024 * 1024,
		PublicBaseURL:      "http://localhost:8080",
		ShopName:           "Bagus Restoration",
		LookupBaseURL:      "https://bengkel.example.com/cek",
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		LookupRateLimit:    60,
	}
}

// setupTestApp wires the full application on sqlite with a local identity and the given media host
func setupTestApp(t *testing.T, cfg *config.Config, media services.MediaHost) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	config.SetDB(db)
	t.Cleanup(func() { config.SetDB(nil) })

	identity := services.NewLocalIdentity(db, cfg.JWTSecret, cfg.SessionTTL)
	_, err := identity.CreateStaff(context.Background(), testStaffEmail, "Admin", testStaffPassword)
	require.NoError(t, err)

	return setupRouter(newApplicationWith(cfg, db, identity, media))
}

// setupHealthRouter builds the full router without a staff account
func setupHealthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	db := setupTestDB(t)
	identity := services.NewLocalIdentity(db, cfg.JWTSecret, cfg.SessionTTL)
	return setupRouter(newApplicationWith(cfg, db, identity, services.NewMockMediaHost()))
}
