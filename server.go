package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bagusrestoration/bengkel-progress-api/config"
	"github.com/bagusrestoration/bengkel-progress-api/controllers"
	"github.com/bagusrestoration/bengkel-progress-api/middleware"
	"github.com/bagusrestoration/bengkel-progress-api/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// application holds the wired services behind the router
type application struct {
	cfg      *config.Config
	identity services.IdentityProvider
	media    services.MediaHost
	jobs     *services.JobService
}

func newApplication(ctx context.Context, cfg *config.Config, db *gorm.DB) (*application, error) {
	identity, err := services.NewIdentityProvider(cfg, db)
	if err != nil {
		return nil, fmt.Errorf("failed to set up identity provider: %w", err)
	}

	media, err := services.NewMediaHost(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up media host: %w", err)
	}

	return newApplicationWith(cfg, db, identity, media), nil
}

func newApplicationWith(cfg *config.Config, db *gorm.DB, identity services.IdentityProvider, media services.MediaHost) *application {
	jobs := services.NewJobService(
		services.NewGormRecordStore(db),
		media,
		services.NewChangeFeed(services.DefaultFeedBuffer),
		services.JobServiceOptions{
			LookupBaseURL:  cfg.LookupBaseURL,
			ShopName:       cfg.ShopName,
			MaxUploadBytes: cfg.MaxUploadBytes,
		},
	)
	return &application{cfg: cfg, identity: identity, media: media, jobs: jobs}
}

func setupRouter(app *application) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.RequestLogger(), middleware.Recovery())
	if len(app.cfg.CORSAllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     app.cfg.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	authController := controllers.NewAuthController(app.identity)
	jobController := controllers.NewJobController(app.jobs)
	lookupController := controllers.NewLookupController(app.jobs)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)
		v1.GET("/lookup", middleware.RateLimit(app.cfg.LookupRateLimit, time.Minute), lookupController.Lookup)
		v1.POST("/auth/login", authController.Login)

		// Staff routes
		staff := v1.Group("")
		staff.Use(middleware.RequireSession(app.identity), middleware.RequireRole(services.RoleStaff))
		{
			staff.POST("/auth/logout", authController.Logout)
			staff.GET("/auth/me", authController.Me)

			staff.GET("/jobs", jobController.List)
			staff.GET("/jobs/stream", jobController.Stream)
			staff.GET("/jobs/code", jobController.GenerateCode)
			staff.POST("/jobs", jobController.Create)
			staff.GET("/jobs/:id", jobController.Get)
			staff.PATCH("/jobs/:id", jobController.Update)
			staff.DELETE("/jobs/:id", jobController.Delete)
			staff.POST("/jobs/:id/photos/:slot", jobController.SetPhoto)
			staff.DELETE("/jobs/:id/photos/:slot", jobController.ClearPhoto)
			staff.GET("/jobs/:id/contact-link", jobController.ContactLink)
		}
	}

	if local, ok := app.media.(*services.LocalMediaHost); ok {
		router.GET(services.UploadsRoute+"/:filename", controllers.ServeUpload(local.Dir()))
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Bengkel Progress API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()
	if db == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Database is not configured",
			},
		})
		return
	}

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	tables, err := db.Migrator().GetTables()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
