package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file::memory:?cache=shared")
	t.Setenv("AUTH_PROVIDER", "local")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("MEDIA_PROVIDER", "cloudinary")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "demo")
	t.Setenv("CLOUDINARY_UPLOAD_PRESET", "unsigned")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxUploadBytes)
	assert.Equal(t, "Bagus Restoration", cfg.ShopName)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.IsTest())
	assert.Same(t, cfg, GetConfig(), "Load should publish the config")
}

func TestLoad_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("LOOKUP_BASE_URL", "https://shop.example/cek")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "https://shop.example/cek", cfg.LookupBaseURL)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SESSION_TTL", "forever")
	t.Setenv("MAX_UPLOAD_BYTES", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxUploadBytes)

	require.Len(t, cfg.Warnings, 2)
	assert.Contains(t, cfg.Warnings[0], `SESSION_TTL="forever"`)
	assert.Contains(t, cfg.Warnings[1], `MAX_UPLOAD_BYTES="lots"`)
}

func TestLoad_NoEnvFile(t *testing.T) {
	setBaseEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.EnvFile)
	assert.Empty(t, cfg.Warnings)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DatabaseDriver:         "postgres",
			DatabaseURL:            "postgresql://localhost/bengkel",
			AuthProvider:           "local",
			JWTSecret:              "secret",
			MediaProvider:          "cloudinary",
			CloudinaryCloudName:    "demo",
			CloudinaryUploadPreset: "preset",
			SessionTTL:             time.Hour,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid config", func(c *Config) {}, ""},
		{"postgres without url", func(c *Config) { c.DatabaseURL = "" }, "DATABASE_URL"},
		{"sqlite without url", func(c *Config) { c.DatabaseDriver = "sqlite"; c.DatabaseURL = "" }, ""},
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "mysql" }, "DB_DRIVER"},
		{"local auth without secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"auth0 without domain", func(c *Config) { c.AuthProvider = "auth0" }, "AUTH0_DOMAIN"},
		{"auth0 complete", func(c *Config) {
			c.AuthProvider = "auth0"
			c.Auth0Domain = "shop.auth0.com"
			c.Auth0Audience = "https://api.shop"
			c.Auth0ClientID = "client"
		}, ""},
		{"unknown auth provider", func(c *Config) { c.AuthProvider = "firebase" }, "AUTH_PROVIDER"},
		{"cloudinary without preset", func(c *Config) { c.CloudinaryUploadPreset = "" }, "CLOUDINARY_UPLOAD_PRESET"},
		{"s3 without bucket", func(c *Config) { c.MediaProvider = "s3" }, "AWS_S3_BUCKET"},
		{"local media in development", func(c *Config) { c.MediaProvider = "local" }, ""},
		{"local media in production", func(c *Config) { c.MediaProvider = "local"; c.GoEnv = "production" }, "not allowed"},
		{"zero session ttl", func(c *Config) { c.SessionTTL = 0 }, "SESSION_TTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvironmentHelpers(t *testing.T) {
	assert.True(t, (&Config{GoEnv: "production"}).IsProduction())
	assert.True(t, (&Config{GoEnv: "development"}).IsDevelopment())
	assert.False(t, (&Config{GoEnv: "test"}).IsDevelopment())
}
