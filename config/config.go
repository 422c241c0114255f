package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL    string
	DatabaseDriver string
	Port           string
	GoEnv          string
	LogLevel       string

	// Identity provider: "local" or "auth0"
	AuthProvider      string
	Auth0Domain       string
	Auth0Audience     string
	Auth0ClientID     string
	Auth0ClientSecret string
	Auth0Realm        string
	JWTSecret         string
	SessionTTL        time.Duration

	// Media host: "cloudinary", "s3" or "local"
	MediaProvider          string
	CloudinaryCloudName    string
	CloudinaryUploadPreset string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryAPIBase      string
	AWSRegion              string
	AWSS3Bucket            string
	AWSAccessKeyID         string
	AWSSecretAccessKey     string
	AWSS3PublicBaseURL     string
	MaxUploadBytes         int64
	UploadDir              string
	PublicBaseURL          string

	ShopName           string
	LookupBaseURL      string
	CORSAllowedOrigins []string
	LookupRateLimit    int

	// EnvFile is the .env file Load read, empty when only the process environment was used
	EnvFile string
	// Warnings lists variables Load ignored because they did not parse
	Warnings []string
}

var current *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		envFile = ".env"
		if err := godotenv.Load(); err != nil {
			// Hosted deployments set variables directly
			envFile = ""
		}
	}

	r := &envReader{}

	cfg := &Config{
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DatabaseDriver: strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		Port:           getEnv("PORT", "8080"),
		GoEnv:          getEnv("GO_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),

		AuthProvider:      strings.ToLower(getEnv("AUTH_PROVIDER", "local")),
		Auth0Domain:       getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:     getEnv("AUTH0_AUDIENCE", ""),
		Auth0ClientID:     getEnv("AUTH0_CLIENT_ID", ""),
		Auth0ClientSecret: getEnv("AUTH0_CLIENT_SECRET", ""),
		Auth0Realm:        getEnv("AUTH0_REALM", "Username-Password-Authentication"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		SessionTTL:        r.getDuration("SESSION_TTL", 12*time.Hour),

		MediaProvider:          strings.ToLower(getEnv("MEDIA_PROVIDER", "cloudinary")),
		CloudinaryCloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryUploadPreset: getEnv("CLOUDINARY_UPLOAD_PRESET", ""),
		CloudinaryAPIKey:       getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret:    getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryAPIBase:      getEnv("CLOUDINARY_API_BASE", "https://api.cloudinary.com"),
		AWSRegion:              getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:            getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:         getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:     getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSS3PublicBaseURL:     getEnv("AWS_S3_PUBLIC_BASE_URL", ""),
		MaxUploadBytes:         r.getInt64("MAX_UPLOAD_BYTES", 5*1024*1024),
		UploadDir:              getEnv("UPLOAD_DIR", "./uploads"),
		PublicBaseURL:          getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),

		ShopName:           getEnv("SHOP_NAME", "Bagus Restoration"),
		LookupBaseURL:      getEnv("LOOKUP_BASE_URL", "http://localhost:3000/cek"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		LookupRateLimit:    int(r.getInt64("LOOKUP_RATE_LIMIT", 60)),
	}

	cfg.EnvFile = envFile
	cfg.Warnings = r.warnings

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	current = cfg
	return cfg, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	case "sqlite":
		// an empty DATABASE_URL falls back to a local file
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DatabaseDriver)
	}

	switch c.AuthProvider {
	case "local":
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_PROVIDER=local")
		}
	case "auth0":
		if c.Auth0Domain == "" || c.Auth0Audience == "" || c.Auth0ClientID == "" {
			return fmt.Errorf("AUTH0_DOMAIN, AUTH0_AUDIENCE and AUTH0_CLIENT_ID are required when AUTH_PROVIDER=auth0")
		}
	default:
		return fmt.Errorf("unsupported AUTH_PROVIDER %q", c.AuthProvider)
	}

	switch c.MediaProvider {
	case "cloudinary":
		if c.CloudinaryCloudName == "" {
			return fmt.Errorf("CLOUDINARY_CLOUD_NAME is required when MEDIA_PROVIDER=cloudinary")
		}
		if c.CloudinaryUploadPreset == "" {
			return fmt.Errorf("CLOUDINARY_UPLOAD_PRESET is required when MEDIA_PROVIDER=cloudinary")
		}
	case "s3":
		if c.AWSS3Bucket == "" {
			return fmt.Errorf("AWS_S3_BUCKET is required when MEDIA_PROVIDER=s3")
		}
	case "local":
		if c.IsProduction() {
			return fmt.Errorf("MEDIA_PROVIDER=local is not allowed in production")
		}
	default:
		return fmt.Errorf("unsupported MEDIA_PROVIDER %q", c.MediaProvider)
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// GetConfig returns the configuration loaded by the last successful Load
func GetConfig() *Config {
	return current
}

// SetConfig replaces the process-wide configuration (primarily for testing)
func SetConfig(cfg *Config) {
	current = cfg
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envReader parses typed variables, keeping a note for each value it had to ignore
type envReader struct {
	warnings []string
}

func (r *envReader) ignore(key, raw string, err error) {
	r.warnings = append(r.warnings, fmt.Sprintf("ignoring invalid %s=%q: %v", key, raw, err))
}

func (r *envReader) getInt64(key string, defaultValue int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		r.ignore(key, raw, err)
		return defaultValue
	}
	return v
}

func (r *envReader) getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		r.ignore(key, raw, err)
		return defaultValue
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
