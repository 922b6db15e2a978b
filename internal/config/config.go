// internal/config/config.go
// Centralized configuration management
// Loads from environment variables with sensible defaults

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Environment
	Environment string

	// Marketplace backend
	BackendBaseURL string // REST origin (conversations, message history)
	RealtimeURL    string // websocket endpoint
	SessionToken   string // backend-issued vendor session token

	// Transport
	ReconnectAttempts int
	ReconnectDelay    time.Duration
	HTTPTimeout       time.Duration

	// Composer / chat behaviour
	TypingIdle   time.Duration // keystroke silence before stopTyping
	TypingExpiry time.Duration // receiver-side typing flag expiry

	// Attachment uploads
	UploadProvider        string // "http", "s3", or "mock"
	UploadEndpoint        string // blob endpoint for the http provider
	UploadPreset          string // fixed preset sent with each http upload
	MaxAttachmentSize     int64
	MaxAttachmentsPerSend int

	// S3 provider
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	S3BucketName       string
	CDNBaseURL         string

	// Session cache
	RedisURL string

	// Observability
	MetricsAddr string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),

		BackendBaseURL: getEnv("BACKEND_BASE_URL", "http://localhost:8080"),
		RealtimeURL:    getEnv("REALTIME_URL", "ws://localhost:8080/ws"),
		SessionToken:   getEnv("SESSION_TOKEN", ""),

		ReconnectAttempts: getEnvInt("RECONNECT_ATTEMPTS", 3),
		ReconnectDelay:    getEnvDuration("RECONNECT_DELAY", "3s"),
		HTTPTimeout:       getEnvDuration("HTTP_TIMEOUT", "30s"),

		TypingIdle:   getEnvDuration("TYPING_IDLE", "2s"),
		TypingExpiry: getEnvDuration("TYPING_EXPIRY", "6s"),

		UploadProvider:        getEnv("UPLOAD_PROVIDER", "http"),
		UploadEndpoint:        getEnv("UPLOAD_ENDPOINT", ""),
		UploadPreset:          getEnv("UPLOAD_PRESET", ""),
		MaxAttachmentSize:     getEnvInt64("MAX_ATTACHMENT_SIZE", 10*1024*1024),
		MaxAttachmentsPerSend: getEnvInt("MAX_ATTACHMENTS_PER_SEND", 5),

		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		S3BucketName:       getEnv("S3_BUCKET_NAME", ""),
		CDNBaseURL:         getEnv("CDN_BASE_URL", ""),

		RedisURL: getEnv("REDIS_URL", ""),

		MetricsAddr: getEnv("METRICS_ADDR", ":9090"),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.SessionToken == "" {
		return fmt.Errorf("session token is required")
	}

	if c.BackendBaseURL == "" {
		return fmt.Errorf("backend base URL is required")
	}

	if c.RealtimeURL == "" {
		return fmt.Errorf("realtime URL is required")
	}

	if c.ReconnectAttempts < 1 {
		return fmt.Errorf("reconnect attempts must be positive")
	}

	if c.MaxAttachmentSize <= 0 || c.MaxAttachmentsPerSend <= 0 {
		return fmt.Errorf("attachment limits must be positive")
	}

	switch c.UploadProvider {
	case "http":
		if c.UploadEndpoint == "" {
			return fmt.Errorf("upload endpoint is required for the http provider")
		}
	case "s3":
		if c.AWSAccessKeyID == "" || c.AWSSecretAccessKey == "" || c.S3BucketName == "" {
			return fmt.Errorf("S3 configuration incomplete")
		}
	case "mock":
		if c.Environment == "production" {
			return fmt.Errorf("mock upload provider cannot be used in production")
		}
	default:
		return fmt.Errorf("invalid upload provider: %s", c.UploadProvider)
	}

	return nil
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Helper functions

// getEnv gets a string value from environment with a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment with a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 gets a 64-bit integer value from environment with a default
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration value from environment with a default
func getEnvDuration(key string, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
