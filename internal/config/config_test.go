package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "http://localhost:8080", cfg.BackendBaseURL)
	assert.Equal(t, "ws://localhost:8080/ws", cfg.RealtimeURL)
	assert.Equal(t, 3, cfg.ReconnectAttempts)
	assert.Equal(t, 3*time.Second, cfg.ReconnectDelay)
	assert.Equal(t, 2*time.Second, cfg.TypingIdle)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxAttachmentSize)
	assert.Equal(t, 5, cfg.MaxAttachmentsPerSend)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("RECONNECT_ATTEMPTS", "7")
	t.Setenv("RECONNECT_DELAY", "500ms")
	t.Setenv("UPLOAD_PROVIDER", "s3")

	cfg := Load()
	assert.Equal(t, 7, cfg.ReconnectAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.ReconnectDelay)
	assert.Equal(t, "s3", cfg.UploadProvider)
}

func TestLoadIgnoresBadValues(t *testing.T) {
	t.Setenv("RECONNECT_ATTEMPTS", "many")
	t.Setenv("RECONNECT_DELAY", "soon")

	cfg := Load()
	assert.Equal(t, 3, cfg.ReconnectAttempts)
	assert.Equal(t, 3*time.Second, cfg.ReconnectDelay)
}

func validConfig() *Config {
	return &Config{
		Environment:           "development",
		BackendBaseURL:        "http://localhost:8080",
		RealtimeURL:           "ws://localhost:8080/ws",
		SessionToken:          "token",
		ReconnectAttempts:     3,
		MaxAttachmentSize:     10 * 1024 * 1024,
		MaxAttachmentsPerSend: 5,
		UploadProvider:        "mock",
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRequiresSessionToken(t *testing.T) {
	cfg := validConfig()
	cfg.SessionToken = ""
	assert.ErrorContains(t, cfg.Validate(), "session token")
}

func TestValidateHTTPProviderNeedsEndpoint(t *testing.T) {
	cfg := validConfig()
	cfg.UploadProvider = "http"
	assert.ErrorContains(t, cfg.Validate(), "upload endpoint")

	cfg.UploadEndpoint = "https://blob.example.com/upload"
	assert.NoError(t, cfg.Validate())
}

func TestValidateS3ProviderNeedsCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.UploadProvider = "s3"
	assert.ErrorContains(t, cfg.Validate(), "S3 configuration")

	cfg.AWSAccessKeyID = "key"
	cfg.AWSSecretAccessKey = "secret"
	cfg.S3BucketName = "attachments"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsMockInProduction(t *testing.T) {
	cfg := validConfig()
	cfg.Environment = "production"
	assert.ErrorContains(t, cfg.Validate(), "mock upload provider")
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	cfg := validConfig()
	cfg.UploadProvider = "ftp"
	assert.ErrorContains(t, cfg.Validate(), "invalid upload provider")
}
