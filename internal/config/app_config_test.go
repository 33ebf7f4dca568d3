package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppConfig_SlogLevel(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		want     slog.Level
	}{
		{"debug", "debug", slog.LevelDebug},
		{"info", "info", slog.LevelInfo},
		{"warn", "warn", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"unknown defaults to info", "unknown", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &AppConfig{LogLevel: tt.logLevel}
			assert.Equal(t, tt.want, c.SlogLevel())
		})
	}
}

func TestAppConfig_DirectoryPaths(t *testing.T) {
	c := &AppConfig{DataDir: "/data"}

	tests := []struct {
		name string
		fn   func() string
		want string
	}{
		{"LogDir", c.LogDir, "/data/logs"},
		{"DBPath", c.DBPath, "/data/cakeorders.db"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn())
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CAKEORDERS_DATA_DIR", "/tmp/test-cakeorders")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_FROM", "orders@example.com")
	t.Setenv("TWILIO_ACCOUNT_SID", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("CAKEORDERS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/test-cakeorders", cfg.DataDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, 30, cfg.LogRetentionDays)
	assert.Equal(t, 30*24*time.Hour, cfg.LogRetention())
	assert.Equal(t, "03:15", cfg.PruneAt)
	assert.Empty(t, cfg.OTLPEndpoint)
	assert.InDelta(t, 1.0, cfg.TwilioRatePerSecond, 0.0001)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.EmailEnabled())
	assert.False(t, cfg.SMSEnabled())
	assert.False(t, cfg.VerifyEnabled())
}

func TestAppConfig_TransportToggles(t *testing.T) {
	c := &AppConfig{
		TwilioAccountSID:       "AC123",
		TwilioAuthToken:        "token",
		TwilioFromNumber:       "+15550000000",
		TwilioVerifyServiceSID: "VA123",
	}
	assert.False(t, c.EmailEnabled())
	assert.True(t, c.SMSEnabled())
	assert.True(t, c.VerifyEnabled())
}
