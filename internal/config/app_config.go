package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// AppConfig holds all application-level configuration loaded from environment variables.
type AppConfig struct {
	// Port is the HTTP server port. Defaults to 8990.
	Port int `envconfig:"PORT" default:"8990"`

	// DataDir is the root data directory. Defaults to ~/.cakeorders.
	DataDir string `envconfig:"CAKEORDERS_DATA_DIR"`

	// LogLevel sets the minimum log level (debug, info, warn, error). Defaults to info.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// RulesFile points at the YAML file holding the order workflow and the
	// notification rules. When empty the built-in defaults are used.
	RulesFile string `envconfig:"CAKEORDERS_RULES_FILE"`

	// LogRetentionDays is how long notification log rows are kept. 0 disables pruning.
	LogRetentionDays int `envconfig:"CAKEORDERS_LOG_RETENTION_DAYS" default:"30"`

	// PruneAt is the local wall-clock time (HH:MM) of the daily log prune.
	PruneAt string `envconfig:"CAKEORDERS_PRUNE_AT" default:"03:15"`

	// OTLPEndpoint enables trace export over OTLP/gRPC when set (host:port).
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// AllowedOrigins is the CORS allow-list for the JSON API.
	AllowedOrigins []string `envconfig:"CAKEORDERS_ALLOWED_ORIGINS" default:"http://localhost:5173"`

	SMTPHost       string `envconfig:"SMTP_HOST"`
	SMTPPort       int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername   string `envconfig:"SMTP_USERNAME"`
	SMTPPassword   string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom       string `envconfig:"SMTP_FROM"`
	SMTPEncryption string `envconfig:"SMTP_ENCRYPTION" default:"starttls"`

	TwilioAccountSID string `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber string `envconfig:"TWILIO_FROM_NUMBER"`
	// TwilioVerifyServiceSID enables phone verification when set.
	TwilioVerifyServiceSID string `envconfig:"TWILIO_VERIFY_SERVICE_SID"`
	// TwilioRatePerSecond caps Twilio API calls. 0 disables the limit.
	TwilioRatePerSecond float64 `envconfig:"TWILIO_RATE_PER_SECOND" default:"1"`
}

// Load reads AppConfig from environment variables using envconfig.
// A .env file in the working directory is loaded first when present; real
// environment variables win over it. DataDir defaults to ~/.cakeorders.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	var c AppConfig
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, ".cakeorders")
	}
	return &c, nil
}

// SlogLevel converts the LogLevel string to a slog.Level.
// Unknown values default to slog.LevelInfo.
func (c *AppConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogRetention returns LogRetentionDays as a duration.
func (c *AppConfig) LogRetention() time.Duration {
	return time.Duration(c.LogRetentionDays) * 24 * time.Hour
}

// LogDir returns the path to the log directory (~/.cakeorders/logs).
func (c *AppConfig) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// DBPath returns the path to the SQLite database file.
func (c *AppConfig) DBPath() string {
	return filepath.Join(c.DataDir, "cakeorders.db")
}

// EmailEnabled reports whether enough SMTP settings are present to send email.
func (c *AppConfig) EmailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

// SMSEnabled reports whether Twilio messaging credentials are present.
func (c *AppConfig) SMSEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFromNumber != ""
}

// VerifyEnabled reports whether Twilio Verify is configured.
func (c *AppConfig) VerifyEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioVerifyServiceSID != ""
}
