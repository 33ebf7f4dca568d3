package notification

import (
	"time"

	"github.com/cloudcitycakeco/cakeorders/internal/config"
)

// SMTPConfig holds connection parameters for the SMTP email sender.
type SMTPConfig struct {
	Host       string `json:"host"`
	Port       int    `json:"port"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	FromAddr   string `json:"from_address"`
	Encryption string `json:"encryption"` // "none", "starttls", "ssl_tls"
}

// TwilioConfig holds credentials for the Twilio messaging and verify APIs.
type TwilioConfig struct {
	AccountSID       string
	AuthToken        string
	FromNumber       string
	VerifyServiceSID string

	// RatePerSecond caps outgoing requests. Zero means unlimited.
	RatePerSecond float64
	// Retries is how often a 429 response is retried.
	Retries int
	// RetryWait is the initial back-off between retries.
	RetryWait time.Duration

	// BaseURL and VerifyBaseURL override the public API hosts (used by tests).
	BaseURL       string
	VerifyBaseURL string
}

const (
	twilioAPIBase    = "https://api.twilio.com"
	twilioVerifyBase = "https://verify.twilio.com"
)

func (c TwilioConfig) apiBase() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return twilioAPIBase
}

func (c TwilioConfig) retryWait() time.Duration {
	if c.RetryWait > 0 {
		return c.RetryWait
	}
	return 500 * time.Millisecond
}

func (c TwilioConfig) verifyBase() string {
	if c.VerifyBaseURL != "" {
		return c.VerifyBaseURL
	}
	return twilioVerifyBase
}

// ChannelTimeouts resolves the per-channel send timeout of every channel from cfg.
func ChannelTimeouts(cfg *config.NotificationConfig) map[Channel]time.Duration {
	out := make(map[Channel]time.Duration, 3)
	for _, c := range []Channel{ChannelEmail, ChannelSMS, ChannelVerifiedSMS} {
		out[c] = cfg.TimeoutFor(string(c))
	}
	return out
}
