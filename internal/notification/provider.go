// Package notification decides which customer notifications an order status
// change triggers and delivers them through the configured transports
// (email over SMTP, SMS and phone verification over Twilio).
package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudcitycakeco/cakeorders/internal/order"
)

// Channel is a notification medium.
type Channel string

// Supported channels.
const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	// ChannelVerifiedSMS is SMS that is only sent to phone numbers the
	// customer has confirmed through phone verification.
	ChannelVerifiedSMS Channel = "verified_sms"
)

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelVerifiedSMS:
		return true
	}
	return false
}

// Recipient returns the contact field the channel delivers to, or "" when the
// snapshot has none.
func Recipient(c Channel, contact order.Contact) string {
	switch c {
	case ChannelEmail:
		return strings.TrimSpace(contact.Email)
	case ChannelSMS, ChannelVerifiedSMS:
		return strings.TrimSpace(contact.Phone)
	}
	return ""
}

// Intent is one rendered notification, ready to hand to a transport.
type Intent struct {
	Channel   Channel
	Recipient string
	Subject   string
	Body      string
}

// EmailSender is the email transport capability.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender is the SMS transport capability.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// PhoneVerifier sends and checks one-time phone verification codes.
type PhoneVerifier interface {
	StartVerification(ctx context.Context, phone string) error
	// CheckVerification returns true when code is the one sent to phone.
	CheckVerification(ctx context.Context, phone, code string) (bool, error)
}

// SendError is a provider-level delivery failure.
type SendError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *SendError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }
