package notification

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPSender delivers order emails via SMTP using the go-mail library.
type SMTPSender struct {
	config SMTPConfig
}

// NewSMTPSender creates a new SMTPSender with the given configuration.
func NewSMTPSender(config SMTPConfig) *SMTPSender {
	return &SMTPSender{config: config}
}

// Name returns the provider identifier.
func (p *SMTPSender) Name() string { return "smtp" }

// SendEmail delivers one message to a single recipient.
func (p *SMTPSender) SendEmail(ctx context.Context, to, subject, body string) error {
	m, err := p.buildMessage(to, subject, body)
	if err != nil {
		return &SendError{Provider: p.Name(), Err: err}
	}

	c, err := mail.NewClient(p.config.Host,
		mail.WithPort(p.config.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(p.config.Username),
		mail.WithPassword(p.config.Password),
		mail.WithTLSPolicy(tlsPolicyFromEncryption(p.config.Encryption)),
	)
	if err != nil {
		return &SendError{Provider: p.Name(), Err: fmt.Errorf("creating mail client: %w", err)}
	}

	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return &SendError{Provider: p.Name(), Err: err}
	}
	return nil
}

func (p *SMTPSender) buildMessage(to, subject, body string) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(p.config.FromAddr); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	m.Subject(subject)

	// Plain-text fallback for clients that don't render HTML.
	m.SetBodyString(mail.TypeTextPlain, body)
	if html, err := buildEmailHTML(subject, body); err == nil {
		m.AddAlternativeString(mail.TypeTextHTML, html)
	}
	return m, nil
}

// tlsPolicyFromEncryption converts the encryption string to a go-mail TLSPolicy.
func tlsPolicyFromEncryption(enc string) mail.TLSPolicy {
	switch enc {
	case "ssl_tls":
		return mail.TLSMandatory
	case "starttls":
		return mail.TLSOpportunistic
	default:
		return mail.NoTLS
	}
}
