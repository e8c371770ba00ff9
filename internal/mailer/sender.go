// Package mailer renders and sends the confirmation email.
package mailer

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/iliyamo/photoshare-api/internal/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

var confirmTmpl = template.Must(template.ParseFS(templateFS, "templates/confirm_email.html"))

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	// SSL selects implicit TLS (port 465).  Otherwise STARTTLS is used
	// when the server offers it.
	SSL     bool
	Timeout time.Duration
}

// Transport delivers composed messages.  *mail.Client satisfies it.
type Transport interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// NewSMTPTransport builds a go-mail client from cfg.
func NewSMTPTransport(cfg Config) (*mail.Client, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is empty")
	}
	var opts []mail.Option
	if cfg.Port > 0 {
		opts = append(opts, mail.WithPort(cfg.Port))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	if cfg.SSL {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	return mail.NewClient(cfg.Host, opts...)
}

// LogTransport only logs what would have been sent.  It stands in for
// SMTP when no host is configured.
type LogTransport struct{}

func (LogTransport) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	for _, m := range messages {
		to, err := m.GetRecipients()
		if err != nil {
			return err
		}
		logger.Log.Info("mail not sent, smtp disabled", "to", to, "subject", m.GetGenHeader(mail.HeaderSubject))
	}
	return nil
}

// Sender composes messages and hands them to a Transport.
type Sender struct {
	transport Transport
	from      string
	fromName  string
}

func NewSender(t Transport, from, fromName string) *Sender {
	return &Sender{transport: t, from: from, fromName: fromName}
}

type confirmData struct {
	Username string
	Link     string
}

// SendConfirmation mails the confirmation link to one recipient.
func (s *Sender) SendConfirmation(ctx context.Context, to, username, link string) error {
	m, err := s.confirmationMessage(to, username, link)
	if err != nil {
		return err
	}
	if err := s.transport.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}
	return nil
}

func (s *Sender) confirmationMessage(to, username, link string) (*mail.Msg, error) {
	m := mail.NewMsg(mail.WithEncoding(mail.NoEncoding))
	if err := m.FromFormat(s.fromName, s.from); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	m.Subject("Confirm your email")
	if err := m.SetBodyHTMLTemplate(confirmTmpl, confirmData{Username: username, Link: link}); err != nil {
		return nil, fmt.Errorf("render body: %w", err)
	}
	return m, nil
}
