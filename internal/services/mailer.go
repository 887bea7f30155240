package services

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"net/smtp"

	"github.com/btechub/portal-backend/internal/config"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer delivers plain-text transactional email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
	// Live is false when messages are only logged.
	Live() bool
}

// NewMailer picks SendGrid when an API key is set, then SMTP, then a
// log-only mailer for local development.
func NewMailer(cfg *config.Config) Mailer {
	switch {
	case cfg.SendGridAPIKey != "":
		return &sendGridMailer{
			key:  cfg.SendGridAPIKey,
			host: "https://api.sendgrid.com",
			from: sgmail.NewEmail(cfg.MailFromName, cfg.MailFrom),
		}
	case cfg.SMTPHost != "":
		return &smtpMailer{
			addr: cfg.SMTPHost + ":" + cfg.SMTPPort,
			host: cfg.SMTPHost,
			user: cfg.SMTPUser,
			pass: cfg.SMTPPassword,
			from: cfg.MailFrom,
		}
	default:
		return logMailer{}
	}
}

type sendGridMailer struct {
	key  string
	host string
	from *sgmail.Email
}

func (m *sendGridMailer) Live() bool { return true }

func (m *sendGridMailer) Send(_ context.Context, to, subject, body string) error {
	p := sgmail.NewPersonalization()
	p.Subject = subject
	p.AddTos(sgmail.NewEmail("", to))

	message := sgmail.NewV3Mail()
	message.SetFrom(m.from)
	message.AddPersonalizations(p)
	message.AddContent(sgmail.NewContent("text/plain", body))

	req := sendgrid.GetRequest(m.key, "/v3/mail/send", m.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(message)

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

type smtpMailer struct {
	addr string
	host string
	user string
	pass string
	from string
}

func (m *smtpMailer) Live() bool { return true }

func (m *smtpMailer) Send(_ context.Context, to, subject, body string) error {
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}
	if err := smtp.SendMail(m.addr, auth, m.from, []string{to}, smtpMessage(m.from, to, subject, body)); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}

// smtpMessage builds a plain-text message. The subject is RFC 2047
// encoded so Arabic survives 7-bit headers.
func smtpMessage(from, to, subject, body string) []byte {
	return []byte("From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n\r\n" +
		body)
}

type logMailer struct{}

func (logMailer) Live() bool { return false }

func (logMailer) Send(_ context.Context, to, subject, _ string) error {
	slog.Info("mail transport not configured, skipping delivery", "to", to, "subject", subject)
	return nil
}
