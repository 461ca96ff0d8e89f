package infra

import (
	"errors"
	"fmt"
	"net/smtp"

	"b2bportal/internal/config"

	"github.com/jordan-wright/email"
)

// ErrMailNotConfigured is returned when SMTP_HOST is empty.
var ErrMailNotConfigured = errors.New("smtp not configured")

// Mail is a plain-text message with optional file attachments.
type Mail struct {
	From        string
	To          []string
	Subject     string
	Body        string
	Attachments []string // file paths
}

// MailSender is implemented by Mailer and by test doubles.
type MailSender interface {
	Send(m Mail) error
}

// Mailer wraps SMTP configuration for sending staff e-mails.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.MailFrom,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// Send delivers m. An empty From falls back to MAIL_FROM.
func (m *Mailer) Send(msg Mail) error {
	if m.host == "" {
		return ErrMailNotConfigured
	}
	if len(msg.To) == 0 {
		return errors.New("mailer: no recipients")
	}

	e := email.NewEmail()
	e.From = msg.From
	if e.From == "" {
		e.From = m.from
	}
	e.To = msg.To
	e.Subject = msg.Subject
	e.Text = []byte(msg.Body)

	for _, path := range msg.Attachments {
		if _, err := e.AttachFile(path); err != nil {
			return fmt.Errorf("mailer: attach %s: %w", path, err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return e.Send(m.addr, auth)
}
