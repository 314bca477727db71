package mailer

import (
	"crypto/tls"
	"fmt"
	"io"

	mail "github.com/go-mail/mail/v2"
	"github.com/odvhub/odvhub-backend/config"
)

// Mailer dispatches mail over SMTP. It is one of the artifact collaborators:
// callers treat a failed send as a warning, never as a fatal error.
type Mailer interface {
	Send(to []string, subject, htmlBody string) error
	// SendWithAttachment attaches an in-memory document, so artifacts stored
	// remotely never have to touch the local filesystem.
	SendWithAttachment(to []string, subject, htmlBody, filename string, attachment []byte) error
}

type smtpMailer struct {
	cfg config.SMTPConfig
}

func New(cfg config.SMTPConfig) Mailer {
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) Send(to []string, subject, htmlBody string) error {
	return m.send(to, subject, htmlBody, "", nil)
}

func (m *smtpMailer) SendWithAttachment(to []string, subject, htmlBody, filename string, attachment []byte) error {
	return m.send(to, subject, htmlBody, filename, attachment)
}

func (m *smtpMailer) send(to []string, subject, htmlBody, filename string, attachment []byte) error {
	if len(to) == 0 {
		return nil
	}
	if m.cfg.Host == "" || m.cfg.From == "" {
		return fmt.Errorf("smtp not configured (SMTP_HOST/SMTP_FROM)")
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	if filename != "" {
		msg.Attach(filename, mail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(attachment)
			return err
		}))
	}

	d := mail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Password)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName: m.cfg.Host,
	}

	return d.DialAndSend(msg)
}
