// ABOUTME: SMTP mailer delivers the finished digest as an HTML email
// ABOUTME: Disabled unless every SMTP setting is present

package smtp

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"community-digest/core/interfaces"
)

// ErrMailDisabled is returned when SMTP settings are incomplete
var ErrMailDisabled = errors.New("mail disabled: missing SMTP settings")

// Config holds the SMTP connection settings
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// SendFunc matches smtp.SendMail
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer implements interfaces.Mailer over SMTP
type Mailer struct {
	cfg    Config
	logger interfaces.Logger
	send   SendFunc
	now    func() time.Time
}

// New creates a Mailer. A nil logger discards messages.
func New(cfg Config, logger interfaces.Logger) *Mailer {
	if logger == nil {
		logger = interfaces.NopLogger{}
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &Mailer{
		cfg:    cfg,
		logger: logger,
		send:   smtp.SendMail,
		now:    time.Now,
	}
}

// Enabled reports whether every setting needed to send is present
func (m *Mailer) Enabled() bool {
	return m.cfg.Host != "" && m.cfg.Username != "" && m.cfg.Password != "" &&
		m.cfg.From != "" && len(m.recipients()) > 0
}

// Send delivers htmlBody to the configured recipients
func (m *Mailer) Send(ctx context.Context, subject, htmlBody string) error {
	if !m.Enabled() {
		m.logger.Warn("Mail disabled: missing SMTP settings", nil)
		return ErrMailDisabled
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	to := m.recipients()
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	msg := m.buildMessage(to, subject, htmlBody)

	done := make(chan error, 1)
	go func() {
		done <- m.send(addr, auth, m.cfg.From, to, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			m.logger.Error("Failed to send email", map[string]interface{}{
				"to":    strings.Join(to, ","),
				"error": err.Error(),
			})
			return fmt.Errorf("send email: %w", err)
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	m.logger.Info("Email sent", map[string]interface{}{
		"to":      strings.Join(to, ","),
		"subject": subject,
	})
	return nil
}

func (m *Mailer) recipients() []string {
	var to []string
	for _, addr := range m.cfg.To {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}
	return to
}

func (m *Mailer) buildMessage(to []string, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: " + m.cfg.From + "\r\n")
	b.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("Date: " + m.now().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}
