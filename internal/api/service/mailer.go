package service

import (
	"fmt"
	"log/slog"
	"net/smtp"

	"reviewhub/internal/config"
)

// Mailer delivers confirmation codes. The service only depends on this
// interface; tests swap in a mock.
type Mailer interface {
	SendConfirmationCode(email, code string)
}

type smtpMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	enabled  bool
	logger   *slog.Logger
}

func NewSMTPMailer(cfg *config.Config, logger *slog.Logger) Mailer {
	if !cfg.MailEnabled() {
		logger.Warn("mailer disabled: missing SMTP environment variables")
	}
	return &smtpMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPass,
		from:     cfg.SMTPFrom,
		enabled:  cfg.MailEnabled(),
		logger:   logger,
	}
}

// SendConfirmationCode mails the code asynchronously; delivery failure is
// logged, not surfaced, so the request path never blocks on SMTP.
func (s *smtpMailer) SendConfirmationCode(email, code string) {
	if !s.enabled {
		s.logger.Info("mailer disabled, skipping confirmation code delivery", "email", email)
		return
	}

	subject := "Your confirmation code"
	body := fmt.Sprintf("Your confirmation code is %s. It expires shortly, use it to obtain an access token.", code)

	go func() {
		auth := smtp.PlainAuth("", s.username, s.password, s.host)
		addr := fmt.Sprintf("%s:%s", s.host, s.port)

		msg := []byte(fmt.Sprintf("To: %s\r\n"+
			"From: %s\r\n"+
			"Subject: %s\r\n"+
			"\r\n%s\r\n", email, s.from, subject, body))

		if err := smtp.SendMail(addr, auth, s.from, []string{email}, msg); err != nil {
			s.logger.Error("failed to send confirmation code", "email", email, "error", err)
			return
		}
		s.logger.Info("confirmation code sent", "email", email)
	}()
}
