package channels

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/config"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/logger"
)

// EmailSender delivers messages over SMTP
type EmailSender struct {
	cfg    config.EmailConfig
	logger *logger.Logger
}

// NewEmailSender creates an SMTP-backed email sender
func NewEmailSender(cfg config.EmailConfig, log *logger.Logger) *EmailSender {
	return &EmailSender{cfg: cfg, logger: log}
}

// Send sends an email message
func (s *EmailSender) Send(ctx context.Context, msg Message) error {
	from := s.cfg.FromAddress
	if s.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.FromAddress)
	}

	message := fmt.Sprintf("From: %s\r\n", from)
	message += fmt.Sprintf("To: %s\r\n", msg.To)
	message += fmt.Sprintf("Subject: %s\r\n", msg.Subject)
	message += "MIME-Version: 1.0\r\n"
	message += "Content-Type: text/plain; charset=UTF-8\r\n"
	message += "\r\n"
	message += msg.Body

	var auth smtp.Auth
	if s.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	if err := smtp.SendMail(addr, auth, s.cfg.FromAddress, []string{msg.To}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Debug("Email sent", logger.String("to", msg.To))
	return nil
}
