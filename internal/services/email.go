package services

import (
	"context"
	"fmt"
	"net/smtp"

	"stockroom/internal/config"
	"stockroom/internal/logger"
	"stockroom/internal/utils/helpers"

	"go.uber.org/zap"
)

type EmailJob struct {
	To      []string
	ReplyTo string
	Subject string
	Body    string
	IsHTML  bool
}

// Transport delivers a single message; EmailService is the SMTP one.
type Transport interface {
	Send(job EmailJob) error
}

type EmailService struct {
	auth    smtp.Auth
	from    string
	host    string
	port    string
	support string
	queue   chan EmailJob
}

func NewEmailService(cfg *config.Config) *EmailService {
	auth := smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	return &EmailService{
		auth:    auth,
		from:    cfg.SMTPUser,
		host:    cfg.SMTPHost,
		port:    cfg.SMTPPort,
		support: cfg.SupportEmail,
		queue:   make(chan EmailJob, 100),
	}
}

func (s *EmailService) Send(job EmailJob) error {
	headers := "From: " + s.from + "\r\n" +
		"Subject: " + job.Subject + "\r\n"
	if job.ReplyTo != "" {
		headers += "Reply-To: " + job.ReplyTo + "\r\n"
	}
	if job.IsHTML {
		headers += "MIME-Version: 1.0\r\nContent-Type: text/html; charset=\"utf-8\"\r\n"
	} else {
		headers += "Content-Type: text/plain; charset=\"utf-8\"\r\n"
	}
	msg := []byte(headers + "\r\n" + job.Body)

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, s.auth, s.from, job.To, msg)
}

// Enqueue hands a message to the background workers; delivery is
// fire-and-forget and never blocks the request path on SMTP.
func (s *EmailService) Enqueue(job EmailJob) {
	select {
	case s.queue <- job:
	default:
		logger.Log.Warn("email queue full, dropping message", zap.Strings("to", job.To))
	}
}

// StartWorkers drains the queue; failures are logged, never surfaced.
func (s *EmailService) StartWorkers(n int) {
	for i := 0; i < n; i++ {
		go func() {
			for job := range s.queue {
				if err := s.Send(job); err != nil {
					logger.Log.Error("email delivery failed", zap.Error(err), zap.Strings("to", job.To))
				}
			}
		}()
	}
}

// SendPasswordReset satisfies the PasswordService mailer contract.
func (s *EmailService) SendPasswordReset(ctx context.Context, to, name, resetLink string) error {
	s.Enqueue(EmailJob{
		To:      []string{to},
		Subject: "Password reset request",
		Body:    helpers.BuildPasswordResetHTML(name, resetLink),
		IsHTML:  true,
	})
	return nil
}

// SendContact forwards a contact-us message to support with the user's
// address as Reply-To.
func (s *EmailService) SendContact(ctx context.Context, fromEmail, subject, message string) {
	s.Enqueue(EmailJob{
		To:      []string{s.support},
		ReplyTo: fromEmail,
		Subject: subject,
		Body:    message,
	})
}
