package services

import (
	"crypto/tls"
	"fmt"
	"net/smtp"

	"github.com/esports-arena/tournament-hub/config"
)

// EmailService sends transactional mail over SMTP. Delivery is best-effort:
// callers log failures instead of failing the request.
type EmailService struct {
	cfg *config.Config
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{cfg: cfg}
}

// Enabled reports whether SMTP is configured at all.
func (s *EmailService) Enabled() bool {
	return s.cfg.SMTPHost != ""
}

func (s *EmailService) SendEmail(to []string, subject string, body string) error {
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)

	msg := []byte("To: " + to[0] + "\r\n" +
		"From: " + s.cfg.SMTPFrom + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	tlsconfig := &tls.Config{
		ServerName: s.cfg.SMTPHost,
	}

	var client *smtp.Client
	if s.cfg.SMTPPort == 465 {
		// Direct TLS connection.
		conn, err := tls.Dial("tcp", addr, tlsconfig)
		if err != nil {
			return fmt.Errorf("smtp tls dial failed: %w", err)
		}
		defer conn.Close()
		client, err = smtp.NewClient(conn, s.cfg.SMTPHost)
		if err != nil {
			return fmt.Errorf("failed to create smtp client: %w", err)
		}
	} else {
		// STARTTLS, usually port 587.
		c, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("smtp dial failed: %w", err)
		}
		client = c
		if err = client.StartTLS(tlsconfig); err != nil {
			client.Close()
			return fmt.Errorf("starttls failed: %w", err)
		}
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth failed: %w", err)
	}
	if err := client.Mail(s.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("RCPT TO failed: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close DATA: %w", err)
	}

	return nil
}

func (s *EmailService) SendWelcomeEmail(userEmail, username string) error {
	subject := "Welcome to Tournament Hub!"
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your Tournament Hub account is ready. Top up your wallet and join your first tournament!</p>",
		username,
	)
	return s.SendEmail([]string{userEmail}, subject, body)
}

func (s *EmailService) SendPasswordResetEmail(userEmail, resetToken string) error {
	subject := "Tournament Hub password reset"
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.FrontendOrigin, resetToken)
	body := fmt.Sprintf(
		"<p>A password reset was requested for this address.</p><p><a href=%q>Reset your password</a> (the link expires in 10 minutes).</p>",
		resetLink,
	)
	return s.SendEmail([]string{userEmail}, subject, body)
}
