package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

type Mailer interface {
	SendPlainTextEmail(ctx context.Context, recipientEmail, subject, body string) error
	SendHTMLEmail(ctx context.Context, recipientEmail, subject, htmlBody string) error
}

type SMTPMailService struct {
	smtpHost     string
	smtpPort     string
	smtpUsername string
	smtpPassword string
	senderEmail  string
}

func NewSMTPMailService(host, port, username, password, from string) *SMTPMailService {
	return &SMTPMailService{
		smtpHost:     host,
		smtpPort:     port,
		smtpUsername: username,
		smtpPassword: password,
		senderEmail:  from,
	}
}

func (s *SMTPMailService) sendEmail(recipientEmail, subject, body string, html bool) error {
	from := s.senderEmail
	to := []string{recipientEmail}

	headers := []string{
		"From: " + from,
		"To: " + recipientEmail,
		"Subject: " + subject,
	}
	if html {
		headers = append(headers,
			"MIME-Version: 1.0",
			"Content-Type: text/html; charset=\"utf-8\"",
		)
	}
	headers = append(headers, "", body)
	msg := []byte(strings.Join(headers, "\r\n"))

	auth := smtp.PlainAuth("", s.smtpUsername, s.smtpPassword, s.smtpHost)
	return smtp.SendMail(fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort), auth, from, to, msg)
}

func (s *SMTPMailService) deliver(ctx context.Context, recipientEmail, subject, body string, html bool) error {
	errChan := make(chan error, 1)
	go func() {
		errChan <- s.sendEmail(recipientEmail, subject, body, html)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return fmt.Errorf("email sending canceled: %w", ctx.Err())
	}
}

func (s *SMTPMailService) SendPlainTextEmail(ctx context.Context, recipientEmail, subject, body string) error {
	return s.deliver(ctx, recipientEmail, subject, body, false)
}

func (s *SMTPMailService) SendHTMLEmail(ctx context.Context, recipientEmail, subject, htmlBody string) error {
	return s.deliver(ctx, recipientEmail, subject, htmlBody, true)
}
