package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/astrovaani/auth-service/pkg/sms"
)

const dispatchTimeout = 30 * time.Second

// dispatchSMS sends in the background and reports the outcome on the
// returned channel, so tests can assert a dispatch was attempted even though
// it never gates the HTTP response.
func (s *AuthService) dispatchSMS(phoneNumber, countryCode, message string) <-chan sms.DispatchResult {
	results := make(chan sms.DispatchResult, 1)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		result := s.sms.Send(ctx, phoneNumber, countryCode, message)
		if result.Success {
			s.log.Info("sms dispatched",
				zap.String("country_code", countryCode),
				zap.String("message_id", result.MessageID))
		} else {
			// Deliberate availability tradeoff: the code stays redeemable,
			// so a delivery failure is logged and swallowed.
			s.log.Error("sms dispatch failed",
				zap.String("country_code", countryCode),
				zap.Error(result.Err))
		}
		results <- result
	}()

	return results
}

// sendWelcomeEmail is best effort; registration has already committed by the
// time it runs.
func (s *AuthService) sendWelcomeEmail(email, fullName string) {
	if email == "" || s.mailer == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		subject := "Welcome to AstroVaani"
		body := fmt.Sprintf("Namaste %s,\n\nYour AstroVaani account is ready. Book your first consultation any time.\n\nThe AstroVaani Team", fullName)
		if err := s.mailer.SendPlainTextEmail(ctx, email, subject, body); err != nil {
			s.log.Error("welcome email dispatch failed", zap.Error(err))
		}
	}()
}
