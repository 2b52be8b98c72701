package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/astrovaani/auth-service/internal/auth/model"
	"github.com/astrovaani/auth-service/internal/errs"
	"github.com/astrovaani/auth-service/pkg/ids"
	"github.com/astrovaani/auth-service/pkg/otp"
)

// SendOtp issues a fresh code for the given phone and purpose. The code row
// is persisted before dispatch so it stays redeemable even when SMS delivery
// fails; delivery is asynchronous and never gates the response.
func (s *AuthService) SendOtp(ctx context.Context, req model.SendOtpRequest, meta model.RequestMeta) error {
	rateKey := otpRateLimitPrefix + req.CountryCode + req.PhoneNumber
	allowed, err := s.cache.Allow(ctx, rateKey, otpRateLimitMax, otpRateLimitWindow)
	if err != nil {
		s.log.Warn("otp rate limiter unavailable", zap.Error(err))
	} else if !allowed {
		return errs.ErrTooManyRequests
	}

	code, err := otp.GenerateCode()
	if err != nil {
		s.log.Error("otp generation failed", zap.Error(err))
		return errs.ErrSomethingWentWrong
	}
	now := time.Now()
	rec := &model.OtpVerification{
		ID:          ids.NewKSUID(),
		PhoneNumber: req.PhoneNumber,
		CountryCode: req.CountryCode,
		Code:        code,
		Purpose:     req.Purpose,
		ExpiresAt:   now.Add(model.OtpTTL),
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
		CreatedAt:   now,
	}

	if err := s.repos.Otps(s.db).Create(ctx, rec); err != nil {
		s.log.Error("failed to persist otp", zap.Error(err))
		return errs.ErrSomethingWentWrong
	}

	s.recordEvent(ctx, nil, model.EventOtpSent,
		fmt.Sprintf("OTP issued for %s", req.Purpose), model.RiskLow, meta,
		map[string]interface{}{"purpose": req.Purpose, "country_code": req.CountryCode})

	message := fmt.Sprintf("%s is your AstroVaani verification code. It expires in 10 minutes. Do not share it with anyone.", code)
	s.dispatchSMS(req.PhoneNumber, req.CountryCode, message)

	return nil
}

// redeemOtp wraps the conditional-update redemption with the uniform
// "invalid or expired" failure the callers return.
func (s *AuthService) redeemOtp(ctx context.Context, phoneNumber, countryCode, purpose, code string) error {
	ok, err := s.repos.Otps(s.db).Redeem(ctx, phoneNumber, countryCode, purpose, code, time.Now())
	if err != nil {
		s.log.Error("otp redemption failed", zap.Error(err))
		return errs.ErrSomethingWentWrong
	}
	if !ok {
		return errs.ErrInvalidOrExpiredOTP
	}
	return nil
}
