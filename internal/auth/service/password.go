package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/astrovaani/auth-service/internal/auth/model"
	"github.com/astrovaani/auth-service/internal/auth/repository"
	"github.com/astrovaani/auth-service/internal/errs"
	"github.com/astrovaani/auth-service/pkg/password"
)

// ForgotPassword always reports the same message; whether the phone is
// registered only decides if a reset code actually goes out.
func (s *AuthService) ForgotPassword(ctx context.Context, req model.ForgotPasswordRequest, meta model.RequestMeta) error {
	user, err := s.repos.Users(s.db).GetByPhone(ctx, req.PhoneNumber, req.CountryCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		s.log.Error("forgot-password lookup failed", zap.Error(err))
		return nil
	}

	s.recordEvent(ctx, &user.ID, model.EventPasswordResetRequest,
		"Password reset requested", model.RiskMedium, meta, nil)

	if err := s.SendOtp(ctx, model.SendOtpRequest{
		PhoneNumber: req.PhoneNumber,
		CountryCode: req.CountryCode,
		Purpose:     model.PurposePasswordReset,
	}, meta); err != nil {
		s.log.Error("failed to issue reset otp", zap.Error(err))
	}
	return nil
}

// ResetPassword consumes a password_reset OTP and overwrites the hash.
func (s *AuthService) ResetPassword(ctx context.Context, req model.ResetPasswordRequest, meta model.RequestMeta) error {
	user, err := s.repos.Users(s.db).GetByPhone(ctx, req.PhoneNumber, req.CountryCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.recordEvent(ctx, nil, model.EventPasswordResetFailed,
				"Password reset attempted for unknown phone", model.RiskHigh, meta, nil)
			return errs.ErrInvalidOrExpiredOTP
		}
		return errs.ErrSomethingWentWrong
	}

	if err := s.redeemOtp(ctx, req.PhoneNumber, req.CountryCode, model.PurposePasswordReset, req.Otp); err != nil {
		s.recordEvent(ctx, &user.ID, model.EventPasswordResetFailed,
			"Password reset failed", model.RiskHigh, meta,
			map[string]interface{}{"reason": "invalid or expired otp"})
		return err
	}

	hash, err := password.HashPassword(req.NewPassword)
	if err != nil {
		return errs.ErrSomethingWentWrong
	}
	if err := s.repos.Users(s.db).UpdatePassword(ctx, user.ID, hash); err != nil {
		return errs.ErrSomethingWentWrong
	}

	s.recordEvent(ctx, &user.ID, model.EventPasswordResetSuccess,
		"Password reset completed", model.RiskMedium, meta, nil)
	return nil
}

// ChangePassword is the authenticated path; it requires the current password.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req model.ChangePasswordRequest, meta model.RequestMeta) error {
	user, err := s.repos.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return errs.ErrSomethingWentWrong
	}

	if err := password.CheckPasswordHash(req.CurrentPassword, user.PasswordHash); err != nil {
		s.recordEvent(ctx, &user.ID, model.EventPasswordChangeFailed,
			"Password change rejected", model.RiskMedium, meta,
			map[string]interface{}{"reason": "wrong current password"})
		return errs.ErrInvalidCredentials
	}

	if err := password.ValidateNewPassword(req.CurrentPassword, req.NewPassword); err != nil {
		return errs.Validation(map[string]string{"newPassword": err.Error()})
	}

	hash, err := password.HashPassword(req.NewPassword)
	if err != nil {
		return errs.ErrSomethingWentWrong
	}
	if err := s.repos.Users(s.db).UpdatePassword(ctx, user.ID, hash); err != nil {
		return errs.ErrSomethingWentWrong
	}

	s.recordEvent(ctx, &user.ID, model.EventPasswordChangeSuccess,
		"Password changed", model.RiskLow, meta, nil)
	return nil
}

// VerifyIdentity re-proves an authenticated identity before sensitive
// operations, via the current password or an identity_verification OTP.
func (s *AuthService) VerifyIdentity(ctx context.Context, userID int64, req model.VerifyIdentityRequest, meta model.RequestMeta) error {
	user, err := s.repos.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return errs.ErrSomethingWentWrong
	}

	var verifyErr error
	if req.Password != "" {
		if err := password.CheckPasswordHash(req.Password, user.PasswordHash); err != nil {
			verifyErr = errs.ErrInvalidCredentials
		}
	} else {
		verifyErr = s.redeemOtp(ctx, user.PhoneNumber, user.CountryCode, model.PurposeIdentityVerification, req.Otp)
	}

	if verifyErr != nil {
		s.recordEvent(ctx, &user.ID, model.EventIdentityVerifyFailed,
			"Identity re-verification failed", model.RiskHigh, meta, nil)
		return verifyErr
	}

	s.recordEvent(ctx, &user.ID, model.EventIdentityVerified,
		"Identity re-verified", model.RiskLow, meta, nil)
	return nil
}
