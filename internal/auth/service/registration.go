package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/astrovaani/auth-service/internal/auth/model"
	"github.com/astrovaani/auth-service/internal/auth/repository"
	"github.com/astrovaani/auth-service/internal/errs"
	"github.com/astrovaani/auth-service/pkg/ids"
	"github.com/astrovaani/auth-service/pkg/password"
)

// The registration flow is four strictly-forward steps. The server keeps no
// partial-user state between them: each request carries the cumulative
// payload and only step 4 writes anything.

// RegisterStep1 validates the basic info and checks username availability.
// The name is not reserved; a concurrent registrant for the same name is
// rejected at step 4 by the unique index.
func (s *AuthService) RegisterStep1(ctx context.Context, p model.Step1Payload) (*model.StepAck, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	available, err := s.CheckUsernameAvailability(ctx, p.Username)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, errs.ErrUsernameTaken
	}

	return &model.StepAck{Step: 1, Message: "Basic information accepted"}, nil
}

// RegisterStep2 consumes a registration OTP, proving phone possession.
func (s *AuthService) RegisterStep2(ctx context.Context, p model.Step2Payload, meta model.RequestMeta) (*model.StepAck, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	taken, err := s.repos.Users(s.db).ExistsByPhone(ctx, p.PhoneNumber, p.CountryCode)
	if err != nil {
		return nil, errs.ErrSomethingWentWrong
	}
	if taken {
		return nil, errs.ErrPhoneRegistered
	}

	if err := s.redeemOtp(ctx, p.PhoneNumber, p.CountryCode, model.PurposeRegistration, p.Otp); err != nil {
		return nil, err
	}

	return &model.StepAck{Step: 2, Message: "Phone number verified"}, nil
}

// RegisterStep3 only shape-checks; birth details are optional throughout.
func (s *AuthService) RegisterStep3(p model.Step3Payload) (*model.StepAck, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &model.StepAck{Step: 3, Message: "Preferences accepted"}, nil
}

// RegisterStep4 finalizes: the user row, all four agreement rows, and the
// initial session are created in one transaction, so a failure leaves no
// half-registered account reachable by login.
func (s *AuthService) RegisterStep4(ctx context.Context, p model.Step4Payload, meta model.RequestMeta) (*model.AuthResponse, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	hash, err := password.HashPassword(p.Step1.Password)
	if err != nil {
		s.log.Error("password hashing failed", zap.Error(err))
		return nil, errs.ErrSomethingWentWrong
	}

	userID, err := ids.NewUserID()
	if err != nil {
		s.log.Error("id generation failed", zap.Error(err))
		return nil, errs.ErrSomethingWentWrong
	}

	now := time.Now()
	user := &model.User{
		ID:           userID,
		Username:     p.Step1.Username,
		PasswordHash: hash,
		FullName:     p.Step1.FullName,
		PhoneNumber:  p.Step2.PhoneNumber,
		CountryCode:  p.Step2.CountryCode,

		IsPhoneVerified: true,
		Status:          model.StatusActive,

		TermsAcceptedAt:        &now,
		PrivacyAcceptedAt:      &now,
		DisclaimerAcceptedAt:   &now,
		ReturnPolicyAcceptedAt: &now,
		DataProcessingConsent:  p.Agreements.DataProcessing,
		MarketingConsent:       p.Agreements.Marketing,

		CreatedAt: now,
		UpdatedAt: now,
	}
	if p.Step1.Email != "" {
		user.Email = &p.Step1.Email
	}
	if p.Step3.DateOfBirth != "" {
		user.DateOfBirth = &p.Step3.DateOfBirth
	}
	if p.Step3.TimeOfBirth != "" {
		user.TimeOfBirth = &p.Step3.TimeOfBirth
	}
	if p.Step3.PlaceOfBirth != "" {
		user.PlaceOfBirth = &p.Step3.PlaceOfBirth
	}
	if p.Step3.PreferredLanguage != "" {
		user.PreferredLanguage = &p.Step3.PreferredLanguage
	}
	if p.Step3.WhatsappNumber != "" {
		user.WhatsappNumber = &p.Step3.WhatsappNumber
	}

	var token string
	err = s.runTx(ctx, func(ctx context.Context, tx repository.DBTX) error {
		if err := s.repos.Users(tx).Create(ctx, user); err != nil {
			return err
		}

		agreements := s.repos.Agreements(tx)
		for _, agreementType := range []string{
			model.AgreementTerms,
			model.AgreementPrivacy,
			model.AgreementDisclaimer,
			model.AgreementReturnPolicy,
		} {
			row := &model.LegalAgreement{
				ID:            ids.NewKSUID(),
				UserID:        user.ID,
				AgreementType: agreementType,
				Version:       model.AgreementVersion,
				ConsentMethod: "registration_form",
				IPAddress:     meta.IPAddress,
				UserAgent:     meta.UserAgent,
				AcceptedAt:    now,
			}
			if err := agreements.Create(ctx, row); err != nil {
				return err
			}
		}

		var txErr error
		token, txErr = s.issueSession(ctx, tx, user, model.SessionTTL, meta)
		return txErr
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Username or phone was claimed between step validation and the
			// final insert; the unique index is the arbiter. Re-check the
			// phone pair so the conflict names the right field.
			if taken, checkErr := s.repos.Users(s.db).ExistsByPhone(ctx, user.PhoneNumber, user.CountryCode); checkErr == nil && taken {
				return nil, errs.ErrPhoneRegistered
			}
			return nil, errs.ErrUsernameTaken
		}
		s.log.Error("registration finalization failed", zap.Error(err))
		return nil, errs.ErrSomethingWentWrong
	}

	s.recordEvent(ctx, &user.ID, model.EventUserRegistered,
		"New user completed registration", model.RiskLow, meta,
		map[string]interface{}{"username": user.Username})

	if user.Email != nil {
		s.sendWelcomeEmail(*user.Email, user.FullName)
	}

	return &model.AuthResponse{Token: token, User: user.Public()}, nil
}
