package model

import (
	"strings"

	"github.com/astrovaani/auth-service/internal/errs"
	"github.com/astrovaani/auth-service/internal/utils/validator"
)

// RegisterRequest is the wire shape of POST /api/auth/register. The client
// holds all state between steps, so every request carries the cumulative
// payload and a step discriminator; Payload converts it into the typed
// per-step payload so each step only sees the fields it validates.
type RegisterRequest struct {
	Step int `json:"step"`

	// step 1
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`

	// step 2
	PhoneNumber string `json:"phoneNumber"`
	CountryCode string `json:"countryCode"`
	Otp         string `json:"otp"`

	// step 3
	DateOfBirth       string `json:"dateOfBirth"`
	TimeOfBirth       string `json:"timeOfBirth"`
	PlaceOfBirth      string `json:"placeOfBirth"`
	PreferredLanguage string `json:"preferredLanguage"`
	WhatsappNumber    string `json:"whatsappNumber"`

	// step 4
	Agreements AgreementsInput `json:"agreements"`
}

type AgreementsInput struct {
	Terms          bool `json:"terms"`
	Privacy        bool `json:"privacy"`
	Disclaimer     bool `json:"disclaimer"`
	ReturnPolicy   bool `json:"returnPolicy"`
	DataProcessing bool `json:"dataProcessing"`
	Marketing      bool `json:"marketing"`
}

// RegisterStep is the tagged union of the four step payloads.
type RegisterStep interface {
	StepNumber() int
	Validate() *errs.Error
}

type Step1Payload struct {
	Username string
	Password string
	FullName string
	Email    string
}

type Step2Payload struct {
	PhoneNumber string
	CountryCode string
	Otp         string
}

type Step3Payload struct {
	DateOfBirth       string
	TimeOfBirth       string
	PlaceOfBirth      string
	PreferredLanguage string
	WhatsappNumber    string
}

// Step4Payload carries the full cumulative registration plus the consent
// booleans; the account materializes only here.
type Step4Payload struct {
	Step1      Step1Payload
	Step2      Step2Payload
	Step3      Step3Payload
	Agreements AgreementsInput
}

func (Step1Payload) StepNumber() int { return 1 }
func (Step2Payload) StepNumber() int { return 2 }
func (Step3Payload) StepNumber() int { return 3 }
func (Step4Payload) StepNumber() int { return 4 }

func (p Step1Payload) Validate() *errs.Error {
	fields := map[string]string{}
	if len(strings.TrimSpace(p.Username)) < 3 {
		fields["username"] = "must be at least 3 characters"
	}
	if len(p.Password) < 8 {
		fields["password"] = "must be at least 8 characters"
	}
	if len(strings.TrimSpace(p.FullName)) < 2 {
		fields["fullName"] = "must be at least 2 characters"
	}
	if p.Email != "" && !validator.IsValidEmail(strings.ToLower(p.Email)) {
		fields["email"] = "invalid email address"
	}
	if len(fields) > 0 {
		return errs.Validation(fields)
	}
	return nil
}

func (p Step2Payload) Validate() *errs.Error {
	fields := map[string]string{}
	if !validator.IsValidPhone(p.PhoneNumber) {
		fields["phoneNumber"] = "must be at least 10 digits"
	}
	if !validator.IsValidCountryCode(p.CountryCode) {
		fields["countryCode"] = "must start with + followed by the dialing code"
	}
	if !validator.IsValidOTP(p.Otp) {
		fields["otp"] = "must be exactly 6 digits"
	}
	if len(fields) > 0 {
		return errs.Validation(fields)
	}
	return nil
}

func (p Step3Payload) Validate() *errs.Error {
	// All birth details and preferences are optional.
	if p.WhatsappNumber != "" && !validator.IsValidPhone(p.WhatsappNumber) {
		return errs.Validation(map[string]string{"whatsappNumber": "must be at least 10 digits"})
	}
	return nil
}

func (p Step4Payload) Validate() *errs.Error {
	if err := p.Step1.Validate(); err != nil {
		return err
	}
	if !validator.IsValidPhone(p.Step2.PhoneNumber) || !validator.IsValidCountryCode(p.Step2.CountryCode) {
		return errs.Validation(map[string]string{"phoneNumber": "a verified phone number is required"})
	}
	if err := p.Step3.Validate(); err != nil {
		return err
	}

	fields := map[string]string{}
	if !p.Agreements.Terms {
		fields["agreements.terms"] = "terms of service must be accepted"
	}
	if !p.Agreements.Privacy {
		fields["agreements.privacy"] = "privacy policy must be accepted"
	}
	if !p.Agreements.Disclaimer {
		fields["agreements.disclaimer"] = "disclaimer must be accepted"
	}
	if !p.Agreements.ReturnPolicy {
		fields["agreements.returnPolicy"] = "return policy must be accepted"
	}
	if len(fields) > 0 {
		return errs.Validation(fields)
	}
	return nil
}

// Payload dispatches the raw request into its typed step payload.
func (r *RegisterRequest) Payload() (RegisterStep, *errs.Error) {
	step1 := Step1Payload{
		Username: strings.TrimSpace(r.Username),
		Password: r.Password,
		FullName: strings.TrimSpace(r.FullName),
		Email:    strings.ToLower(strings.TrimSpace(r.Email)),
	}
	step2 := Step2Payload{
		PhoneNumber: strings.TrimSpace(r.PhoneNumber),
		CountryCode: strings.TrimSpace(r.CountryCode),
		Otp:         strings.TrimSpace(r.Otp),
	}
	step3 := Step3Payload{
		DateOfBirth:       strings.TrimSpace(r.DateOfBirth),
		TimeOfBirth:       strings.TrimSpace(r.TimeOfBirth),
		PlaceOfBirth:      strings.TrimSpace(r.PlaceOfBirth),
		PreferredLanguage: strings.TrimSpace(r.PreferredLanguage),
		WhatsappNumber:    strings.TrimSpace(r.WhatsappNumber),
	}

	switch r.Step {
	case 1:
		return step1, nil
	case 2:
		return step2, nil
	case 3:
		return step3, nil
	case 4:
		return Step4Payload{Step1: step1, Step2: step2, Step3: step3, Agreements: r.Agreements}, nil
	default:
		return nil, errs.Validation(map[string]string{"step": "must be between 1 and 4"})
	}
}

type SendOtpRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	CountryCode string `json:"countryCode"`
	Purpose     string `json:"purpose"`
}

func (r *SendOtpRequest) Validate() *errs.Error {
	fields := map[string]string{}
	if !validator.IsValidPhone(r.PhoneNumber) {
		fields["phoneNumber"] = "must be at least 10 digits"
	}
	if !validator.IsValidCountryCode(r.CountryCode) {
		fields["countryCode"] = "must start with + followed by the dialing code"
	}
	switch r.Purpose {
	case PurposeRegistration, PurposeLogin, PurposePasswordReset, PurposeIdentityVerification:
	default:
		fields["purpose"] = "unknown purpose"
	}
	if len(fields) > 0 {
		return errs.Validation(fields)
	}
	return nil
}

type MobileOtpLoginRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	CountryCode string `json:"countryCode"`
	Otp         string `json:"otp"`
}

func (r *MobileOtpLoginRequest) Validate() *errs.Error {
	fields := map[string]string{}
	if !validator.IsValidPhone(r.PhoneNumber) {
		fields["phoneNumber"] = "must be at least 10 digits"
	}
	if !validator.IsValidCountryCode(r.CountryCode) {
		fields["countryCode"] = "must start with + followed by the dialing code"
	}
	if !validator.IsValidOTP(r.Otp) {
		fields["otp"] = "must be exactly 6 digits"
	}
	if len(fields) > 0 {
		return errs.Validation(fields)
	}
	return nil
}

type UserIDPasswordLoginRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

func (r *UserIDPasswordLoginRequest) Validate() *errs.Error {
	fields := map[string]string{}
	if strings.TrimSpace(r.UserID) == "" {
		fields["userId"] = "is required"
	}
	if r.Password == "" {
		fields["password"] = "is required"
	}
	if len(fields) > 0 {
		return errs.Validation(fields)
	}
	return nil
}

type MobilePasswordLoginRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	CountryCode string `json:"countryCode"`
	Password    string `json:"password"`
}

func (r *MobilePasswordLoginRequest) Validate() *errs.Error {
	fields := map[string]string{}
	if !validator.IsValidPhone(r.PhoneNumber) {
		fields["phoneNumber"] = "must be at least 10 digits"
	}
	if !validator.IsValidCountryCode(r.CountryCode) {
		fields["countryCode"] = "must start with + followed by the dialing code"
	}
	if r.Password == "" {
		fields["password"] = "is required"
	}
	if len(fields) > 0 {
		return errs.Validation(fields)
	}
	return nil
}

type ForgotPasswordRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	CountryCode string `json:"countryCode"`
}

func (r *ForgotPasswordRequest) Validate() *errs.Error {
	fields := map[string]string{}
	if !validator.IsValidPhone(r.PhoneNumber) {
		fields["phoneNumber"] = "must be at least 10 digits"
	}
	if !validator.IsValidCountryCode(r.CountryCode) {
		fields["countryCode"] = "must start with + followed by the dialing code"
	}
	if len(fields) > 0 {
		return errs.Validation(fields)
	}
	return nil
}

type ResetPasswordRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	CountryCode string `json:"countryCode"`
	Otp         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

func (r *ResetPasswordRequest) Validate() *errs.Error {
	fields := map[string]string{}
	if !validator.IsValidPhone(r.PhoneNumber) {
		fields["phoneNumber"] = "must be at least 10 digits"
	}
	if !validator.IsValidCountryCode(r.CountryCode) {
		fields["countryCode"] = "must start with + followed by the dialing code"
	}
	if !validator.IsValidOTP(r.Otp) {
		fields["otp"] = "must be exactly 6 digits"
	}
	if len(r.NewPassword) < 8 {
		fields["newPassword"] = "must be at least 8 characters"
	}
	if len(fields) > 0 {
		return errs.Validation(fields)
	}
	return nil
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (r *ChangePasswordRequest) Validate() *errs.Error {
	fields := map[string]string{}
	if r.CurrentPassword == "" {
		fields["currentPassword"] = "is required"
	}
	if len(r.NewPassword) < 8 {
		fields["newPassword"] = "must be at least 8 characters"
	}
	if len(fields) > 0 {
		return errs.Validation(fields)
	}
	return nil
}

// VerifyIdentityRequest re-proves an authenticated identity before a
// sensitive operation, via either the current password or an OTP issued
// for purpose identity_verification.
type VerifyIdentityRequest struct {
	Password string `json:"password"`
	Otp      string `json:"otp"`
}

func (r *VerifyIdentityRequest) Validate() *errs.Error {
	if r.Password == "" && r.Otp == "" {
		return errs.Validation(map[string]string{"password": "either password or otp is required"})
	}
	if r.Otp != "" && !validator.IsValidOTP(r.Otp) {
		return errs.Validation(map[string]string{"otp": "must be exactly 6 digits"})
	}
	return nil
}

type UpdateProfileRequest struct {
	FullName          *string `json:"fullName"`
	Email             *string `json:"email"`
	DateOfBirth       *string `json:"dateOfBirth"`
	TimeOfBirth       *string `json:"timeOfBirth"`
	PlaceOfBirth      *string `json:"placeOfBirth"`
	PreferredLanguage *string `json:"preferredLanguage"`
	WhatsappNumber    *string `json:"whatsappNumber"`
	DataProcessing    *bool   `json:"dataProcessing"`
	Marketing         *bool   `json:"marketing"`
}

func (r *UpdateProfileRequest) Validate() *errs.Error {
	fields := map[string]string{}
	if r.FullName != nil && len(strings.TrimSpace(*r.FullName)) < 2 {
		fields["fullName"] = "must be at least 2 characters"
	}
	if r.Email != nil && *r.Email != "" && !validator.IsValidEmail(strings.ToLower(*r.Email)) {
		fields["email"] = "invalid email address"
	}
	if r.WhatsappNumber != nil && *r.WhatsappNumber != "" && !validator.IsValidPhone(*r.WhatsappNumber) {
		fields["whatsappNumber"] = "must be at least 10 digits"
	}
	if len(fields) > 0 {
		return errs.Validation(fields)
	}
	return nil
}

type PaginationInput struct {
	Limit int    `json:"limit"`
	After string `json:"after"`
}
