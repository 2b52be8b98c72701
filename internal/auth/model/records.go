package model

import (
	"encoding/json"
	"time"
)

// OTP purposes scope which flow may consume a code. Verification requires an
// exact purpose match.
const (
	PurposeRegistration         = "registration"
	PurposeLogin                = "login"
	PurposePasswordReset        = "password_reset"
	PurposeIdentityVerification = "identity_verification"
)

// OtpTTL is how long an issued code stays redeemable.
const OtpTTL = 10 * time.Minute

type OtpVerification struct {
	ID          string     `db:"id"`
	PhoneNumber string     `db:"phone_number"`
	CountryCode string     `db:"country_code"`
	Code        string     `db:"code"`
	Purpose     string     `db:"purpose"`
	IsUsed      bool       `db:"is_used"`
	ExpiresAt   time.Time  `db:"expires_at"`
	UserID      *int64     `db:"user_id"`
	IPAddress   string     `db:"ip_address"`
	UserAgent   string     `db:"user_agent"`
	UsedAt      *time.Time `db:"used_at"`
	CreatedAt   time.Time  `db:"created_at"`
}

// Session lifetimes. Password-based logins and fresh registrations get the
// standard lifetime; phone+OTP logins get the extended one since the OTP
// already re-proved phone possession.
const (
	SessionTTL         = 24 * time.Hour
	SessionTTLOtpLogin = 30 * 24 * time.Hour
)

type AuthSession struct {
	ID             string    `db:"id"`
	UserID         int64     `db:"user_id"`
	Token          string    `db:"token"`
	RefreshToken   *string   `db:"refresh_token"`
	IPAddress      string    `db:"ip_address"`
	UserAgent      string    `db:"user_agent"`
	IsActive       bool      `db:"is_active"`
	ExpiresAt      time.Time `db:"expires_at"`
	LastAccessedAt time.Time `db:"last_accessed_at"`
	CreatedAt      time.Time `db:"created_at"`
}

// Valid reports whether the session can still authenticate a request.
// Expiry wins over the active flag.
func (s *AuthSession) Valid(now time.Time) bool {
	return s.IsActive && now.Before(s.ExpiresAt)
}

// Security event types recorded in the audit trail.
const (
	EventLoginSuccess          = "LOGIN_SUCCESS"
	EventLoginFailed           = "LOGIN_FAILED"
	EventUserRegistered        = "USER_REGISTERED"
	EventOtpSent               = "OTP_SENT"
	EventLogout                = "LOGOUT"
	EventPasswordResetRequest  = "PASSWORD_RESET_REQUESTED"
	EventPasswordResetSuccess  = "PASSWORD_RESET_SUCCESS"
	EventPasswordResetFailed   = "PASSWORD_RESET_FAILED"
	EventPasswordChangeSuccess = "PASSWORD_CHANGE_SUCCESS"
	EventPasswordChangeFailed  = "PASSWORD_CHANGE_FAILED"
	EventIdentityVerified      = "IDENTITY_VERIFIED"
	EventIdentityVerifyFailed  = "IDENTITY_VERIFICATION_FAILED"
)

const (
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

type SecurityEvent struct {
	ID          string          `db:"id"`
	UserID      *int64          `db:"user_id"`
	EventType   string          `db:"event_type"`
	Description string          `db:"description"`
	RiskLevel   string          `db:"risk_level"`
	IPAddress   string          `db:"ip_address"`
	UserAgent   string          `db:"user_agent"`
	Details     json.RawMessage `db:"details"`
	CreatedAt   time.Time       `db:"created_at"`
}

// Agreement types a registrant must accept before an account is finalized,
// plus the optional consents a user can grant later from their profile.
const (
	AgreementTerms          = "terms_of_service"
	AgreementPrivacy        = "privacy_policy"
	AgreementDisclaimer     = "disclaimer"
	AgreementReturnPolicy   = "return_policy"
	AgreementDataProcessing = "data_processing"
	AgreementMarketing      = "marketing"
)

// AgreementVersion tags every consent row with the document revision in
// force when it was accepted.
const AgreementVersion = "1.0"

type LegalAgreement struct {
	ID            string    `db:"id"`
	UserID        int64     `db:"user_id"`
	AgreementType string    `db:"agreement_type"`
	Version       string    `db:"version"`
	ConsentMethod string    `db:"consent_method"`
	IPAddress     string    `db:"ip_address"`
	UserAgent     string    `db:"user_agent"`
	AcceptedAt    time.Time `db:"accepted_at"`
}

// RequestMeta carries the client network facts stamped onto audit rows,
// OTP records, and sessions.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}
