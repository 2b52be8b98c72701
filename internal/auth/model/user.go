package model

import "time"

// Account status values. Accounts are never hard-deleted; suspension and
// freezing are status flips.
const (
	StatusActive       = "active"
	StatusSuspended    = "suspended"
	StatusRecoveryMode = "recovery_mode"
	StatusFrozen       = "frozen"
)

type User struct {
	ID           int64   `db:"id"`
	Username     string  `db:"username"`
	Email        *string `db:"email"`
	PasswordHash string  `db:"password_hash"`
	FullName     string  `db:"full_name"`
	PhoneNumber  string  `db:"phone_number"`
	CountryCode  string  `db:"country_code"`

	IsPhoneVerified bool   `db:"is_phone_verified"`
	IsEmailVerified bool   `db:"is_email_verified"`
	IsVerified      bool   `db:"is_verified"`
	IsAdmin         bool   `db:"is_admin"`
	Status          string `db:"status"`

	DateOfBirth       *string `db:"date_of_birth"`
	TimeOfBirth       *string `db:"time_of_birth"`
	PlaceOfBirth      *string `db:"place_of_birth"`
	PreferredLanguage *string `db:"preferred_language"`
	WhatsappNumber    *string `db:"whatsapp_number"`

	TermsAcceptedAt        *time.Time `db:"terms_accepted_at"`
	PrivacyAcceptedAt      *time.Time `db:"privacy_accepted_at"`
	DisclaimerAcceptedAt   *time.Time `db:"disclaimer_accepted_at"`
	ReturnPolicyAcceptedAt *time.Time `db:"return_policy_accepted_at"`
	DataProcessingConsent  bool       `db:"data_processing_consent"`
	MarketingConsent       bool       `db:"marketing_consent"`

	LastLoginAt         *time.Time `db:"last_login_at"`
	LastLoginIP         *string    `db:"last_login_ip"`
	FailedLoginAttempts int        `db:"failed_login_attempts"`
	LockedUntil         *time.Time `db:"locked_until"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// PublicUser is the password-hash-free projection returned by every
// authentication response.
type PublicUser struct {
	ID                int64      `json:"id"`
	Username          string     `json:"username"`
	FullName          string     `json:"fullName"`
	Email             *string    `json:"email,omitempty"`
	PhoneNumber       string     `json:"phoneNumber"`
	CountryCode       string     `json:"countryCode"`
	IsPhoneVerified   bool       `json:"isPhoneVerified"`
	IsEmailVerified   bool       `json:"isEmailVerified"`
	IsAdmin           bool       `json:"isAdmin"`
	Status            string     `json:"status"`
	DateOfBirth       *string    `json:"dateOfBirth,omitempty"`
	TimeOfBirth       *string    `json:"timeOfBirth,omitempty"`
	PlaceOfBirth      *string    `json:"placeOfBirth,omitempty"`
	PreferredLanguage *string    `json:"preferredLanguage,omitempty"`
	WhatsappNumber    *string    `json:"whatsappNumber,omitempty"`
	LastLoginAt       *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:                u.ID,
		Username:          u.Username,
		FullName:          u.FullName,
		Email:             u.Email,
		PhoneNumber:       u.PhoneNumber,
		CountryCode:       u.CountryCode,
		IsPhoneVerified:   u.IsPhoneVerified,
		IsEmailVerified:   u.IsEmailVerified,
		IsAdmin:           u.IsAdmin,
		Status:            u.Status,
		DateOfBirth:       u.DateOfBirth,
		TimeOfBirth:       u.TimeOfBirth,
		PlaceOfBirth:      u.PlaceOfBirth,
		PreferredLanguage: u.PreferredLanguage,
		WhatsappNumber:    u.WhatsappNumber,
		LastLoginAt:       u.LastLoginAt,
		CreatedAt:         u.CreatedAt,
	}
}
