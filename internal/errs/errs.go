// Package errs defines the error vocabulary returned by the REST surface.
// Authentication failures stay deliberately generic so responses never reveal
// whether an identifier, credential, or code was the wrong part.
package errs

import "net/http"

type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeConflict     Code = "CONFLICT"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeRateLimited  Code = "RATE_LIMITED"
	CodeInternal     Code = "INTERNAL"
)

type Error struct {
	Code    Code              `json:"code"`
	Message string            `json:"message"`
	Status  int               `json:"-"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

func New(code Code, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// CodeForStatus picks the vocabulary code matching an HTTP status, for
// errors raised outside the service layer (router misses, method checks).
func CodeForStatus(status int) Code {
	switch {
	case status == http.StatusUnauthorized:
		return CodeUnauthorized
	case status == http.StatusForbidden:
		return CodeForbidden
	case status == http.StatusNotFound:
		return CodeNotFound
	case status == http.StatusConflict:
		return CodeConflict
	case status == http.StatusTooManyRequests:
		return CodeRateLimited
	case status >= 400 && status < 500:
		return CodeValidation
	default:
		return CodeInternal
	}
}

// Validation builds a 400 with per-field messages.
func Validation(fields map[string]string) *Error {
	return &Error{
		Code:    CodeValidation,
		Status:  http.StatusBadRequest,
		Message: "Validation failed",
		Fields:  fields,
	}
}

var (
	ErrInvalidCredentials  = New(CodeUnauthorized, http.StatusUnauthorized, "Invalid credentials")
	ErrInvalidOrExpiredOTP = New(CodeUnauthorized, http.StatusUnauthorized, "Invalid or expired OTP")
	ErrUsernameTaken       = New(CodeConflict, http.StatusConflict, "Username is already taken")
	ErrPhoneRegistered     = New(CodeConflict, http.StatusConflict, "Phone number is already registered")
	ErrUserNotFound        = New(CodeNotFound, http.StatusNotFound, "User not found")
	ErrAuthRequired        = New(CodeUnauthorized, http.StatusUnauthorized, "Authentication required")
	ErrForbidden           = New(CodeForbidden, http.StatusForbidden, "Insufficient privileges")
	ErrTooManyRequests     = New(CodeRateLimited, http.StatusTooManyRequests, "Too many attempts. Please try again later.")
	ErrSomethingWentWrong  = New(CodeInternal, http.StatusInternalServerError, "Something went wrong! Please try again")
)
