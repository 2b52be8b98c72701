package password

import "errors"

var (
	ErrTooShort  = errors.New("password must be at least 8 characters")
	ErrSameAsOld = errors.New("new password must be different from the current password")
)
