package validator

import "regexp"

var (
	emailRegex       = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,4}$`)
	phoneRegex       = regexp.MustCompile(`^[0-9]{10,15}$`)
	countryCodeRegex = regexp.MustCompile(`^\+[0-9]{1,4}$`)
	otpRegex         = regexp.MustCompile(`^[0-9]{6}$`)
)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidPhone accepts bare national numbers of 10-15 digits; the country
// code travels separately.
func IsValidPhone(phone string) bool {
	return phoneRegex.MatchString(phone)
}

func IsValidCountryCode(code string) bool {
	return countryCodeRegex.MatchString(code)
}

func IsValidOTP(code string) bool {
	return otpRegex.MatchString(code)
}
