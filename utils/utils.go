package utils

import "regexp"

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks the basic shape of an email address.
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

var mobileRegex = regexp.MustCompile(`^[0-9]{10}$`)

// ValidateMobile checks a 10-digit vendor mobile number, the identity
// vendors are keyed by everywhere.
func ValidateMobile(mobile string) bool {
	return mobileRegex.MatchString(mobile)
}
