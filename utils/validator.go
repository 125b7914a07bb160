// utils/validator.go - Input validation
package utils

import (
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	// Phone numbers are stored in E.164-ish form: '+' followed by at least
	// 8 digits.
	phoneRegex = regexp.MustCompile(`^[+][0-9]{8,}$`)
	zipRegex   = regexp.MustCompile(`^\d{5}$`)
	// Voucher codes are alphanumeric, up to 20 characters.
	voucherCodeRegex = regexp.MustCompile(`^[A-Za-z0-9]{1,20}$`)
	streetAddrRegex  = regexp.MustCompile(`^.[^?@]*$`)
)

// ValidateEmail checks if email is valid
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidatePhoneNumber checks a cleaned phone number ('+' plus 8+ digits).
func ValidatePhoneNumber(phone string) bool {
	return phoneRegex.MatchString(phone)
}

// ValidateZipCode checks for a 5-digit US zip code.
func ValidateZipCode(zip string) bool {
	return zipRegex.MatchString(zip)
}

// ValidateVoucherCodeFormat checks the raw code string shape. It says
// nothing about whether the code exists or can be redeemed.
func ValidateVoucherCodeFormat(code string) bool {
	return voucherCodeRegex.MatchString(code)
}

// ValidateStreetAddress rejects street lines containing characters that the
// payment processor cannot handle.
func ValidateStreetAddress(addr string) bool {
	return streetAddrRegex.MatchString(addr)
}

// SanitizeInput removes potentially harmful characters
func SanitizeInput(input string) string {
	// Remove leading/trailing spaces
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	return input
}
