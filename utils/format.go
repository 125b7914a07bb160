package utils

import "strings"

// ToUserFacingCode returns the display form of a raw code, grouping the
// characters 3-3-3 (e.g. "abcdefghi" -> "abc-def-ghi").
func ToUserFacingCode(code string) string {
	if len(code) <= 6 {
		return code
	}
	return code[:3] + "-" + code[3:6] + "-" + code[6:]
}

// FromUserFacingCode strips display hyphens and whitespace from a code the
// applicant typed in.
func FromUserFacingCode(code string) string {
	code = strings.TrimSpace(code)
	return strings.ReplaceAll(code, "-", "")
}

// CleanPhoneNumber returns a normalized version of a user-provided phone
// number: separators removed, '+1' country code assumed when missing.
func CleanPhoneNumber(phone string) string {
	phone = strings.TrimSpace(phone)
	replacer := strings.NewReplacer("-", "", "(", "", ")", "", " ", "")
	phone = replacer.Replace(phone)
	if phone == "" {
		return phone
	}
	if !strings.HasPrefix(phone, "+") {
		phone = "+1" + phone
	}
	return phone
}
