// Package utils provides utility functions for the application.
package utils

import (
	"regexp"
	"strings"
)

var nonDigit = regexp.MustCompile(`\D`)

// NormalizePhoneNumber strips every non-digit character from the input.
func NormalizePhoneNumber(phone string) string {
	return nonDigit.ReplaceAllString(strings.TrimSpace(phone), "")
}

// IsValidPhoneNumber reports whether the normalized phone number has exactly PhoneNumberDigits digits.
func IsValidPhoneNumber(phone string) bool {
	return len(phone) == PhoneNumberDigits && nonDigit.FindStringIndex(phone) == nil
}

// FormatDollars renders an amount the way the export sheet shows savings ("$25", "$12.5").
func FormatDollars(amount float64) string {
	s := strings.TrimRight(strings.TrimRight(formatFloat(amount), "0"), ".")
	if s == "" || s == "-" {
		s = "0"
	}
	return "$" + s
}
