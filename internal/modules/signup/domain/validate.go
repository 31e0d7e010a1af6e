package domain

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ValidationError is a field-scoped failure produced fresh on every
// validation pass. A nil result means the field passed.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Permissive on purpose: consecutive dots in the local part are accepted
// (test..test@example.com is a deliverable address in practice), `+` tags
// and country-code TLDs pass. Tightening this has locked real users out
// before; do not "fix" it.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

// An all-whitespace address is non-empty, so it falls through to the
// format check rather than the required check.
func ValidateEmail(s string) *ValidationError {
	if s == "" {
		return &ValidationError{Field: "email", Message: "Email is required"}
	}
	if !emailPattern.MatchString(s) {
		return &ValidationError{Field: "email", Message: "Email format is invalid"}
	}
	return nil
}

// ValidatePassword reports only the first violated rule, checked in the
// order: required, length, lowercase, uppercase, digit.
func ValidatePassword(s string) *ValidationError {
	if s == "" {
		return &ValidationError{Field: "password", Message: "Password is required"}
	}
	if len(s) < 8 {
		return &ValidationError{Field: "password", Message: "Password must be at least 8 characters"}
	}
	if !strings.ContainsFunc(s, unicode.IsLower) {
		return &ValidationError{Field: "password", Message: "Password must contain a lowercase letter"}
	}
	if !strings.ContainsFunc(s, unicode.IsUpper) {
		return &ValidationError{Field: "password", Message: "Password must contain an uppercase letter"}
	}
	if !strings.ContainsFunc(s, unicode.IsDigit) {
		return &ValidationError{Field: "password", Message: "Password must contain a digit"}
	}
	return nil
}

func ValidateConfirmPassword(password, confirm string) *ValidationError {
	if confirm == "" {
		return &ValidationError{Field: "confirmPassword", Message: "Please confirm your password"}
	}
	if confirm != password {
		return &ValidationError{Field: "confirmPassword", Message: "Passwords do not match"}
	}
	return nil
}

// ValidateName rejects empty and over-long values. A string of only
// spaces is non-empty and within the limit, so it passes; the asymmetry
// with ValidateEmail is intentional and pinned by tests.
func ValidateName(s, label string) *ValidationError {
	field := "firstName"
	if strings.HasPrefix(label, "Last") {
		field = "lastName"
	}
	if s == "" {
		return &ValidationError{Field: field, Message: label + " is required"}
	}
	if utf8.RuneCountInString(s) > 50 {
		return &ValidationError{Field: field, Message: label + " must be 50 characters or fewer"}
	}
	return nil
}

var phonePattern = regexp.MustCompile(`^[0-9+\-\s()]+$`)

// ValidatePhoneNumber accepts empty (the field is optional); anything
// else must use only digits, +, -, spaces and parentheses.
func ValidatePhoneNumber(s string) *ValidationError {
	if s == "" {
		return nil
	}
	if !phonePattern.MatchString(s) {
		return &ValidationError{Field: "phoneNumber", Message: "Phone number format is invalid"}
	}
	return nil
}

func ValidateTerms(agreed bool) *ValidationError {
	if !agreed {
		return &ValidationError{Field: "agreeToTerms", Message: "You must agree to the terms of service"}
	}
	return nil
}
