package utils

import (
	"errors"
	"strings"
	"unicode"
)

// Errors surfaced by the password strength policy.
var (
	ErrPasswordTooShort = errors.New("This password is too short. It must contain at least 8 characters.")
	ErrPasswordNumeric  = errors.New("This password is entirely numeric.")
	ErrPasswordCommon   = errors.New("This password is too common.")
)

// commonPasswords is a short deny-list of frequently leaked passwords.
var commonPasswords = map[string]struct{}{
	"password":   {},
	"password1":  {},
	"password12": {},
	"passw0rd":   {},
	"12345678":   {},
	"123456789":  {},
	"1234567890": {},
	"qwerty123":  {},
	"qwertyuiop": {},
	"iloveyou":   {},
	"admin123":   {},
	"letmein1":   {},
	"welcome1":   {},
	"sunshine1":  {},
	"football1":  {},
	"princess1":  {},
	"dragon123":  {},
	"monkey123":  {},
	"abcd1234":   {},
	"aaaaaaaa":   {},
}

// PasswordViolations checks plaintext against the minimum strength policy:
// at least 8 characters, not entirely numeric and not on the
// common-password list. Every violated rule is reported.
func PasswordViolations(password string) []string {
	var violations []string

	if len([]rune(password)) < 8 {
		violations = append(violations, ErrPasswordTooShort.Error())
	}

	if password != "" {
		numeric := true
		for _, r := range password {
			if !unicode.IsDigit(r) {
				numeric = false
				break
			}
		}
		if numeric {
			violations = append(violations, ErrPasswordNumeric.Error())
		}
	}

	if _, found := commonPasswords[strings.ToLower(password)]; found {
		violations = append(violations, ErrPasswordCommon.Error())
	}

	return violations
}

// ValidatePassword enforces the strength policy as a single error.
func ValidatePassword(password string) error {
	if violations := PasswordViolations(password); len(violations) > 0 {
		return errors.New(strings.Join(violations, " "))
	}
	return nil
}
