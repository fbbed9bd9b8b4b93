package account

import (
	"errors"
	"strings"
)

var (
	// ErrDuplicateEmail reports a conflict with an existing account's email.
	ErrDuplicateEmail = errors.New("user with this email already exists.")
	// ErrInvalidEmail reports a syntactically undeliverable address.
	ErrInvalidEmail = errors.New("Enter a valid email address.")
	// ErrInvalidGender reports a gender value outside the M/F choices.
	ErrInvalidGender = errors.New("Select a valid gender.")
	// ErrPasswordMismatch reports disagreeing password and confirmation.
	ErrPasswordMismatch = errors.New("Passwords doesn't match, Try again")
	// ErrOldPasswordMismatch reports a failed old-password check.
	ErrOldPasswordMismatch = errors.New("Old password doesn't match")
	// ErrUnknownAccount reports a lookup of a non-existent account.
	ErrUnknownAccount = errors.New("account not found")
	// ErrUnknownOrganization reports a reference to a non-existent organization.
	ErrUnknownOrganization = errors.New("Organization not found.")
	// ErrWeakPassword is the target for errors.Is checks against
	// WeakPasswordError values.
	ErrWeakPassword = errors.New("password does not meet the strength policy")
)

// WeakPasswordError carries every violated strength rule.
type WeakPasswordError struct {
	Violations []string
}

func (e *WeakPasswordError) Error() string {
	return strings.Join(e.Violations, " ")
}

func (e *WeakPasswordError) Is(target error) bool {
	return target == ErrWeakPassword
}
