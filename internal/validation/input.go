package validation

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/errors"
)

// ValidateHabitName trims name and checks it is non-empty and at most
// MaxHabitNameLength characters. It returns the trimmed name.
func ValidateHabitName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return "", errors.Invalid("name", "habit name is required")
	}

	if utf8.RuneCountInString(trimmed) > constants.MaxHabitNameLength {
		return "", errors.Invalid("name", "habit name is too long (max 50 characters)")
	}

	return trimmed, nil
}

// ValidateOwner rejects an empty tenant key
func ValidateOwner(ownerEmail string) error {
	if ownerEmail == "" {
		return errors.Invalid("owner", "user not logged in")
	}
	return nil
}

// ValidateEmail validates email format and length using the RFC 5322 parser
func ValidateEmail(email string) error {
	if email == "" {
		return errors.Invalid("email", "email address is required")
	}

	if len(email) > constants.MaxEmailLength {
		return errors.Invalid("email", "email address is too long (max 254 characters)")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.Invalid("email", "invalid email address format")
	}

	return nil
}

// ValidateUserName validates a profile display name
func ValidateUserName(name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return errors.Invalid("name", "name is required")
	}

	if utf8.RuneCountInString(trimmed) > 100 {
		return errors.Invalid("name", "name is too long (max 100 characters)")
	}

	return nil
}

// ValidatePassword enforces the minimum length and the 72 byte bcrypt limit
func ValidatePassword(password string) error {
	if len(password) < constants.MinPasswordLength {
		return errors.Invalid("password", "password must be at least 6 characters")
	}

	// bcrypt silently truncates anything longer
	if len(password) > constants.MaxPasswordLength {
		return errors.Invalid("password", "password must not exceed 72 characters")
	}

	return nil
}
