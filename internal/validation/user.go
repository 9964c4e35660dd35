package validation

import (
	"fmt"
	"regexp"
)

// UsernamePattern defines the accepted username format:
// latin letters, digits and underscores, 3-50 characters.
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)

// emailPattern is a deliberately loose shape check (local@domain.tld).
// Real validation happens when mail is actually sent; here we only reject
// obvious garbage before it reaches the database.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	// MinUsernameLen is the minimum username length
	MinUsernameLen = 3
	// MaxUsernameLen is the maximum username length
	MaxUsernameLen = 50
	// MaxEmailLen is the maximum email length
	MaxEmailLen = 255
	// MinPasswordLen is the minimum password length
	MinPasswordLen = 8
	// MaxFullNameLen is the maximum full name length
	MaxFullNameLen = 100
)

// ValidateUsername checks that username matches the accepted format.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	if len(username) < MinUsernameLen {
		return fmt.Errorf("username must be at least %d characters long", MinUsernameLen)
	}

	if len(username) > MaxUsernameLen {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLen)
	}

	if !UsernamePattern.MatchString(username) {
		return fmt.Errorf("username can only contain letters (a-z, A-Z), numbers (0-9), and underscores (_)")
	}

	return nil
}

// ValidateEmail checks that email is non-empty, bounded and email-shaped.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	if len(email) > MaxEmailLen {
		return fmt.Errorf("email must not exceed %d characters", MaxEmailLen)
	}

	if !emailPattern.MatchString(email) {
		return fmt.Errorf("email is not valid")
	}

	return nil
}

// ValidatePassword checks minimal password requirements.
// bcrypt ignores input past 72 bytes, so longer passwords are rejected
// instead of being silently truncated.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}

	if len(password) > 72 {
		return fmt.Errorf("password must not exceed 72 characters")
	}

	return nil
}

// ValidateFullName checks the optional full name field.
func ValidateFullName(fullName string) error {
	if len(fullName) > MaxFullNameLen {
		return fmt.Errorf("full name must not exceed %d characters", MaxFullNameLen)
	}
	return nil
}
