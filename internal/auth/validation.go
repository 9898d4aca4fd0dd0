package auth

import (
	"regexp"
	"unicode/utf8"

	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

const (
	MinUsernameLength = 4
	MinPasswordLength = 6
	// bcrypt ignores everything past 72 bytes, so longer passwords are refused.
	MaxPasswordBytes = 72
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	letterPattern   = regexp.MustCompile(`[A-Za-z]`)
	digitPattern    = regexp.MustCompile(`[0-9]`)
)

// ValidateUsername enforces length and alphanumeric-only shape.
func ValidateUsername(username string) error {
	if utf8.RuneCountInString(username) < MinUsernameLength || !usernamePattern.MatchString(username) {
		return apperrors.NewValidationError("username must be 4+ characters, no spaces, alphanumeric only", map[string]any{"field": "username"})
	}
	return nil
}

// ValidatePassword enforces minimum strength: length, a letter and a digit.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength ||
		!letterPattern.MatchString(password) ||
		!digitPattern.MatchString(password) {
		return apperrors.NewValidationError("password must be 6+ characters and contain letters and numbers", map[string]any{"field": "password"})
	}
	if len(password) > MaxPasswordBytes {
		return apperrors.NewValidationError("password too long", map[string]any{"field": "password", "max_bytes": MaxPasswordBytes})
	}
	return nil
}

// ValidateRole rejects anything but the defined roles.
func ValidateRole(role domain.Role) error {
	if !role.Valid() {
		return apperrors.NewValidationError("role must be Employee or Admin", map[string]any{"field": "role"})
	}
	return nil
}
