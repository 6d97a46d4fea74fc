package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmptyName indicates a passenger or contact name is blank
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrInvalidName indicates a name contains characters other than letters, spaces, dots, apostrophes and hyphens
	ErrInvalidName = errors.New("name can only contain letters, spaces, dots, apostrophes and hyphens")

	// ErrNameTooLong indicates a name exceeds the stored column width
	ErrNameTooLong = errors.New("name must be at most 100 characters")
)

var nameRegex = regexp.MustCompile(`^[A-Za-z .'-]+$`)

// ValidateName checks a passenger name and returns it trimmed
func ValidateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrEmptyName
	}
	if len(trimmed) > 100 {
		return "", ErrNameTooLong
	}
	if !nameRegex.MatchString(trimmed) {
		return "", ErrInvalidName
	}
	return trimmed, nil
}
