package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEntityName checks a file or folder name after trimming. The empty
// string is always rejected; callers trim before persisting.
func ValidateEntityName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("name cannot be empty")
	}

	if len(trimmed) > 255 {
		return fmt.Errorf("name too long (max 255 characters)")
	}

	if !utf8.ValidString(trimmed) {
		return fmt.Errorf("name contains invalid UTF-8 characters")
	}

	for _, char := range []string{"/", "\\", "\x00"} {
		if strings.Contains(trimmed, char) {
			return fmt.Errorf("name contains invalid character: %q", char)
		}
	}

	return nil
}

func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateEntityType checks the advisory type label on create payloads.
func ValidateEntityType(entityType string) error {
	switch entityType {
	case "document", "spreadsheet", "presentation", "pdf", "video", "archive", "folder", "text":
		return nil
	}
	return fmt.Errorf("invalid type: %s", entityType)
}
