package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"todolist/models"
)

const (
	MaxContentLength  = 200
	MaxUsernameLength = 150
	// bcrypt ignores everything past 72 bytes.
	MaxPasswordBytes = 72
)

// ValidateTaskInput trims the content and checks it is usable as a task.
func ValidateTaskInput(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", models.NewValidationError("content", "task content cannot be empty")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return "", models.NewValidationError("content", "task content must be at most 200 characters")
	}
	return content, nil
}

func ValidateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", models.NewValidationError("username", "username is required")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return "", models.NewValidationError("username", "username must be at most 150 characters")
	}
	if strings.IndexFunc(username, unicode.IsSpace) >= 0 {
		return "", models.NewValidationError("username", "username cannot contain spaces")
	}
	return username, nil
}

func ValidatePassword(password string) error {
	if password == "" {
		return models.NewValidationError("password", "password is required")
	}
	if len(password) > MaxPasswordBytes {
		return models.NewValidationError("password", "password must be at most 72 bytes")
	}
	return nil
}

func SamePassword(password string, confirmedPassword string) bool {
	return password == confirmedPassword
}
