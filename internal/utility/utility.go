package utility

import (
	"errors"
	"math/rand"
	"strings"
)

const (
	minNameLength = 2
	maxNameLength = 20
)

var nameChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 -_."

var avatars = []string{"👤", "🦊", "🐼", "🐸", "🦄", "🐙", "🦖", "🐧", "🐯", "🦉"}

// ValidatePlayerName trims and checks a display name, returning the cleaned
// value.
func ValidatePlayerName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len(name) < minNameLength {
		return "", errors.New("name must be at least 2 characters")
	}
	if len(name) > maxNameLength {
		return "", errors.New("name must be at most 20 characters")
	}
	for _, c := range name {
		if !strings.ContainsRune(nameChars, c) {
			return "", errors.New("name contains invalid characters")
		}
	}
	return name, nil
}

// NormalizeRoomCode uppercases a submitted room code and checks its shape.
func NormalizeRoomCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 8 {
		return "", errors.New("room code must be 8 characters")
	}
	for _, c := range code {
		isLetter := c >= 'A' && c <= 'Z'
		isDigit := c >= '0' && c <= '9'
		if !isLetter && !isDigit {
			return "", errors.New("room code must be alphanumeric")
		}
	}
	return code, nil
}

// RandomAvatar picks a default avatar for players who don't choose one.
func RandomAvatar() string {
	return avatars[rand.Intn(len(avatars))]
}
