// Package validate cleans and bound-checks untrusted input coming from the API.
//
// Sanitize and ClampInt are applied by every add route. The stricter
// validators (String, PlayerName, Command, Int) are for routes that opt in;
// the presence feed uses IsValidPlayerName.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxStringLength is the upper bound for name, display and player fields.
const MaxStringLength = 255

var (
	alphanumericPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	commandPattern      = regexp.MustCompile(`^[a-zA-Z0-9_\s]+$`)
	playerNamePattern   = regexp.MustCompile(`^[a-zA-Z0-9_]{1,16}$`)
	bracketSpanPattern  = regexp.MustCompile(`<[^>]*>`)
)

// PlayerPlaceholder is the only bracketed token Sanitize keeps.
const PlayerPlaceholder = "<player>"

const (
	escapedLT          = "|lt|"
	escapedGT          = "|gt|"
	escapedPlaceholder = escapedLT + "player" + escapedGT
)

// FieldError describes a rejected input field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + " " + e.Message
}

// Sanitize escapes every angle bracket in text except the ones forming the
// literal <player> placeholder. A complete <...> span is first wrapped in
// escaped brackets, so "<b>" becomes "|lt||lt|b|gt||gt|". The span skip is
// case-insensitive but only the lowercase placeholder survives. Already
// sanitized text is returned unchanged.
func Sanitize(text string) string {
	text = bracketSpanPattern.ReplaceAllStringFunc(text, func(span string) string {
		if strings.EqualFold(span, PlayerPlaceholder) {
			return span
		}
		return escapedLT + span + escapedGT
	})
	text = strings.ReplaceAll(text, "<", escapedLT)
	text = strings.ReplaceAll(text, ">", escapedGT)
	return strings.ReplaceAll(text, escapedPlaceholder, PlayerPlaceholder)
}

// ClampInt returns v limited to the range [min, max].
func ClampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Length returns the number of characters in s.
func Length(s string) int {
	return utf8.RuneCountInString(s)
}

// String trims s and requires it to be non-empty and at most MaxStringLength.
func String(s, field string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", &FieldError{Field: field, Message: "cannot be empty"}
	}
	if Length(s) > MaxStringLength {
		return "", &FieldError{Field: field, Message: fmt.Sprintf("is too long (max %d characters)", MaxStringLength)}
	}
	return trimmed, nil
}

// PlayerName validates a player name containing only letters, digits and underscores.
func PlayerName(s string) (string, error) {
	name, err := String(s, "player")
	if err != nil {
		return "", err
	}
	if !alphanumericPattern.MatchString(name) {
		return "", &FieldError{Field: "player", Message: "contains invalid characters"}
	}
	return name, nil
}

// Command validates a command made of letters, digits, underscores and whitespace.
func Command(s string) (string, error) {
	cmd, err := String(s, "command")
	if err != nil {
		return "", err
	}
	if !commandPattern.MatchString(cmd) {
		return "", &FieldError{Field: "command", Message: "contains invalid characters"}
	}
	return cmd, nil
}

// Int requires min <= v <= max.
func Int(v, min, max int, field string) (int, error) {
	if v < min || v > max {
		return 0, &FieldError{Field: field, Message: fmt.Sprintf("must be between %d and %d", min, max)}
	}
	return v, nil
}

// IsValidPlayerName reports whether name looks like a game account name (1-16 word characters).
func IsValidPlayerName(name string) bool {
	return playerNamePattern.MatchString(name)
}
