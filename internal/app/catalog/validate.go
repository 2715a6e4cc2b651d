package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	titleMinLen       = 10
	titleMaxLen       = 150
	descriptionMaxLen = 500
	optionMinLen      = 2
	optionMaxLen      = 50
)

var spamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(.)\1{5,}`),
	regexp.MustCompile(`(?i)https?://`),
	regexp.MustCompile(`(?i)\b(buy now|click here|limited time|act now)\b`),
}

func validateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if len(trimmed) < titleMinLen {
		return fmt.Errorf("%w: title must be at least %d characters long", ErrValidation, titleMinLen)
	}
	if len(trimmed) > titleMaxLen {
		return fmt.Errorf("%w: title must be %d characters or less", ErrValidation, titleMaxLen)
	}
	if isSymbolOnly(trimmed) {
		return fmt.Errorf("%w: title cannot contain only emojis or symbols", ErrValidation)
	}
	if hasExcessiveCaps(trimmed) {
		return fmt.Errorf("%w: title has too many capital letters", ErrValidation)
	}
	if matchesSpamPattern(trimmed) {
		return fmt.Errorf("%w: title contains spam patterns", ErrValidation)
	}
	return nil
}

func validateDescription(description string) error {
	if description == "" {
		return nil
	}
	trimmed := strings.TrimSpace(description)
	if len(trimmed) > descriptionMaxLen {
		return fmt.Errorf("%w: description must be %d characters or less", ErrValidation, descriptionMaxLen)
	}
	if isSymbolOnly(trimmed) {
		return fmt.Errorf("%w: description cannot contain only emojis or symbols", ErrValidation)
	}
	if matchesSpamPattern(trimmed) {
		return fmt.Errorf("%w: description contains spam patterns", ErrValidation)
	}
	return nil
}

func validateOptionName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("%w: option is required", ErrValidation)
	}
	if len(trimmed) < optionMinLen {
		return fmt.Errorf("%w: option must be at least %d characters long", ErrValidation, optionMinLen)
	}
	if len(trimmed) > optionMaxLen {
		return fmt.Errorf("%w: option must be %d characters or less", ErrValidation, optionMaxLen)
	}
	if isSymbolOnly(trimmed) {
		return fmt.Errorf("%w: option cannot contain only emojis or symbols", ErrValidation)
	}
	return nil
}

func validateOptionNames(options []string) error {
	if len(options) < 2 {
		return fmt.Errorf("%w: at least 2 options are required", ErrValidation)
	}
	for i, name := range options {
		if err := validateOptionName(name); err != nil {
			return fmt.Errorf("option %d: %w", i+1, err)
		}
	}
	return nil
}

// hasExcessiveCaps reports whether more than half of the letters are
// uppercase.
func hasExcessiveCaps(text string) bool {
	var letters, upper int
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z':
			letters++
		case r >= 'A' && r <= 'Z':
			letters++
			upper++
		}
	}
	if letters == 0 {
		return false
	}
	return float64(upper)/float64(letters) > 0.5
}

// isSymbolOnly reports whether the text has no alphanumeric characters.
func isSymbolOnly(text string) bool {
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

func matchesSpamPattern(text string) bool {
	for _, pattern := range spamPatterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}
