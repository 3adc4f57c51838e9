package catalog

import (
	"strings"

	"github.com/m3rciful/cinebot/core/telegram/format"
	"github.com/m3rciful/cinebot/internal/domain"
)

const (
	MinCodeLen  = 3
	MaxCodeLen  = 32
	MaxTitleLen = 128
)

// Canonical trims and upper-cases a code.
func Canonical(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateCode returns the canonical code or a validation error.
func ValidateCode(code string) (string, error) {
	c := Canonical(code)
	if len(c) < MinCodeLen || len(c) > MaxCodeLen {
		return "", domain.Validation("catalog.code", "code must be 3 to 32 characters")
	}
	for _, r := range c {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", domain.Validation("catalog.code", "code may contain only latin letters and digits")
		}
	}
	return c, nil
}

// TitleOf derives an item title from its description.
func TitleOf(description string) string {
	return format.Truncate(format.FirstLine(description), MaxTitleLen)
}
