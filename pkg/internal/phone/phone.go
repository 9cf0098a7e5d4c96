// Package phone canonicalizes Philippine mobile numbers across the formats
// users actually type (09xxxxxxxxx, +63xxxxxxxxx, 63xxxxxxxxx) so lookups and
// comparisons always run against one stable form. Every function is total,
// unrecognized input passes through cleaned but otherwise untouched.
package phone

import (
	"regexp"
	"strings"
)

var validPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\+639\d{9}$`),
	regexp.MustCompile(`^639\d{9}$`),
	regexp.MustCompile(`^09\d{9}$`),
}

func clean(number string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(number)
}

// Normalize returns the canonical 63xxxxxxxxx form.
func Normalize(number string) string {
	cleaned := clean(number)

	switch {
	case strings.HasPrefix(cleaned, "+63"):
		return cleaned[1:]
	case strings.HasPrefix(cleaned, "63"):
		return cleaned
	case strings.HasPrefix(cleaned, "09"):
		return "63" + cleaned[1:]
	case strings.HasPrefix(cleaned, "9") && len(cleaned) == 10:
		return "63" + cleaned
	default:
		return cleaned
	}
}

// Display formats a number for rendering, always with the + prefix.
func Display(number string) string {
	normalized := Normalize(number)
	if !strings.HasPrefix(normalized, "+") {
		return "+" + normalized
	}
	return normalized
}

func IsValid(number string) bool {
	cleaned := clean(number)
	for _, pattern := range validPatterns {
		if pattern.MatchString(cleaned) {
			return true
		}
	}
	return false
}

// Variants lists every stored form a number may appear under, used when
// matching rows written before normalization was enforced.
func Variants(number string) []string {
	normalized := Normalize(number)

	variants := []string{normalized}
	if !strings.HasPrefix(normalized, "+") {
		variants = append(variants, "+"+normalized)
	}
	if strings.HasPrefix(normalized, "63") {
		variants = append(variants, "0"+normalized[2:])
	}
	return variants
}
