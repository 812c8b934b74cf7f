package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	phonePattern = regexp.MustCompile(`^[\d\s\-\+\(\)]{7,15}$`)
	vinPattern   = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]*$`)
	wsPattern    = regexp.MustCompile(`\s+`)
)

// ValidPhone reports whether s looks like a phone number: 7-15 characters
// drawn from digits, spaces, dashes, plus signs, and parentheses.
func ValidPhone(s string) bool {
	if s == "" {
		return false
	}
	return phonePattern.MatchString(s)
}

// ValidVIN reports whether s is an acceptable VIN. An empty VIN is valid
// (no VIN assigned). Otherwise the normalized form must be 7, 13, or 17
// characters from the VIN alphabet, which excludes I, O, and Q.
func ValidVIN(s string) bool {
	v := NormalizeVIN(s)
	if v == "" {
		return true
	}
	switch len(v) {
	case 7, 13, 17:
	default:
		return false
	}
	return vinPattern.MatchString(v)
}

// NormalizeVIN strips all whitespace and uppercases a VIN before it is
// stored or compared.
func NormalizeVIN(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(wsPattern.ReplaceAllString(s, ""))
}

// ValidNumericString reports whether s parses as a number within the
// inclusive bounds. A nil bound is unbounded on that side.
func ValidNumericString(s string, min, max *float64) bool {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return false
	}
	return ValidNumeric(n, min, max)
}

// ValidNumeric checks v against inclusive bounds. A nil bound is unbounded.
func ValidNumeric(v float64, min, max *float64) bool {
	if min != nil && v < *min {
		return false
	}
	if max != nil && v > *max {
		return false
	}
	return true
}

// SanitizeText trims surrounding whitespace for display/storage. It is not a
// substitute for parameterized queries; persistence always binds values.
func SanitizeText(s string) string {
	return strings.TrimSpace(s)
}

// ValidationError represents a structured validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects multiple field errors.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (ve *ValidationErrors) Add(field, message string) {
	ve.Errors = append(ve.Errors, ValidationError{Field: field, Message: message})
}

func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

func (ve *ValidationErrors) Error() string {
	msgs := make([]string, len(ve.Errors))
	for i, e := range ve.Errors {
		msgs[i] = e.Field + ": " + e.Message
	}
	return strings.Join(msgs, "; ")
}

// RequireField checks a required string field is non-empty.
func RequireField(ve *ValidationErrors, field, value string) {
	if strings.TrimSpace(value) == "" {
		ve.Add(field, "is required")
	}
}

// ValidatePositiveInt checks a field is > 0.
func ValidatePositiveInt(ve *ValidationErrors, field string, value int) {
	if value <= 0 {
		ve.Add(field, "must be a positive integer")
	}
}

// ValidateNonNegativeFloat checks a field is >= 0.
func ValidateNonNegativeFloat(ve *ValidationErrors, field string, value float64) {
	if value < 0 {
		ve.Add(field, "must be non-negative")
	}
}

// ValidateMaxLength checks a string doesn't exceed max characters.
func ValidateMaxLength(ve *ValidationErrors, field, value string, max int) {
	if len(value) > max {
		ve.Add(field, fmt.Sprintf("must be at most %d characters", max))
	}
}
