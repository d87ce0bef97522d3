package httpserver

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult is the outcome of validating request parameters.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

var validDocID = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateDocID validates a document identifier taken from the URL path.
// Stored ids are UUIDs or ULIDs, so anything outside the url-safe charset
// can be rejected before touching the store.
func ValidateDocID(field, id string) ValidationResult {
	if id == "" {
		return ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Field: field, Code: "REQUIRED", Message: field + " is required"}},
		}
	}
	if len(id) > 100 {
		return ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Field: field, Code: "TOO_LONG", Message: field + " is too long (max 100 characters)"}},
		}
	}
	if !validDocID.MatchString(id) {
		return ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Field: field, Code: "INVALID_FORMAT", Message: field + " contains invalid characters"}},
		}
	}
	return ValidationResult{Valid: true}
}

// SanitizeString strips null bytes and control noise from free-form input.
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.TrimSpace(input)
	if len(input) > 1000 {
		input = input[:1000]
	}
	if !utf8.ValidString(input) {
		input = strings.ToValidUTF8(input, "")
	}
	return input
}
