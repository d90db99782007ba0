package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// termRegex matches vocabulary terms: letters with internal spaces,
// hyphens, apostrophes, or periods ("ad hoc", "well-being", "e.g.").
var termRegex = regexp.MustCompile(`^[\p{L}][\p{L}0-9 .'-]*$`)

// ValidateTerm validates a vocabulary term before it reaches the graph
// or the expansion service.
//
// The validation rules are intentionally conservative:
//   - No empty terms
//   - No control characters
//   - Must start with a letter
//   - Maximum length of 128 characters
//
// Normalization (lowercasing, whitespace collapsing) is the graph
// package's job; this only rejects input that can never become a term.
func ValidateTerm(term string) error {
	trimmed := strings.TrimSpace(term)
	if trimmed == "" {
		return New(ErrCodeInvalidTerm, "term cannot be empty")
	}

	if len(trimmed) > 128 {
		return New(ErrCodeInvalidTerm, "term too long (max 128 characters)")
	}

	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidTerm, "term contains invalid control characters")
		}
	}

	if !termRegex.MatchString(trimmed) {
		return New(ErrCodeInvalidTerm, "invalid term: %q", term)
	}

	return nil
}

// ValidatePath validates an output file path for safety.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidInput, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidInput, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// validFormats are the artifact formats the renderer can produce.
var validFormats = map[string]bool{
	"svg":  true,
	"png":  true,
	"dot":  true,
	"json": true,
}

// ValidateFormat validates a render output format.
func ValidateFormat(format string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !validFormats[strings.ToLower(format)] {
		return New(ErrCodeInvalidFormat, "unsupported format: %q (valid: svg, png, dot, json)", format)
	}
	return nil
}
