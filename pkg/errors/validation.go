package errors

import (
	"strings"
	"unicode"
)

// maxIDLength bounds node, branch and owner identifiers.
const maxIDLength = 256

// ValidateID validates an identifier (node, branch or owner ID) that arrives
// from an untrusted boundary such as a URL path or query parameter.
//
// The validation rules are intentionally conservative:
//   - No empty IDs
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - Maximum length of 256 characters
func ValidateID(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "%s ID cannot be empty", kind)
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "%s ID too long (max %d characters)", kind, maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s ID contains invalid control characters", kind)
		}
	}

	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "%s ID contains invalid characters: %q", kind, pattern)
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
