package errors

import (
	"strings"
	"unicode"
)

// maxIDLength bounds annotation identifiers accepted from payloads.
const maxIDLength = 256

// ValidateID validates an annotation identifier (span, event or relation id).
//
// The rules are intentionally conservative:
//   - No empty ids
//   - No control characters
//   - Maximum length of 256 characters
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "annotation id cannot be empty")
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "annotation id too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "annotation id %q contains control characters", id)
		}
	}
	return nil
}

// ValidateOffsets checks a half-open character interval against a text of
// textLen characters.
//
// An interval is valid when 0 <= from <= to <= textLen. The returned error
// carries ErrCodeOffsetRange so callers can report it as a data problem.
func ValidateOffsets(from, to, textLen int) error {
	if from < 0 || to < 0 {
		return New(ErrCodeOffsetRange, "negative offset in [%d, %d)", from, to)
	}
	if from > to {
		return New(ErrCodeOffsetRange, "interval [%d, %d) ends before it starts", from, to)
	}
	if to > textLen {
		return New(ErrCodeOffsetRange, "interval [%d, %d) exceeds text length %d", from, to, textLen)
	}
	return nil
}

// ValidatePath validates a file path given to the CLI or the server.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..) when relative is true
func ValidatePath(path string, relative bool) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if relative {
		if strings.HasPrefix(path, "/") {
			return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
		}
		if strings.Contains(path, "..") {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

// ValidateSessionName validates a session name used as a store key and,
// for file stores, as a file name.
func ValidateSessionName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "session name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidInput, "session name too long (max 64 characters)")
	}
	for _, r := range name {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			return New(ErrCodeInvalidInput, "session name %q may only contain letters, digits, '-' and '_'", name)
		}
	}
	return nil
}
