package errors

import (
	"strings"
	"unicode"
)

const (
	// MaxIDLength is the longest node id accepted by ValidateID.
	MaxIDLength = 256

	// MaxTextLength is the longest name or description kept by SanitizeText.
	MaxTextLength = 500

	// maxDerivedIDLength bounds ids produced by SanitizeID.
	maxDerivedIDLength = 100
)

// ValidateID validates a node id supplied by a user or an importer.
// Ids are opaque keys: any printable text up to MaxIDLength is accepted.
// Control characters are rejected since they end up in terminal output and
// DOT files.
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "id cannot be empty")
	}

	if len(id) > MaxIDLength {
		return New(ErrCodeInvalidInput, "id too long (max %d characters)", MaxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "id contains invalid control characters")
		}
	}

	return nil
}

// SanitizeID derives an id from arbitrary text such as a file path.
// Letters, digits, '-' and '_' are kept; every other rune becomes '_'.
// The result is truncated to 100 bytes. An input with no usable runes yields "".
func SanitizeID(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	useful := false
	for _, r := range s {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '-', r == '_':
			b.WriteRune(r)
			useful = useful || r != '_'
		default:
			b.WriteByte('_')
		}
		if b.Len() >= maxDerivedIDLength {
			break
		}
	}
	if !useful {
		return ""
	}
	out := b.String()
	if len(out) > maxDerivedIDLength {
		out = out[:maxDerivedIDLength]
	}
	return out
}

// SanitizeText cleans a display name or description: NUL bytes and the
// markup characters < > " ' ` are removed, surrounding whitespace is trimmed,
// and the result is truncated to MaxTextLength runes.
func SanitizeText(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case 0, '<', '>', '"', '\'', '`':
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > MaxTextLength {
		s = string(r[:MaxTextLength])
	}
	return s
}

// ValidateFilePath validates a path given for opening or saving a project.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes or control characters
func ValidateFilePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
