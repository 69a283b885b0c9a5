package errors

import (
	"strings"
	"unicode"
)

// MaxBoardSize bounds the size of a board diagram accepted from untrusted input.
const MaxBoardSize = 16 << 10

// ValidateBoardText validates raw board text before it is handed to the parser.
// It rejects input that cannot possibly be a board diagram:
//   - Empty input
//   - Input larger than MaxBoardSize bytes
//   - Control characters other than newlines, carriage returns and tabs
//
// Structural checks (wall layout, room alignment) are done by the board parser.
func ValidateBoardText(text string) error {
	if strings.TrimSpace(text) == "" {
		return New(ErrCodeInvalidBoard, "board cannot be empty")
	}

	if len(text) > MaxBoardSize {
		return New(ErrCodeInvalidBoard, "board too large (max %d bytes)", MaxBoardSize)
	}

	for _, r := range text {
		if r == '\n' || r == '\r' || r == '\t' {
			continue
		}
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidBoard, "board contains invalid control characters")
		}
	}

	return nil
}

// ValidateSymbol validates a token type symbol.
// Symbols must be single printable characters that cannot be confused with
// the board's own drawing characters ('#', '.', and whitespace).
func ValidateSymbol(r rune) error {
	switch {
	case r == '#' || r == '.':
		return New(ErrCodeInvalidToken, "symbol %q is reserved for board drawing", r)
	case unicode.IsSpace(r) || unicode.IsControl(r):
		return New(ErrCodeInvalidToken, "symbol %q is not printable", r)
	case !unicode.IsPrint(r):
		return New(ErrCodeInvalidToken, "symbol %q is not printable", r)
	}
	return nil
}
