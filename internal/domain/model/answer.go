package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAnswerOutOfRange is returned when an answer index does not name one of the four options.
	ErrAnswerOutOfRange = errors.New("correct answer must be one of the four options")

	// ErrOptionCount is returned when a question does not carry exactly four options.
	ErrOptionCount = errors.New("question must have exactly 4 options")
)

// The persisted correct_answer field is 1-based while everything in memory is
// 0-based. These helpers are the only place the two conventions meet.

// StoredAnswer converts a zero-based option index to the 1-based value kept on disk.
func StoredAnswer(idx int) int {
	return idx + 1
}

// AnswerFromStored converts a 1-based stored answer to a zero-based option index.
func AnswerFromStored(n int) (int, error) {
	if n < 1 || n > OptionCount {
		return 0, fmt.Errorf("stored answer %d: %w", n, ErrAnswerOutOfRange)
	}
	return n - 1, nil
}

// AnswerLetter returns the option letter ("A".."D") for a zero-based index.
func AnswerLetter(idx int) string {
	if idx < 0 || idx >= OptionCount {
		return ""
	}
	return string(rune('A' + idx))
}

// AnswerFromLetter parses an option letter, case-insensitively, into a zero-based index.
func AnswerFromLetter(s string) (int, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 1 || s[0] < 'A' || s[0] >= 'A'+OptionCount {
		return 0, fmt.Errorf("answer %q: %w", s, ErrAnswerOutOfRange)
	}
	return int(s[0] - 'A'), nil
}
