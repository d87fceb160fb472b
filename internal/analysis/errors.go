package analysis

import (
	"errors"
	"fmt"
)

// Analysis errors. They are returned synchronously and never retried: the
// analysis is deterministic, so the same input reproduces the same error.
var (
	// ErrNoKeyLengthCandidates is returned when the fitness curve has no
	// local maximum, which happens for inputs that are too short or
	// degenerate. Key recovery cannot proceed without a key length.
	ErrNoKeyLengthCandidates = errors.New("no candidates for key length found: input too small?")

	// ErrCombinatorialLimit is returned (wrapped in CombinatorialLimitError)
	// when the number of candidate keys would exceed the configured cap.
	ErrCombinatorialLimit = errors.New("candidate key limit exceeded")

	// ErrEmptyKey is returned when decoding with a zero-length key.
	ErrEmptyKey = errors.New("key must not be empty")

	// ErrInvalidMaxKeyLength is returned when the maximum key length to
	// probe is not positive.
	ErrInvalidMaxKeyLength = errors.New("invalid max key length: must be positive")

	// ErrInvalidKeyLength is returned when a known key length is negative.
	ErrInvalidKeyLength = errors.New("invalid key length: must be positive")

	// ErrKeyLengthTooLong is returned when the known key length is not
	// shorter than the ciphertext.
	ErrKeyLengthTooLong = errors.New("key length must be shorter than the ciphertext")

	// ErrInvalidSpread is returned when the frequency spread is negative.
	ErrInvalidSpread = errors.New("invalid frequency spread: must be non-negative")

	// ErrEmptyCiphertext is returned when there is nothing to analyze.
	ErrEmptyCiphertext = errors.New("ciphertext is empty")
)

// CombinatorialLimitError reports a candidate enumeration that was refused
// because its size exceeds the cap.
type CombinatorialLimitError struct {
	// Count is the number of keys the enumeration would produce.
	// Zero together with Overflow means the count does not fit in an int.
	Count int

	// Overflow is true when the product of lane sizes overflowed.
	Overflow bool

	// Limit is the configured cap.
	Limit int
}

// Error implements the error interface.
func (e *CombinatorialLimitError) Error() string {
	if e.Overflow {
		return fmt.Sprintf("%s: candidate count overflows (limit %d)", ErrCombinatorialLimit, e.Limit)
	}
	return fmt.Sprintf("%s: %d candidate keys (limit %d)", ErrCombinatorialLimit, e.Count, e.Limit)
}

// Unwrap allows errors.Is(err, ErrCombinatorialLimit).
func (e *CombinatorialLimitError) Unwrap() error {
	return ErrCombinatorialLimit
}
