package analysis

import (
	"fmt"

	"github.com/nao1215/xorcrack/internal/charset"
)

const (
	// DefaultMaxKeyLength is the longest key length probed by default.
	DefaultMaxKeyLength = 65

	// DefaultMaxCandidates caps candidate key enumeration by default.
	DefaultMaxCandidates = 65536
)

// Options is the immutable configuration of one analysis run.
// Build it once, validate it against the ciphertext and pass it by value.
type Options struct {
	// MaxKeyLength is the longest key length probed during estimation.
	MaxKeyLength int

	// KnownKeyLength skips estimation when positive.
	KnownKeyLength int

	// Assumption selects the frequent plaintext bytes tried during key
	// recovery. The zero value skips key recovery.
	Assumption Assumption

	// Charset is the set of bytes a valid plaintext consists of.
	Charset charset.Charset

	// KnownPlaintext, when non-empty, drops every decoded candidate that
	// does not contain it.
	KnownPlaintext []byte

	// FilterOutput restricts persisted plaintexts to valid ones.
	FilterOutput bool

	// MaxCandidates caps the number of candidate keys. Zero or negative
	// disables the cap.
	MaxCandidates int

	// FrequencySpread widens the lane peaks to bytes whose count is within
	// this distance of the lane maximum.
	FrequencySpread int

	// Concurrency limits parallel work. Zero or negative means
	// runtime.NumCPU().
	Concurrency int

	// Tunables are the key length heuristic constants, used as given.
	// DefaultOptions fills in DefaultTunables.
	Tunables Tunables
}

// DefaultOptions returns options for estimation only over the printable
// charset.
func DefaultOptions() Options {
	return Options{
		MaxKeyLength:  DefaultMaxKeyLength,
		Charset:       charset.MustParse(charset.DefaultName),
		MaxCandidates: DefaultMaxCandidates,
		Tunables:      DefaultTunables(),
	}
}

// Validate checks the options against a ciphertext of ciphertextLen bytes.
func (o Options) Validate(ciphertextLen int) error {
	if ciphertextLen == 0 {
		return ErrEmptyCiphertext
	}
	if o.MaxKeyLength <= 0 {
		return ErrInvalidMaxKeyLength
	}
	if o.KnownKeyLength < 0 {
		return ErrInvalidKeyLength
	}
	if o.KnownKeyLength > o.MaxKeyLength {
		return fmt.Errorf("%w: %d exceeds max key length %d", ErrInvalidKeyLength, o.KnownKeyLength, o.MaxKeyLength)
	}
	if o.KnownKeyLength > 0 && o.KnownKeyLength >= ciphertextLen {
		return fmt.Errorf("%w: %d >= %d", ErrKeyLengthTooLong, o.KnownKeyLength, ciphertextLen)
	}
	if o.FrequencySpread < 0 {
		return ErrInvalidSpread
	}
	return nil
}
