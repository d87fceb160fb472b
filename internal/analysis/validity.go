package analysis

import (
	"bytes"
	"math"

	"github.com/nao1215/xorcrack/internal/charset"
)

// ValidityThreshold is the validity percentage a plaintext must exceed to
// count as valid.
const ValidityThreshold = 95

// Validity returns the fraction of bytes in buf that belong to cs.
// An empty buffer has validity 0.
func Validity(buf []byte, cs charset.Charset) float64 {
	if len(buf) == 0 {
		return 0
	}
	valid := 0
	for _, b := range buf {
		if cs.Contains(b) {
			valid++
		}
	}
	return float64(valid) / float64(len(buf))
}

// ValidityPercent converts a validity fraction to a whole percentage,
// rounding halves to even.
func ValidityPercent(validity float64) int {
	return int(math.RoundToEven(100 * validity))
}

// IsValid reports whether percent exceeds ValidityThreshold.
func IsValid(percent int) bool {
	return percent > ValidityThreshold
}

// ContainsKnownPlaintext reports whether buf contains known. Every buffer
// contains the empty known plaintext.
func ContainsKnownPlaintext(buf, known []byte) bool {
	return len(known) == 0 || bytes.Contains(buf, known)
}
