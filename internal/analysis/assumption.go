package analysis

import (
	"fmt"

	"github.com/nao1215/xorcrack/internal/charset"
)

type assumptionKind int

const (
	assumeNone assumptionKind = iota
	assumeByte
	assumeAll
	assumePrintable
)

// Assumption is the hypothesis about the most frequent plaintext byte of
// every key lane. It is a closed set of modes: one fixed byte, all 256
// byte values, or the printable bytes. The zero value assumes nothing and
// only allows key length estimation.
type Assumption struct {
	kind assumptionKind
	b    byte
}

// AssumeByte assumes b is the most frequent plaintext byte.
func AssumeByte(b byte) Assumption {
	return Assumption{kind: assumeByte, b: b}
}

// AssumeAllBytes tries every byte value as the most frequent byte.
func AssumeAllBytes() Assumption {
	return Assumption{kind: assumeAll}
}

// AssumePrintable tries every printable byte as the most frequent byte.
func AssumePrintable() Assumption {
	return Assumption{kind: assumePrintable}
}

// IsNone reports whether no assumption was made.
func (a Assumption) IsNone() bool {
	return a.kind == assumeNone
}

// IsBruteForce reports whether more than one byte is tried.
func (a Assumption) IsBruteForce() bool {
	return a.kind == assumeAll || a.kind == assumePrintable
}

// Bytes returns the assumed bytes in ascending order.
func (a Assumption) Bytes() []byte {
	switch a.kind {
	case assumeByte:
		return []byte{a.b}
	case assumeAll:
		out := make([]byte, 256)
		for i := range out {
			out[i] = byte(i)
		}
		return out
	case assumePrintable:
		return charset.Printable()
	default:
		return nil
	}
}

// String describes the assumption for reports. It is empty for the zero
// value.
func (a Assumption) String() string {
	switch a.kind {
	case assumeByte:
		return fmt.Sprintf("0x%02x", a.b)
	case assumeAll:
		return "all"
	case assumePrintable:
		return "printable"
	default:
		return ""
	}
}
