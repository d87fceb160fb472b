package charset

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Character class tables. The printable class is the 100 bytes of Python's
// string.printable.
const (
	lowercase   = "abcdefghijklmnopqrstuvwxyz"
	uppercase   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits      = "0123456789"
	punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
	whitespace  = " \t\n\r\x0b\x0c"
	printable   = digits + lowercase + uppercase + punctuation + whitespace
)

// Predefined charset names.
const (
	NamePrintable = "printable"
	NameBase32    = "base32"
	NameBase64    = "base64"
)

// DefaultName is used when no charset is specified.
const DefaultName = NamePrintable

// ErrUnknownCharset is returned when a charset specification contains a
// symbol that is neither a predefined name nor a known class.
var ErrUnknownCharset = errors.New("unknown charset")

// classes maps custom charset symbols to their member characters.
var classes = map[rune]string{
	'a': lowercase,
	'A': uppercase,
	'1': digits,
	'!': punctuation,
	'*': printable,
}

// predefined maps charset names to their member characters.
var predefined = map[string]string{
	NamePrintable: printable,
	NameBase32:    uppercase + "234567=",
	NameBase64:    lowercase + uppercase + digits + "/+=",
}

// Charset is a membership set over all 256 byte values.
// The zero value is the empty set.
type Charset struct {
	name    string
	members [256]bool
}

// Parse builds a Charset from a specification string.
// An empty spec selects the printable set.
func Parse(spec string) (Charset, error) {
	if spec == "" {
		spec = DefaultName
	}

	if chars, ok := predefined[spec]; ok {
		return FromBytes(spec, []byte(chars)), nil
	}

	var sb strings.Builder
	for _, symbol := range spec {
		chars, ok := classes[symbol]
		if !ok {
			return Charset{}, fmt.Errorf("%w: %q (use printable, base32, base64 or a combination of a, A, 1, !, *)",
				ErrUnknownCharset, spec)
		}
		sb.WriteString(chars)
	}

	return FromBytes(spec, []byte(sb.String())), nil
}

// MustParse is like Parse but panics on error.
// It is intended for package-level defaults and tests.
func MustParse(spec string) Charset {
	cs, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return cs
}

// FromBytes builds a named Charset containing exactly the given bytes.
func FromBytes(name string, members []byte) Charset {
	cs := Charset{name: name}
	for _, b := range members {
		cs.members[b] = true
	}
	return cs
}

// Contains reports whether b is a member of the set.
func (c Charset) Contains(b byte) bool {
	return c.members[b]
}

// Name returns the specification the set was built from.
func (c Charset) Name() string {
	return c.name
}

// Size returns the number of member byte values.
func (c Charset) Size() int {
	n := 0
	for _, ok := range c.members {
		if ok {
			n++
		}
	}
	return n
}

// Bytes returns the member byte values in ascending order.
func (c Charset) Bytes() []byte {
	out := make([]byte, 0, c.Size())
	for i, ok := range c.members {
		if ok {
			out = append(out, byte(i))
		}
	}
	return out
}

// Printable returns the printable byte values in ascending order.
func Printable() []byte {
	out := []byte(printable)
	slices.Sort(out)
	return out
}

// Names returns the predefined charset names in sorted order.
func Names() []string {
	names := make([]string, 0, len(predefined))
	for name := range predefined {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
