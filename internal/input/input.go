package input

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// StdinPath is the path that selects standard input.
const StdinPath = "-"

var (
	// ErrInvalidHex is returned when hex input has an odd number of digits.
	ErrInvalidHex = errors.New("input is not valid hex")

	// ErrInvalidChar is returned when a frequent-char argument cannot be parsed.
	ErrInvalidChar = errors.New("invalid char: expected one character, \\xNN or NN hex code")

	// ErrEmptyInput is returned when the loaded ciphertext has no bytes.
	ErrEmptyInput = errors.New("input is empty")
)

// Load reads the whole ciphertext from path, or from stdin when path is
// empty or "-". When isHex is true the data is hex decoded.
func Load(path string, stdin io.Reader, isHex bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)

	if path == "" || path == StdinPath {
		data, err = io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // Reading a user-provided ciphertext file is intentional
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	if isHex {
		data, err = DecodeHex(data)
		if err != nil {
			return nil, err
		}
	}

	if len(data) == 0 {
		return nil, ErrEmptyInput
	}

	return data, nil
}

// DecodeHex keeps only hex digits from data and decodes them.
func DecodeHex(data []byte) ([]byte, error) {
	digits := make([]byte, 0, len(data))
	for _, c := range data {
		if isHexDigit(c) {
			digits = append(digits, c)
		}
	}

	if len(digits)%2 != 0 {
		return nil, fmt.Errorf("%w: odd number of hex digits (%d)", ErrInvalidHex, len(digits))
	}

	out := make([]byte, hex.DecodedLen(len(digits)))
	if _, err := hex.Decode(out, digits); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return out, nil
}

// ParseChar parses a frequent-char argument.
// It accepts a single character ("A"), an escaped code ("\x41") or a bare
// hex code ("41" or "0x41").
func ParseChar(s string) (byte, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	code := strings.TrimPrefix(s, `\x`)
	code = strings.TrimPrefix(code, "0x")
	if code == "" || len(code) > 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidChar, s)
	}

	v, err := strconv.ParseUint(code, 16, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidChar, s)
	}
	return byte(v), nil
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
