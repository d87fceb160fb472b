package model

import (
	"encoding/hex"
	"encoding/json"
	"strings"
)

// HexBytes is a byte slice that serializes to JSON as a hex string.
// Keys and plaintexts are arbitrary binary data, so neither base64 (the
// encoding/json default) nor raw strings are readable in reports.
type HexBytes []byte

// MarshalJSON encodes the bytes as a lowercase hex string.
func (b HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(b))
}

// UnmarshalJSON decodes a hex string.
func (b *HexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}

// Hex returns the lowercase hex encoding.
func (b HexBytes) Hex() string {
	return hex.EncodeToString(b)
}

// Repr returns a double-quoted rendering in which every byte outside
// printable ASCII is escaped as \xNN, for example "K\x00Y".
// Escaping is per byte, never per rune, so the rendering maps back to the
// exact key bytes.
func (b HexBytes) Repr() string {
	return `"` + b.String() + `"`
}

// String returns the escaped rendering without the surrounding quotes.
func (b HexBytes) String() string {
	const digits = "0123456789abcdef"

	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		switch {
		case c == '\\' || c == '"':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c >= 0x20 && c < 0x7f:
			sb.WriteByte(c)
		default:
			sb.WriteString(`\x`)
			sb.WriteByte(digits[c>>4])
			sb.WriteByte(digits[c&0x0f])
		}
	}
	return sb.String()
}
