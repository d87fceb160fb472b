package model

import (
	"encoding/json"
	"testing"
)

// TestHexBytesJSON tests that byte fields render as hex strings.
func TestHexBytesJSON(t *testing.T) {
	t.Parallel()

	t.Run("marshals to hex", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(KeyCandidate{Key: HexBytes("KEY"), FrequentByte: ' '})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `{"key":"4b4559","frequent_byte":32}`
		if string(data) != want {
			t.Errorf("got %s, want %s", data, want)
		}
	})

	t.Run("unmarshals from hex", func(t *testing.T) {
		t.Parallel()

		var k KeyCandidate
		if err := json.Unmarshal([]byte(`{"key":"00ff"}`), &k); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(k.Key) != 2 || k.Key[0] != 0x00 || k.Key[1] != 0xff {
			t.Errorf("got %x, want 00ff", []byte(k.Key))
		}
	})

	t.Run("rejects invalid hex", func(t *testing.T) {
		t.Parallel()

		var b HexBytes
		if err := json.Unmarshal([]byte(`"zz"`), &b); err == nil {
			t.Error("expected error for invalid hex")
		}
	})
}

// TestHexBytesRepr tests the escaped key rendering.
func TestHexBytesRepr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   HexBytes
		want string
	}{
		{name: "printable", in: HexBytes("KEY"), want: `"KEY"`},
		{name: "control bytes", in: HexBytes{'K', 0x00, 'Y', 0x7f}, want: `"K\x00Y\x7f"`},
		{name: "high bytes are not runes", in: HexBytes{0xc3, 0xa9}, want: `"\xc3\xa9"`},
		{name: "quote and backslash", in: HexBytes(`a"b\`), want: `"a\"b\\"`},
		{name: "empty", in: nil, want: `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.in.Repr(); got != tt.want {
				t.Errorf("Repr() = %s, want %s", got, tt.want)
			}
		})
	}
}
