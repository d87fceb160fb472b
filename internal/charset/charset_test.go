package charset

import (
	"errors"
	"testing"
)

// TestParse verifies predefined names, custom classes and error handling.
func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		spec     string
		wantSize int
		contains []byte
		excludes []byte
		wantErr  error
	}{
		{
			name:     "empty spec selects printable",
			spec:     "",
			wantSize: 100,
			contains: []byte{'a', 'Z', '0', ' ', '\n', '~'},
			excludes: []byte{0x00, 0x7f, 0xff},
		},
		{
			name:     "printable",
			spec:     "printable",
			wantSize: 100,
			contains: []byte{'\t', '\x0b', '\x0c', '\r'},
			excludes: []byte{0x01, 0x80},
		},
		{
			name:     "base32",
			spec:     "base32",
			wantSize: 33,
			contains: []byte{'A', 'Z', '2', '7', '='},
			excludes: []byte{'a', '1', '8', '+'},
		},
		{
			name:     "base64",
			spec:     "base64",
			wantSize: 65,
			contains: []byte{'a', 'Z', '9', '/', '+', '='},
			excludes: []byte{' ', '-', '_'},
		},
		{
			name:     "lowercase only",
			spec:     "a",
			wantSize: 26,
			contains: []byte{'a', 'z'},
			excludes: []byte{'A', '0', ' '},
		},
		{
			name:     "alphanumeric union",
			spec:     "aA1",
			wantSize: 62,
			contains: []byte{'q', 'Q', '5'},
			excludes: []byte{'!', ' '},
		},
		{
			name:     "punctuation",
			spec:     "!",
			wantSize: 32,
			contains: []byte{'!', '~', '\\', '`'},
			excludes: []byte{'a', ' '},
		},
		{
			name:     "repeated symbols are idempotent",
			spec:     "aaa",
			wantSize: 26,
		},
		{
			name:     "star overlaps other classes",
			spec:     "*a",
			wantSize: 100,
		},
		{
			name:    "unknown symbol",
			spec:    "aZ",
			wantErr: ErrUnknownCharset,
		},
		{
			name:    "unknown name",
			spec:    "utf8",
			wantErr: ErrUnknownCharset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cs, err := Parse(tt.spec)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if cs.Size() != tt.wantSize {
				t.Errorf("expected size %d, got %d", tt.wantSize, cs.Size())
			}
			for _, b := range tt.contains {
				if !cs.Contains(b) {
					t.Errorf("expected %q to be a member", b)
				}
			}
			for _, b := range tt.excludes {
				if cs.Contains(b) {
					t.Errorf("expected %q not to be a member", b)
				}
			}
		})
	}
}

func TestCharsetName(t *testing.T) {
	t.Parallel()

	if got := MustParse("").Name(); got != NamePrintable {
		t.Errorf("expected default name %q, got %q", NamePrintable, got)
	}
	if got := MustParse("aA").Name(); got != "aA" {
		t.Errorf("expected name %q, got %q", "aA", got)
	}
}

func TestCharsetBytesAscending(t *testing.T) {
	t.Parallel()

	got := MustParse("1").Bytes()
	if string(got) != "0123456789" {
		t.Errorf("expected digits in order, got %q", got)
	}
}

func TestPrintable(t *testing.T) {
	t.Parallel()

	got := Printable()
	if len(got) != 100 {
		t.Fatalf("expected 100 printable bytes, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1] >= got[i] {
			t.Fatalf("expected strictly ascending bytes, got %q before %q", got[i-1], got[i])
		}
	}
}

func TestZeroCharsetIsEmpty(t *testing.T) {
	t.Parallel()

	var cs Charset
	if cs.Size() != 0 {
		t.Errorf("expected empty set, got size %d", cs.Size())
	}
	if cs.Contains('a') {
		t.Error("expected zero charset to contain nothing")
	}
}

func TestNames(t *testing.T) {
	t.Parallel()

	names := Names()
	want := []string{"base32", "base64", "printable"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("expected %v, got %v", want, names)
		}
	}
}
