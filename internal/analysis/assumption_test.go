package analysis

import (
	"slices"
	"testing"
)

// TestAssumption tests the assumption modes.
func TestAssumption(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		assumption Assumption
		wantLen    int
		wantString string
		wantNone   bool
		wantBrute  bool
	}{
		{name: "none", assumption: Assumption{}, wantLen: 0, wantString: "", wantNone: true},
		{name: "single byte", assumption: AssumeByte(' '), wantLen: 1, wantString: "0x20"},
		{name: "all bytes", assumption: AssumeAllBytes(), wantLen: 256, wantString: "all", wantBrute: true},
		{name: "printable", assumption: AssumePrintable(), wantLen: 100, wantString: "printable", wantBrute: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.assumption.Bytes()
			if len(got) != tt.wantLen {
				t.Errorf("len(Bytes()) = %d, want %d", len(got), tt.wantLen)
			}
			if !slices.IsSorted(got) {
				t.Error("Bytes() is not in ascending order")
			}
			if tt.assumption.String() != tt.wantString {
				t.Errorf("String() = %q, want %q", tt.assumption.String(), tt.wantString)
			}
			if tt.assumption.IsNone() != tt.wantNone {
				t.Errorf("IsNone() = %v, want %v", tt.assumption.IsNone(), tt.wantNone)
			}
			if tt.assumption.IsBruteForce() != tt.wantBrute {
				t.Errorf("IsBruteForce() = %v, want %v", tt.assumption.IsBruteForce(), tt.wantBrute)
			}
		})
	}

	t.Run("printable contains space and newline", func(t *testing.T) {
		t.Parallel()

		b := AssumePrintable().Bytes()
		if !slices.Contains(b, ' ') || !slices.Contains(b, '\n') || slices.Contains(b, 0x00) {
			t.Errorf("unexpected printable set %q", b)
		}
	})
}
