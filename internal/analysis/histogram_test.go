package analysis

import (
	"bytes"
	"testing"
)

// TestNewHistogram tests per-lane byte counting.
func TestNewHistogram(t *testing.T) {
	t.Parallel()

	buf := []byte("abcabcabx")

	t.Run("counts only the positions of the lane", func(t *testing.T) {
		t.Parallel()

		h := NewHistogram(buf, 3, 2)
		if h['c'] != 2 || h['x'] != 1 {
			t.Errorf("lane 2 counts = c:%d x:%d, want c:2 x:1", h['c'], h['x'])
		}
		if h.Total() != 3 {
			t.Errorf("Total() = %d, want 3", h.Total())
		}
	})

	t.Run("key length 1 counts the whole buffer", func(t *testing.T) {
		t.Parallel()

		h := NewHistogram(buf, 1, 0)
		if h.Total() != len(buf) {
			t.Errorf("Total() = %d, want %d", h.Total(), len(buf))
		}
		if h['a'] != 3 {
			t.Errorf("h['a'] = %d, want 3", h['a'])
		}
	})

	t.Run("invalid arguments yield an empty histogram", func(t *testing.T) {
		t.Parallel()

		for _, tc := range []struct{ keyLength, offset int }{
			{0, 0}, {-1, 0}, {3, 3}, {3, -1},
		} {
			h := NewHistogram(buf, tc.keyLength, tc.offset)
			if h.Total() != 0 {
				t.Errorf("NewHistogram(buf, %d, %d).Total() = %d, want 0", tc.keyLength, tc.offset, h.Total())
			}
		}
	})
}

// TestHistogramPeaks tests peak selection with and without spread.
func TestHistogramPeaks(t *testing.T) {
	t.Parallel()

	h := NewHistogram([]byte("aaaabbbbccd"), 1, 0)

	tests := []struct {
		name   string
		spread int
		want   []byte
	}{
		{name: "ties are all peaks", spread: 0, want: []byte("ab")},
		{name: "spread one adds nothing at distance two", spread: 1, want: []byte("ab")},
		{name: "spread two adds c", spread: 2, want: []byte("abc")},
		{name: "large spread never adds absent bytes", spread: 100, want: []byte("abcd")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := h.Peaks(tt.spread); !bytes.Equal(got, tt.want) {
				t.Errorf("Peaks(%d) = %q, want %q", tt.spread, got, tt.want)
			}
		})
	}

	t.Run("empty histogram has no peaks", func(t *testing.T) {
		t.Parallel()

		var empty Histogram
		if got := empty.Peaks(0); got != nil {
			t.Errorf("Peaks() = %v, want nil", got)
		}
		if empty.Max() != 0 {
			t.Errorf("Max() = %d, want 0", empty.Max())
		}
	})
}
