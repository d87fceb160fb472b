package analysis

// Histogram counts byte values over one key lane.
// Index i holds the number of occurrences of byte value i.
type Histogram [256]int

// NewHistogram counts buf[p] for every position p with p mod keyLength ==
// offset. A non-positive keyLength or an offset outside [0, keyLength)
// yields an empty histogram.
func NewHistogram(buf []byte, keyLength, offset int) Histogram {
	var h Histogram
	if keyLength <= 0 || offset < 0 || offset >= keyLength {
		return h
	}
	for p := offset; p < len(buf); p += keyLength {
		h[buf[p]]++
	}
	return h
}

// Max returns the highest count in the histogram.
func (h *Histogram) Max() int {
	m := 0
	for _, c := range h {
		if c > m {
			m = c
		}
	}
	return m
}

// Total returns the number of bytes counted.
func (h *Histogram) Total() int {
	n := 0
	for _, c := range h {
		n += c
	}
	return n
}

// Peaks returns, in ascending order, the byte values whose count is at
// least Max()-spread. Bytes that never occur are never peaks.
// With spread 0 this is exactly the set of most frequent bytes.
func (h *Histogram) Peaks(spread int) []byte {
	m := h.Max()
	if m == 0 {
		return nil
	}
	threshold := max(m-spread, 1)

	var peaks []byte
	for b, c := range h {
		if c >= threshold {
			peaks = append(peaks, byte(b))
		}
	}
	return peaks
}
