package analysis

import (
	"context"
	"math/bits"

	"github.com/nao1215/xorcrack/internal/model"
)

// LanePeaks returns, for every lane of buf under keyLength, the ciphertext
// bytes whose count is within spread of the lane maximum. The peaks do not
// depend on the frequent-byte assumption, so brute force computes them once.
func LanePeaks(buf []byte, keyLength, spread int) [][]byte {
	lanes := make([][]byte, keyLength)
	for offset := range keyLength {
		h := NewHistogram(buf, keyLength, offset)
		lanes[offset] = h.Peaks(spread)
	}
	return lanes
}

// LaneCandidates returns the candidate key bytes of every lane, assuming
// frequentByte is the most frequent plaintext byte.
func LaneCandidates(buf []byte, keyLength int, frequentByte byte, spread int) [][]byte {
	return xorLanes(LanePeaks(buf, keyLength, spread), frequentByte)
}

func xorLanes(peaks [][]byte, frequentByte byte) [][]byte {
	lanes := make([][]byte, len(peaks))
	for i, lane := range peaks {
		lanes[i] = make([]byte, len(lane))
		for j, b := range lane {
			lanes[i][j] = b ^ frequentByte
		}
	}
	return lanes
}

// CountKeys returns the size of the cross product of lanes. ok is false
// when the product does not fit in an int.
func CountKeys(lanes [][]byte) (count int, ok bool) {
	if len(lanes) == 0 {
		return 0, true
	}
	total := uint64(1)
	for _, lane := range lanes {
		hi, lo := bits.Mul64(total, uint64(len(lane)))
		if hi != 0 || lo > uint64(maxInt) {
			return 0, false
		}
		total = lo
	}
	return int(total), true
}

const maxInt = int(^uint(0) >> 1)

// EnumerateKeys returns the cross product of lanes, one key per
// combination, in lane order with the first lane varying slowest. It fails
// with a *CombinatorialLimitError before allocating anything when the
// product exceeds maxCandidates. A non-positive maxCandidates disables the
// cap, but a product that overflows int is still refused.
func EnumerateKeys(lanes [][]byte, maxCandidates int) ([][]byte, error) {
	count, ok := CountKeys(lanes)
	if !ok {
		return nil, &CombinatorialLimitError{Overflow: true, Limit: maxCandidates}
	}
	if maxCandidates > 0 && count > maxCandidates {
		return nil, &CombinatorialLimitError{Count: count, Limit: maxCandidates}
	}
	if count == 0 {
		return nil, nil
	}

	keys := make([][]byte, 0, count)
	odometer := make([]int, len(lanes))
	for {
		key := make([]byte, len(lanes))
		for i, lane := range lanes {
			key[i] = lane[odometer[i]]
		}
		keys = append(keys, key)

		// Advance the last lane first and carry leftwards.
		i := len(lanes) - 1
		for ; i >= 0; i-- {
			odometer[i]++
			if odometer[i] < len(lanes[i]) {
				break
			}
			odometer[i] = 0
		}
		if i < 0 {
			return keys, nil
		}
	}
}

// GuessKeys returns all keys of length keyLength that follow from
// assuming frequentByte is the most frequent plaintext byte.
func GuessKeys(buf []byte, keyLength int, frequentByte byte, spread, maxCandidates int) ([][]byte, error) {
	return EnumerateKeys(LaneCandidates(buf, keyLength, frequentByte, spread), maxCandidates)
}

// GuessProbableKeys runs GuessKeys for every byte of the assumption in
// ascending order and merges the results.
//
// Keys are deduplicated in first-seen order. When several assumed bytes
// produce the same key, the smallest of them is kept as its FrequentByte.
// The cap applies both to each assumption and to the merged set.
// Cancellation of ctx is checked before each assumed byte.
func GuessProbableKeys(ctx context.Context, buf []byte, keyLength int, assumption Assumption, spread, maxCandidates int) ([]model.KeyCandidate, error) {
	peaks := LanePeaks(buf, keyLength, spread)

	var (
		keys []model.KeyCandidate
		seen = map[string]struct{}{}
	)
	for _, frequentByte := range assumption.Bytes() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		guessed, err := EnumerateKeys(xorLanes(peaks, frequentByte), maxCandidates)
		if err != nil {
			return nil, err
		}
		for _, key := range guessed {
			if _, dup := seen[string(key)]; dup {
				continue
			}
			seen[string(key)] = struct{}{}
			keys = append(keys, model.KeyCandidate{Key: key, FrequentByte: frequentByte})
		}
		if maxCandidates > 0 && len(keys) > maxCandidates {
			return nil, &CombinatorialLimitError{Count: len(keys), Limit: maxCandidates}
		}
	}
	return keys, nil
}
