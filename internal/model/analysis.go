package model

// KeyLengthCandidate is a key length that produced a local maximum of the
// coincidence fitness curve.
type KeyLengthCandidate struct {
	// Length is the probed key length.
	Length int `json:"length"`

	// Fitness is the normalized coincidence score. Only the relative order
	// between candidates is meaningful.
	Fitness float64 `json:"fitness"`

	// Percent is Fitness relative to the sum over the reported candidates,
	// rounded to one decimal. Zero for candidates that were not reported.
	Percent float64 `json:"percent"`
}

// KeyCandidate is a recovered key together with the frequent-byte
// assumption that produced it.
type KeyCandidate struct {
	// Key is the candidate key; its length is the analyzed key length.
	Key HexBytes `json:"key"`

	// FrequentByte is the assumed most frequent plaintext byte. When several
	// assumptions produce the same key this is the smallest of them.
	FrequentByte byte `json:"frequent_byte"`
}

// Plaintext is the ciphertext decoded under one candidate key.
type Plaintext struct {
	// Index is the position of the key in Analysis.Keys. It is stable even
	// when other plaintexts are dropped by the known-plaintext filter, so it
	// doubles as the output file number.
	Index int `json:"index"`

	// Key is the key used for decoding.
	Key HexBytes `json:"key"`

	// FrequentByte is the assumption that produced Key.
	FrequentByte byte `json:"frequent_byte"`

	// Validity is the percentage (0 to 100) of decoded bytes that belong to
	// the target charset.
	Validity int `json:"validity"`

	// Persist is false when output filtering excludes this plaintext from
	// the written plaintext files.
	Persist bool `json:"persist"`

	// Data is the decoded buffer.
	Data HexBytes `json:"data,omitempty"`
}

// Analysis is the result of one complete key recovery run.
type Analysis struct {
	// === Key Length ===

	// KeyLengthEstimated is true when the key length was estimated rather
	// than supplied by the caller.
	KeyLengthEstimated bool `json:"key_length_estimated"`

	// KeyLengths holds up to ten local-maximum candidates ordered by length.
	KeyLengths []KeyLengthCandidate `json:"key_lengths,omitempty"`

	// Divisors are the most voted divisors of the candidate lengths
	// (advisory output, "key length can be N*n").
	Divisors []int `json:"divisors,omitempty"`

	// DivisorFallback is the last reported divisor, or 2 when none.
	DivisorFallback int `json:"divisor_fallback,omitempty"`

	// KeyLength is the key length used for key recovery.
	KeyLength int `json:"key_length"`

	// === Key Recovery ===

	// Assumption describes the frequent-byte assumption, empty when key
	// recovery was not requested.
	Assumption string `json:"assumption,omitempty"`

	// Charset is the name of the target charset.
	Charset string `json:"charset,omitempty"`

	// KnownPlaintext is the configured known-plaintext filter, if any.
	KnownPlaintext string `json:"known_plaintext,omitempty"`

	// FilterOutput mirrors the output filter setting.
	FilterOutput bool `json:"filter_output"`

	// Keys is the deduplicated candidate key list in discovery order.
	Keys []KeyCandidate `json:"keys,omitempty"`

	// Plaintexts holds the decoded candidates that passed the
	// known-plaintext filter, in key order.
	Plaintexts []Plaintext `json:"plaintexts,omitempty"`

	// === Summary ===

	// CandidateCount is the number of candidate keys, before filtering.
	CandidateCount int `json:"candidate_count"`

	// ValidCount is the number of retained plaintexts whose validity
	// exceeds Threshold.
	ValidCount int `json:"valid_count"`

	// Threshold is the validity percentage a plaintext must exceed to count
	// as valid.
	Threshold int `json:"threshold"`
}

// RecoveryRequested reports whether key recovery ran.
func (a *Analysis) RecoveryRequested() bool {
	return a.Assumption != ""
}

// PersistedPlaintexts returns the plaintexts that should be written out.
func (a *Analysis) PersistedPlaintexts() []Plaintext {
	out := make([]Plaintext, 0, len(a.Plaintexts))
	for _, p := range a.Plaintexts {
		if p.Persist {
			out = append(out, p)
		}
	}
	return out
}

// BestKeyLength returns the reported candidate with the highest fitness,
// or false when no candidates were reported.
func (a *Analysis) BestKeyLength() (KeyLengthCandidate, bool) {
	if len(a.KeyLengths) == 0 {
		return KeyLengthCandidate{}, false
	}
	best := a.KeyLengths[0]
	for _, c := range a.KeyLengths[1:] {
		if c.Fitness > best.Fitness {
			best = c
		}
	}
	return best, true
}
