package model

import (
	"cmp"
	"slices"
	"time"
)

// maxTopCandidates is the number of plaintexts listed in a SimpleReport.
const maxTopCandidates = 5

// SimpleReport is a summarized, human-readable report.
// It extracts the key findings from the full analysis report for quick
// review and for batch listings.
//
// Design decision: We create a separate simplified report rather than
// just printing parts of AnalysisReport because:
// 1. It provides a consistent, curated view of the most important results
// 2. It can be serialized to JSON without the (possibly large) plaintexts
// 3. It separates presentation concerns from the analysis itself
type SimpleReport struct {
	// Source is the analyzed input.
	Source string `json:"source"`

	// DateAnalyzed is when the analysis was performed.
	DateAnalyzed time.Time `json:"date_analyzed"`

	// InputSize is the ciphertext length in bytes.
	InputSize int `json:"input_size"`

	// === Key Length ===

	// KeyLength is the key length used for key recovery.
	KeyLength int `json:"key_length"`

	// KeyLengthEstimated is true when KeyLength was estimated.
	KeyLengthEstimated bool `json:"key_length_estimated"`

	// KeyLengthPercent is the relative score of KeyLength among the
	// reported candidates. Zero when the key length was given.
	KeyLengthPercent float64 `json:"key_length_percent,omitempty"`

	// === Key Recovery ===

	// CandidateCount is the number of candidate keys.
	CandidateCount int `json:"candidate_count"`

	// ValidCount is the number of plaintexts above the validity threshold.
	ValidCount int `json:"valid_count"`

	// TopCandidates lists the most valid plaintexts, best first.
	TopCandidates []CandidateSummary `json:"top_candidates,omitempty"`

	// TimedOut indicates the run was cancelled.
	TimedOut bool `json:"timed_out"`

	// Error contains any error message if the analysis failed.
	Error string `json:"error,omitempty"`
}

// CandidateSummary is one line of the top candidate list.
type CandidateSummary struct {
	// Index is the key index, which is also the output file number.
	Index int `json:"index"`

	// Key is the escaped key rendering.
	Key string `json:"key"`

	// FrequentByte is the assumption that produced the key.
	FrequentByte byte `json:"frequent_byte"`

	// Validity is the validity percentage.
	Validity int `json:"validity"`
}

// NewSimpleReport creates a new SimpleReport from an AnalysisReport.
func NewSimpleReport(report *AnalysisReport) *SimpleReport {
	s := &SimpleReport{
		Source:       report.Source,
		DateAnalyzed: report.DateAnalyzed,
		InputSize:    report.InputSize,
		TimedOut:     report.TimedOut,
		Error:        report.ErrorMessage,
	}
	if s.Error == "" && report.Error != nil {
		s.Error = report.Error.Error()
	}

	a := report.Analysis
	if a == nil {
		return s
	}

	s.KeyLength = a.KeyLength
	s.KeyLengthEstimated = a.KeyLengthEstimated
	for _, c := range a.KeyLengths {
		if c.Length == a.KeyLength {
			s.KeyLengthPercent = c.Percent
		}
	}
	s.CandidateCount = a.CandidateCount
	s.ValidCount = a.ValidCount
	s.collectTopCandidates(a)
	return s
}

// collectTopCandidates keeps the most valid plaintexts. Equal validity
// keeps key order.
func (s *SimpleReport) collectTopCandidates(a *Analysis) {
	sorted := slices.Clone(a.Plaintexts)
	slices.SortStableFunc(sorted, func(x, y Plaintext) int {
		return cmp.Compare(y.Validity, x.Validity)
	})
	if len(sorted) > maxTopCandidates {
		sorted = sorted[:maxTopCandidates]
	}
	for _, p := range sorted {
		s.TopCandidates = append(s.TopCandidates, CandidateSummary{
			Index:        p.Index,
			Key:          p.Key.String(),
			FrequentByte: p.FrequentByte,
			Validity:     p.Validity,
		})
	}
}

// HasValidPlaintexts returns true if any plaintext passed the threshold.
func (s *SimpleReport) HasValidPlaintexts() bool {
	return s.ValidCount > 0
}
