package model

import (
	"time"
)

// AnalysisReport is the per-input result structure.
// It wraps the core Analysis with information about where the ciphertext
// came from and how the run went, the way a scan report wraps its findings.
//
// Design decision: The core Analysis stays free of I/O concerns (source path,
// timestamps, fingerprints). The pipeline fills this wrapper step by step and
// the report writers and the history database consume it.
type AnalysisReport struct {
	// === Input Information ===

	// Source is the input file path, or "-" for standard input.
	Source string `json:"source"`

	// DateAnalyzed is the timestamp when the analysis started.
	DateAnalyzed time.Time `json:"date_analyzed"`

	// InputSize is the ciphertext length in bytes after hex decoding.
	InputSize int `json:"input_size"`

	// Fingerprint is the SHA3-256 digest of the ciphertext, hex encoded.
	// It lets the history database group runs over the same input.
	Fingerprint string `json:"fingerprint,omitempty"`

	// Ciphertext is the loaded input. It is excluded from JSON because it is
	// the caller's data and may be large.
	Ciphertext []byte `json:"-"`

	// === Result ===

	// Analysis is the core result. Nil until the analyze step succeeds.
	Analysis *Analysis `json:"analysis,omitempty"`

	// OutputDir is the directory plaintexts were written to, if any.
	OutputDir string `json:"output_dir,omitempty"`

	// === Run State ===

	// TimedOut is true if the run was cancelled before completing.
	TimedOut bool `json:"timed_out"`

	// PerformedSteps lists the pipeline steps that were executed.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error contains any error that stopped the analysis.
	Error error `json:"-"` // Excluded from JSON

	// ErrorMessage is the string representation of Error for serialization.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// NewAnalysisReport creates a new report for the given input source.
func NewAnalysisReport(source string) *AnalysisReport {
	return &AnalysisReport{
		Source:       source,
		DateAnalyzed: time.Now(),
	}
}

// Succeeded reports whether the analysis completed without error.
func (r *AnalysisReport) Succeeded() bool {
	return r.Error == nil && r.ErrorMessage == "" && r.Analysis != nil
}

// WithoutData returns a shallow copy of the report whose plaintext buffers
// are dropped. Used before persisting, where only keys and scores matter.
func (r *AnalysisReport) WithoutData() *AnalysisReport {
	clone := *r
	clone.Ciphertext = nil
	if r.Analysis != nil {
		analysis := *r.Analysis
		analysis.Plaintexts = make([]Plaintext, len(r.Analysis.Plaintexts))
		for i, p := range r.Analysis.Plaintexts {
			p.Data = nil
			analysis.Plaintexts[i] = p
		}
		clone.Analysis = &analysis
	}
	return &clone
}
