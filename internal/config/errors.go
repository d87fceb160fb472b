package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoInput is returned when no input file is specified.
	ErrNoInput = errors.New("no input specified: provide a file or use - for stdin")

	// ErrInvalidMaxKeyLength is returned when the max key length is not positive.
	ErrInvalidMaxKeyLength = errors.New("invalid max key length: must be positive")

	// ErrInvalidKeyLength is returned when the known key length is negative.
	ErrInvalidKeyLength = errors.New("invalid key length: must be positive")

	// ErrConflictingAssumptions is returned when more than one of --char,
	// --brute-chars and --brute-printable is given.
	ErrConflictingAssumptions = errors.New("conflicting options: --char, --brute-chars and --brute-printable cannot be used together")

	// ErrInvalidSpread is returned when the frequency spread is negative.
	ErrInvalidSpread = errors.New("invalid spread: must be non-negative")

	// ErrInvalidMaxCandidates is returned when the candidate cap is negative.
	// Use 0 to disable the cap.
	ErrInvalidMaxCandidates = errors.New("invalid max candidates: must be non-negative")

	// ErrInvalidConcurrency is returned when the concurrency is negative.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be non-negative")

	// ErrInvalidTimeout is returned when the timeout is negative.
	// Use 0 for no timeout.
	ErrInvalidTimeout = errors.New("invalid timeout: must be non-negative")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidColorMode is returned for a --color value other than
	// auto, always or never.
	ErrInvalidColorMode = errors.New("invalid color mode: must be auto, always or never")

	// ErrDuplicateStdin is returned when standard input is named more than
	// once. It can only be read once.
	ErrDuplicateStdin = errors.New("standard input (-) can be given only once")

	// ErrNoOutputDir is returned when plaintext files are enabled without
	// an output directory.
	ErrNoOutputDir = errors.New("no output directory: use --output-dir or --no-files")
)
