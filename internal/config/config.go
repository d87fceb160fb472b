package config

import (
	"path/filepath"
	"runtime"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/xorcrack/internal/analysis"
	"github.com/nao1215/xorcrack/internal/charset"
	"github.com/nao1215/xorcrack/internal/input"
)

// Default configuration values.
const (
	// DefaultMaxKeyLength is the longest key length probed when the key
	// length is unknown. 65 covers typical passphrases while keeping the
	// length penalty of the fitness score meaningful.
	DefaultMaxKeyLength = analysis.DefaultMaxKeyLength

	// DefaultMaxCandidates caps the number of candidate keys. Brute force
	// over all 256 bytes with a few tied lanes reaches this quickly, and
	// every candidate is decoded and scored.
	DefaultMaxCandidates = analysis.DefaultMaxCandidates

	// DefaultOutputDir is where plaintext candidates are written.
	DefaultOutputDir = "xorcrack_out"

	// DefaultBatchSize of 4 concurrent inputs. Each analysis is already
	// parallel internally, so a small number is enough to keep CPUs busy.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "xorcrack"
)

// Color modes for terminal output.
const (
	// ColorAuto enables colors when stdout is a terminal.
	ColorAuto = "auto"

	// ColorAlways forces colors.
	ColorAlways = "always"

	// ColorNever disables colors.
	ColorNever = "never"
)

// Config holds all configuration options for xorcrack.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., AnalysisConfig, ReportConfig) for simplicity. The analysis engine
// gets its own immutable analysis.Options built by AnalysisOptions, so this
// struct only has to be convenient for the CLI.
type Config struct {
	// MaxKeyLength is the longest key length probed during estimation.
	MaxKeyLength int

	// KnownKeyLength skips estimation when positive.
	KnownKeyLength int

	// FrequentChar is the most frequent plaintext character as given on
	// the command line: one character, \xNN, NN or 0xNN.
	// Empty means no fixed assumption.
	FrequentChar string

	// BruteChars tries every byte value as the most frequent character.
	// Mutually exclusive with FrequentChar and BrutePrintable.
	BruteChars bool

	// BrutePrintable tries every printable byte as the most frequent
	// character. Mutually exclusive with FrequentChar and BruteChars.
	BrutePrintable bool

	// Charset is the target charset specification used to score plaintexts.
	Charset string

	// KnownPlaintext drops every plaintext that does not contain it.
	KnownPlaintext string

	// FilterOutput writes only plaintexts above the validity threshold.
	FilterOutput bool

	// InputIsHex means inputs are hex encoded and must be decoded first.
	InputIsHex bool

	// Spread accepts lane bytes whose count is within Spread of the
	// lane maximum as peaks.
	Spread int

	// MaxCandidates caps candidate key enumeration. Zero disables the cap.
	MaxCandidates int

	// Concurrency limits parallel work inside one analysis.
	// Zero means runtime.NumCPU().
	Concurrency int

	// Timeout bounds one analysis. Zero means no timeout.
	Timeout time.Duration

	// OutputDir is the directory plaintext candidates are written to.
	// The mappings and numbered .out files of a previous run are removed;
	// other files are kept.
	OutputDir string

	// WriteFiles enables writing the plaintext directory.
	WriteFiles bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// BatchSize is the number of inputs analyzed concurrently.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .xorcrack in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// InputConfigs holds per-input overrides loaded from the config file.
	InputConfigs *File

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of human-readable format.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// Color is one of ColorAuto, ColorAlways or ColorNever.
	Color string

	// DBDir is the directory path for storing the SQLite history database.
	// Defaults to XDG data directory (~/.local/share/xorcrack on Linux).
	DBDir string

	// SaveToDB indicates whether to save results to the history database.
	SaveToDB bool

	// Inputs is the list of files to analyze. "-" means standard input.
	Inputs []string
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., max key length,
// output directory). This also serves as documentation of what the
// defaults are.
func NewConfig() *Config {
	return &Config{
		MaxKeyLength:  DefaultMaxKeyLength,
		Charset:       charset.DefaultName,
		MaxCandidates: DefaultMaxCandidates,
		OutputDir:     DefaultOutputDir,
		WriteFiles:    true,
		BatchSize:     DefaultBatchSize,
		Color:         ColorAuto,
		SaveToDB:      true,
		DBDir:         XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for xorcrack.
// On Linux: ~/.local/share/xorcrack
// On macOS: ~/Library/Application Support/xorcrack
// On Windows: %LOCALAPPDATA%\xorcrack
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for xorcrack.
// On Linux: ~/.config/xorcrack
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// We return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return ErrNoInput
	}

	stdinCount := 0
	for _, path := range c.Inputs {
		if path == "" || path == input.StdinPath {
			stdinCount++
		}
	}
	if stdinCount > 1 {
		return ErrDuplicateStdin
	}

	if c.MaxKeyLength <= 0 {
		return ErrInvalidMaxKeyLength
	}

	if c.KnownKeyLength < 0 {
		return ErrInvalidKeyLength
	}

	// Only one frequent-byte assumption may be selected
	assumptions := 0
	for _, set := range []bool{c.FrequentChar != "", c.BruteChars, c.BrutePrintable} {
		if set {
			assumptions++
		}
	}
	if assumptions > 1 {
		return ErrConflictingAssumptions
	}

	if c.FrequentChar != "" {
		if _, err := input.ParseChar(c.FrequentChar); err != nil {
			return err
		}
	}

	if _, err := charset.Parse(c.Charset); err != nil {
		return err
	}

	if c.Spread < 0 {
		return ErrInvalidSpread
	}

	if c.MaxCandidates < 0 {
		return ErrInvalidMaxCandidates
	}

	if c.Concurrency < 0 {
		return ErrInvalidConcurrency
	}

	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return ErrInvalidColorMode
	}

	if c.WriteFiles && c.OutputDir == "" {
		return ErrNoOutputDir
	}

	return nil
}

// AnalysisOptions builds the immutable analysis options from the
// configuration. A known key length longer than MaxKeyLength raises the
// maximum to match.
func (c *Config) AnalysisOptions() (analysis.Options, error) {
	cs, err := charset.Parse(c.Charset)
	if err != nil {
		return analysis.Options{}, err
	}

	assumption, err := c.assumption()
	if err != nil {
		return analysis.Options{}, err
	}

	concurrency := c.Concurrency
	if concurrency == 0 {
		concurrency = runtime.NumCPU()
	}

	opts := analysis.Options{
		MaxKeyLength:    max(c.MaxKeyLength, c.KnownKeyLength),
		KnownKeyLength:  c.KnownKeyLength,
		Assumption:      assumption,
		Charset:         cs,
		FilterOutput:    c.FilterOutput,
		MaxCandidates:   c.MaxCandidates,
		FrequencySpread: c.Spread,
		Concurrency:     concurrency,
		Tunables:        analysis.DefaultTunables(),
	}
	if c.KnownPlaintext != "" {
		opts.KnownPlaintext = []byte(c.KnownPlaintext)
	}
	return opts, nil
}

func (c *Config) assumption() (analysis.Assumption, error) {
	switch {
	case c.BruteChars:
		return analysis.AssumeAllBytes(), nil
	case c.BrutePrintable:
		return analysis.AssumePrintable(), nil
	case c.FrequentChar != "":
		b, err := input.ParseChar(c.FrequentChar)
		if err != nil {
			return analysis.Assumption{}, err
		}
		return analysis.AssumeByte(b), nil
	default:
		return analysis.Assumption{}, nil
	}
}

// ForInput returns a copy of the configuration with the per-input
// overrides of the config file applied for path.
func (c *Config) ForInput(path string) *Config {
	clone := *c
	if c.InputConfigs == nil {
		return &clone
	}
	clone.apply(c.InputConfigs.GetInputConfig(path))
	return &clone
}

// apply overrides the analysis settings with the non-zero values of ic.
// Setting one frequent-byte mode clears the other two.
func (c *Config) apply(ic InputConfig) {
	if ic.KeyLength > 0 {
		c.KnownKeyLength = ic.KeyLength
	}
	if ic.MaxKeyLength > 0 {
		c.MaxKeyLength = ic.MaxKeyLength
	}
	switch {
	case ic.Char != "":
		c.FrequentChar, c.BruteChars, c.BrutePrintable = ic.Char, false, false
	case ic.BruteChars:
		c.FrequentChar, c.BruteChars, c.BrutePrintable = "", true, false
	case ic.BrutePrintable:
		c.FrequentChar, c.BruteChars, c.BrutePrintable = "", false, true
	}
	if ic.Charset != "" {
		c.Charset = ic.Charset
	}
	if ic.KnownPlaintext != "" {
		c.KnownPlaintext = ic.KnownPlaintext
	}
	if ic.Spread > 0 {
		c.Spread = ic.Spread
	}
	if ic.Hex {
		c.InputIsHex = true
	}
	if ic.FilterOutput {
		c.FilterOutput = true
	}
}
