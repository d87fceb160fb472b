package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/nao1215/xorcrack/internal/model"
)

// keysPreview is the number of keys printed before the list is cut.
const keysPreview = 5

// keysEllipsis is the key count above which a cut list ends with "...".
const keysEllipsis = 10

// SimpleWriter outputs human-readable text reports.
// It prints the key length table, divisor hints, the first few candidate
// keys and the number of valid plaintexts.
//
// Design decision: Colors are off unless enabled with WithColor. The CLI
// decides based on --color and whether stdout is a terminal, so the
// writer stays usable for files and pipes.
type SimpleWriter struct {
	baseWriter

	// verbose lists every plaintext with its validity.
	verbose bool

	// palette holds the colors, all disabled when color is off.
	palette palette
}

// palette groups the colors used in text output.
type palette struct {
	keyLength  *color.Color
	best       *color.Color
	percent    *color.Color
	count      *color.Color
	key        *color.Color
	warning    *color.Color
	errorColor *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		keyLength:  color.New(color.FgYellow),
		best:       color.New(color.FgGreen, color.Bold),
		percent:    color.New(color.FgBlue),
		count:      color.New(color.FgGreen),
		key:        color.New(color.FgRed),
		warning:    color.New(color.FgYellow, color.Bold),
		errorColor: color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.keyLength, p.best, p.percent, p.count, p.key, p.warning, p.errorColor} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with every plaintext listed.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithColor enables ANSI colors.
func WithColor(enabled bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.palette = newPalette(enabled)
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		palette:    newPalette(false),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in human-readable format.
func (w *SimpleWriter) Write(report *model.AnalysisReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)

	if report.Analysis != nil {
		w.writeKeyLengths(&sb, report.Analysis)
		w.writeKeys(&sb, report.Analysis)
		w.writePlaintexts(&sb, report)
	}

	sb.WriteString("\n")
	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the input line and, on failure, the error.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.AnalysisReport) {
	fmt.Fprintf(sb, "==> %s (%s bytes)\n", report.Source, humanize.Comma(int64(report.InputSize)))

	simple := model.NewSimpleReport(report)
	if simple.Error != "" || simple.TimedOut {
		sb.WriteString(w.palette.errorColor.Sprint(statusText(simple)))
		sb.WriteString("\n")
	}
}

// writeKeyLengths writes the key length table and divisor hints.
func (w *SimpleWriter) writeKeyLengths(sb *strings.Builder, a *model.Analysis) {
	if !a.KeyLengthEstimated {
		fmt.Fprintf(sb, "Key length: %s (given)\n", w.palette.best.Sprint(a.KeyLength))
		return
	}

	sb.WriteString("The most probable key lengths:\n")
	best, _ := a.BestKeyLength()
	for _, c := range a.KeyLengths {
		length := fmt.Sprintf("%4d", c.Length)
		percent := fmt.Sprintf("%.1f%%", c.Percent)
		if c.Length == best.Length {
			fmt.Fprintf(sb, "%s:   %s\n", w.palette.best.Sprint(length), w.palette.best.Sprint(percent))
			continue
		}
		fmt.Fprintf(sb, "%s:   %s\n", w.palette.keyLength.Sprint(length), w.palette.percent.Sprint(percent))
	}

	for _, d := range a.Divisors {
		fmt.Fprintf(sb, "Key-length can be %s*n\n", w.palette.keyLength.Sprint(d))
	}
}

// writeKeys writes the candidate key preview.
func (w *SimpleWriter) writeKeys(sb *strings.Builder, a *model.Analysis) {
	if !a.RecoveryRequested() {
		sb.WriteString(w.palette.warning.Sprint("Most possible char is needed to guess the key!"))
		sb.WriteString(" (use --char, --brute-chars or --brute-printable)\n")
		return
	}

	if len(a.Keys) == 0 {
		sb.WriteString("No keys guessed!\n")
		return
	}

	fmt.Fprintf(sb, "%s possible key(s) of length %s:\n",
		w.palette.count.Sprint(humanize.Comma(int64(len(a.Keys)))),
		w.palette.count.Sprint(a.KeyLength))
	for _, k := range a.Keys[:min(keysPreview, len(a.Keys))] {
		sb.WriteString(w.palette.key.Sprint(k.Key.String()))
		sb.WriteString("\n")
	}
	if len(a.Keys) > keysEllipsis {
		sb.WriteString("...\n")
	}
}

// writePlaintexts writes the valid plaintext count and the output files.
func (w *SimpleWriter) writePlaintexts(sb *strings.Builder, report *model.AnalysisReport) {
	a := report.Analysis
	if !a.RecoveryRequested() {
		return
	}

	fmt.Fprintf(sb, "Found %s plaintexts with %s valid characters\n",
		w.palette.count.Sprint(humanize.Comma(int64(a.ValidCount))),
		w.palette.count.Sprintf("%d%%+", a.Threshold))
	if a.KnownPlaintext != "" {
		fmt.Fprintf(sb, "%s plaintexts contain %s\n",
			humanize.Comma(int64(len(a.Plaintexts))), model.HexBytes(a.KnownPlaintext).Repr())
	}

	if w.verbose {
		for _, p := range a.Plaintexts {
			fmt.Fprintf(sb, "  [%d] key %s char %s validity %d%%\n",
				p.Index, p.Key.Repr(), charRepr(p.FrequentByte), p.Validity)
		}
	}

	if report.OutputDir != "" {
		fmt.Fprintf(sb, "See files %s, %s\n",
			filepath.Join(report.OutputDir, KeyMappingFile),
			filepath.Join(report.OutputDir, PercentMappingFile))
	}
}

// WriteSimple outputs the simple report in human-readable format.
func (w *SimpleWriter) WriteSimple(report *model.SimpleReport) (int, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s  %s  %s bytes  %s\n",
		report.DateAnalyzed.Format("2006-01-02 15:04:05"),
		report.Source,
		humanize.Comma(int64(report.InputSize)),
		statusText(report))

	keyLength := fmt.Sprintf("%d (given)", report.KeyLength)
	if report.KeyLengthEstimated {
		keyLength = fmt.Sprintf("%d (%.1f%%)", report.KeyLength, report.KeyLengthPercent)
	}
	fmt.Fprintf(&sb, "  key length %s, %s candidate key(s), %s valid\n",
		keyLength,
		humanize.Comma(int64(report.CandidateCount)),
		w.palette.count.Sprint(humanize.Comma(int64(report.ValidCount))))

	for _, c := range report.TopCandidates {
		fmt.Fprintf(&sb, "  [%d] %s %d%%\n", c.Index, w.palette.key.Sprint(c.Key), c.Validity)
	}

	return w.output.Write([]byte(sb.String()))
}
