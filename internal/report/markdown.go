package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/xorcrack/internal/model"
)

// maxMarkdownKeys is the number of keys listed in the Markdown key table.
const maxMarkdownKeys = 20

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.AnalysisReport) (int, error) {
	md := markdown.NewMarkdown(w.output)
	simple := model.NewSimpleReport(report)

	w.writeHeader(md, report, simple)

	if a := report.Analysis; a != nil {
		w.writeKeyLengths(md, a)
		w.writeKeys(md, a)
		w.writeAlert(md, a)
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteSimple outputs the simple report in Markdown format.
func (w *MarkdownWriter) WriteSimple(report *model.SimpleReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H2(report.Source)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Analyzed", report.DateAnalyzed.Format("2006-01-02 15:04:05 MST")},
			{"Input Size", humanize.Bytes(uint64(report.InputSize))},
			{"Key Length", keyLengthText(report)},
			{"Candidate Keys", humanize.Comma(int64(report.CandidateCount))},
			{"Valid Plaintexts", humanize.Comma(int64(report.ValidCount))},
			{"Status", markdownStatus(report)},
		},
	})
	md.PlainText("")

	if len(report.TopCandidates) > 0 {
		rows := make([][]string, 0, len(report.TopCandidates))
		for _, c := range report.TopCandidates {
			rows = append(rows, []string{
				strconv.Itoa(c.Index),
				"`" + c.Key + "`",
				"`" + charRepr(c.FrequentByte) + "`",
				strconv.Itoa(c.Validity) + "%",
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"#", "Key", "Char", "Valid"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with input information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.AnalysisReport, simple *model.SimpleReport) {
	md.H1("xorcrack Report")
	md.PlainText("")

	rows := [][]string{
		{"Input", "`" + report.Source + "`"},
		{"Analysis Date", report.DateAnalyzed.Format("2006-01-02 15:04:05 MST")},
		{"Input Size", humanize.Bytes(uint64(report.InputSize))},
	}
	if report.Fingerprint != "" {
		rows = append(rows, []string{"SHA3-256", "`" + report.Fingerprint + "`"})
	}
	if a := report.Analysis; a != nil && a.RecoveryRequested() {
		title := cases.Title(language.English)
		rows = append(rows,
			[]string{"Frequent Char", title.String(a.Assumption)},
			[]string{"Charset", title.String(a.Charset)},
		)
	}
	rows = append(rows, []string{"Status", markdownStatus(simple)})

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// markdownStatus returns the status text based on report state.
func markdownStatus(report *model.SimpleReport) string {
	if report.TimedOut {
		return "⚠️ Timed Out"
	}
	if report.Error != "" {
		return "❌ Error - " + report.Error
	}
	return "✅ Complete"
}

// keyLengthText renders the key length with its origin.
func keyLengthText(report *model.SimpleReport) string {
	if report.KeyLength == 0 {
		return "-"
	}
	if !report.KeyLengthEstimated {
		return strconv.Itoa(report.KeyLength) + " (given)"
	}
	return fmt.Sprintf("%d (%.1f%%)", report.KeyLength, report.KeyLengthPercent)
}

// writeKeyLengths writes the key length candidates and divisor hints.
func (w *MarkdownWriter) writeKeyLengths(md *markdown.Markdown, a *model.Analysis) {
	md.H2("Key Length")
	md.PlainText("")

	if !a.KeyLengthEstimated {
		md.PlainTextf("Key length **%d** was given.", a.KeyLength)
		md.PlainText("")
		return
	}

	best, _ := a.BestKeyLength()
	rows := make([][]string, 0, len(a.KeyLengths))
	for _, c := range a.KeyLengths {
		length := strconv.Itoa(c.Length)
		percent := fmt.Sprintf("%.1f%%", c.Percent)
		if c.Length == best.Length {
			length = "**" + length + "**"
			percent = "**" + percent + "**"
		}
		rows = append(rows, []string{length, percent})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Length", "Probability"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, a)

	if len(a.Divisors) > 0 {
		items := make([]string, 0, len(a.Divisors))
		for _, d := range a.Divisors {
			items = append(items, fmt.Sprintf("Key length can be %d*n", d))
		}
		md.BulletList(items...)
		md.PlainText("")
	}
}

// writePieChart writes a mermaid pie chart of the key length percentages.
// Percentages are scaled by ten so one decimal survives the integer values.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, a *model.Analysis) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Key Length Probability (per mille)"),
		piechart.WithShowData(true),
	)

	for _, c := range a.KeyLengths {
		if c.Percent <= 0 {
			continue
		}
		chart.LabelAndIntValue(strconv.Itoa(c.Length), uint64(c.Percent*10+0.5))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeKeys writes the candidate key table.
func (w *MarkdownWriter) writeKeys(md *markdown.Markdown, a *model.Analysis) {
	if !a.RecoveryRequested() {
		return
	}

	md.H2("Candidate Keys")
	md.PlainText("")

	if len(a.Plaintexts) == 0 {
		md.PlainTextf("%s candidate key(s), none retained.", humanize.Comma(int64(a.CandidateCount)))
		md.PlainText("")
		return
	}

	md.PlainTextf("%s candidate key(s) of length %d, %s retained.",
		humanize.Comma(int64(a.CandidateCount)), a.KeyLength, humanize.Comma(int64(len(a.Plaintexts))))
	md.PlainText("")

	shown := a.Plaintexts[:min(maxMarkdownKeys, len(a.Plaintexts))]
	rows := make([][]string, 0, len(shown))
	for _, p := range shown {
		valid := strconv.Itoa(p.Validity) + "%"
		if p.Validity > a.Threshold {
			valid = "**" + valid + "**"
		}
		rows = append(rows, []string{
			strconv.Itoa(p.Index),
			"`" + p.Key.String() + "`",
			"`" + p.Key.Hex() + "`",
			"`" + charRepr(p.FrequentByte) + "`",
			valid,
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "Key", "Hex", "Char", "Valid"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(a.Plaintexts) > len(shown) {
		md.Details("More keys", fmt.Sprintf("%d further plaintexts are in the output directory.",
			len(a.Plaintexts)-len(shown)))
		md.PlainText("")
	}
}

// writeAlert writes an alert summarizing the recovery outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, a *model.Analysis) {
	switch {
	case !a.RecoveryRequested():
		md.Note("Only the key length was estimated. Pass --char, --brute-chars or --brute-printable to recover keys.")
	case a.ValidCount > 0:
		md.Tip(fmt.Sprintf("Found %d plaintext(s) with %d%%+ valid characters.", a.ValidCount, a.Threshold))
	default:
		md.Warningf("No plaintext has more than %d%% valid characters. Try another char or a larger spread.", a.Threshold)
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [xorcrack](https://github.com/nao1215/xorcrack)*")
}
