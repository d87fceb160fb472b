package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nao1215/xorcrack/internal/config"
	"github.com/nao1215/xorcrack/internal/database"
	"github.com/nao1215/xorcrack/internal/input"
	"github.com/nao1215/xorcrack/internal/pipeline"
	"github.com/nao1215/xorcrack/internal/report"
)

// defaultHistoryLimit is the number of analyses listed by default.
const defaultHistoryLimit = 20

// ErrAnalysisNotFound is returned when --id names no stored analysis.
var ErrAnalysisNotFound = errors.New("analysis not found")

// NewHistoryCmd creates the history command.
// This command shows past analyses stored in the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past analyses",
		Long: `History lists analyses recorded by 'xorcrack analyze' and shows stored reports.

Reports are stored without plaintexts. Keys, validity scores and key length
estimates are kept, so a past result can be reviewed without the input.

Examples:
  # List recent analyses
  xorcrack history

  # Show a stored report
  xorcrack history --id 5

  # List every analysis of the same ciphertext
  xorcrack history --file secret.bin

  # Output the list in JSON format
  xorcrack history --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List recent analyses (default when no other mode is given)")
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Number of analyses to list (0 lists all)")
	cmd.Flags().Int64P("id", "i", 0,
		"Show the stored report with this ID")
	cmd.Flags().String("file", "",
		"List analyses of the same ciphertext as this file")
	cmd.Flags().BoolP("hex", "x", false,
		"The --file input is hex-encoded")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().BoolP("markdown", "M", false,
		"Output a stored report in Markdown format")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	return cmd
}

// historyOptions holds the parsed history flags.
type historyOptions struct {
	list     bool
	limit    int
	id       int64
	file     string
	isHex    bool
	json     bool
	markdown bool
	dbDir    string
}

func parseHistoryFlags(cmd *cobra.Command) (historyOptions, error) {
	var opts historyOptions
	var err error
	flags := cmd.Flags()

	if opts.list, err = flags.GetBool("list"); err != nil {
		return opts, err
	}
	if opts.limit, err = flags.GetInt("limit"); err != nil {
		return opts, err
	}
	if opts.id, err = flags.GetInt64("id"); err != nil {
		return opts, err
	}
	if opts.file, err = flags.GetString("file"); err != nil {
		return opts, err
	}
	if opts.isHex, err = flags.GetBool("hex"); err != nil {
		return opts, err
	}
	if opts.json, err = flags.GetBool("json"); err != nil {
		return opts, err
	}
	if opts.markdown, err = flags.GetBool("markdown"); err != nil {
		return opts, err
	}
	if opts.dbDir, err = flags.GetString("db-dir"); err != nil {
		return opts, err
	}

	if opts.json && opts.markdown {
		return opts, config.ErrConflictingReportFormats
	}
	modes := 0
	for _, set := range []bool{opts.list, opts.id != 0, opts.file != ""} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		return opts, errors.New("--list, --id and --file cannot be used together")
	}
	return opts, nil
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	// Validate flags before opening the database
	opts, err := parseHistoryFlags(cmd)
	if err != nil {
		return err
	}

	db, err := database.Open(opts.dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(cmd.OutOrStdout(), "No analyses recorded yet.")
		fmt.Fprintln(cmd.OutOrStdout(), "\nUse 'xorcrack analyze <file>' to analyze a ciphertext.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case opts.id != 0:
		return showAnalysis(cmd, db, opts)
	case opts.file != "":
		data, err := input.Load(opts.file, cmd.InOrStdin(), opts.isHex)
		if err != nil {
			return err
		}
		records, err := db.ListByFingerprint(ctx, pipeline.Fingerprint(data))
		if err != nil {
			return err
		}
		return writeHistory(out, records, opts.json, "Analyses of "+opts.file)
	default:
		records, err := db.ListAnalyses(ctx, opts.limit)
		if err != nil {
			return err
		}
		return writeHistory(out, records, opts.json, "Recent analyses")
	}
}

// showAnalysis renders one stored report.
func showAnalysis(cmd *cobra.Command, db *database.HistoryDB, opts historyOptions) error {
	stored, err := db.GetAnalysisByID(cmd.Context(), opts.id)
	if err != nil {
		return err
	}
	if stored == nil {
		return fmt.Errorf("%w: id %d (use 'xorcrack history' to see available IDs)", ErrAnalysisNotFound, opts.id)
	}

	var w report.Writer
	switch {
	case opts.json:
		w = report.NewFullJSONWriter(cmd.OutOrStdout(), getVersion(), report.WithPrettyPrint())
	case opts.markdown:
		w = report.NewMarkdownWriter(cmd.OutOrStdout())
	default:
		w = report.NewSimpleWriter(cmd.OutOrStdout())
	}
	_, err = w.Write(stored)
	return err
}

// writeHistory writes a list of analyses as a table or JSON.
func writeHistory(out io.Writer, records []database.AnalysisRecord, jsonOutput bool, title string) error {
	if jsonOutput {
		if records == nil {
			records = []database.AnalysisRecord{}
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No analyses found.")
		return nil
	}

	fmt.Fprintf(out, "%s (%d):\n\n", title, len(records))
	fmt.Fprintf(out, "  %-6s  %-19s  %-8s  %6s  %10s  %6s  %s\n",
		"ID", "Date", "Status", "KeyLen", "Candidates", "Valid", "Source")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 76))

	for _, rec := range records {
		fmt.Fprintf(out, "  %-6d  %-19s  %-8s  %6d  %10s  %6s  %s\n",
			rec.ID,
			rec.AnalyzedAt.Local().Format("2006-01-02 15:04:05"),
			rec.Status,
			rec.KeyLength,
			humanize.Comma(int64(rec.CandidateCount)),
			humanize.Comma(int64(rec.ValidCount)),
			rec.Source,
		)
	}

	fmt.Fprintln(out, "\nUse 'xorcrack history --id <id>' to show a stored report.")
	return nil
}
