package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nao1215/xorcrack/internal/charset"
	"github.com/nao1215/xorcrack/internal/config"
	"github.com/nao1215/xorcrack/internal/database"
	"github.com/nao1215/xorcrack/internal/input"
	xlog "github.com/nao1215/xorcrack/internal/log"
	"github.com/nao1215/xorcrack/internal/model"
	"github.com/nao1215/xorcrack/internal/pipeline"
	"github.com/nao1215/xorcrack/internal/report"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [FILE...]",
		Short: "Estimate the key length and recover repeating XOR keys",
		Long: `Analyze estimates the key length of repeating-key XOR ciphertexts and
recovers candidate keys.

Without --char, --brute-chars or --brute-printable only the key length is
estimated. With one of them, every candidate key is used to decode the input,
and the plaintexts are scored against the target charset and written to the
output directory together with two CSV mappings.

Reads standard input when FILE is omitted or "-".

Examples:
  # Estimate the key length
  xorcrack analyze secret.bin

  # Recover a key of known length, space being the most frequent char
  xorcrack analyze -l 10 -c ' ' secret.bin

  # Hex input, brute force the frequent char, keep outputs with a flag prefix
  xorcrack analyze -x -b -p 'flag{' challenge.hex

  # Binary plaintext where NUL is the most frequent byte
  xorcrack analyze -c 00 firmware.bin

Configuration file (.xorcrack) example:
  defaults:
    maxKeyLength: 40
  inputs:
    challenge.hex:
      hex: true
      char: "20"`,
		Args: cobra.ArbitraryArgs,
		RunE: runAnalyzeCmd,
	}

	// Input flags
	cmd.Flags().BoolP("hex", "x", false,
		"Input is hex-encoded (non-hex characters are ignored)")

	// Key length flags
	cmd.Flags().IntP("key-length", "l", 0,
		"Known key length (skips key length estimation)")
	cmd.Flags().IntP("max-keylen", "m", config.DefaultMaxKeyLength,
		"Maximum key length to probe")

	// Key recovery flags
	cmd.Flags().StringP("char", "c", "",
		`Most frequent plaintext char: one char, \xNN or NN hex code`)
	cmd.Flags().BoolP("brute-chars", "b", false,
		"Brute force all 256 possible most frequent chars")
	cmd.Flags().BoolP("brute-printable", "o", false,
		"Brute force printable most frequent chars")
	cmd.Flags().StringP("text-charset", "t", charset.DefaultName,
		"Target charset: "+strings.Join(charset.Names(), ", ")+" or a mix of classes a, A, 1, !, *")
	cmd.Flags().StringP("known-plaintext", "p", "",
		"Only keep plaintexts containing this string")
	cmd.Flags().IntP("spread", "s", 0,
		"Accept bytes within this count of the most frequent one as peaks")
	cmd.Flags().Int("max-candidates", config.DefaultMaxCandidates,
		"Maximum number of candidate keys (0 disables the limit)")
	cmd.Flags().BoolP("filter-output", "f", false,
		"Only write plaintexts with more than 95% valid characters")

	// Output flags
	cmd.Flags().StringP("output-dir", "d", config.DefaultOutputDir,
		"Directory for plaintext files (output of a previous run is replaced)")
	cmd.Flags().Bool("no-files", false,
		"Do not write the plaintext directory")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "M", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().String("report-file", "",
		"Write the report to this file instead of stdout")
	cmd.Flags().String("color", config.ColorAuto,
		"Colorize text output: auto, always or never")

	// Execution flags
	cmd.Flags().StringP("config", "C", "",
		"Configuration file path (default: .xorcrack in current or home directory)")
	cmd.Flags().Bool("no-history", false,
		"Do not save results to the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")
	cmd.Flags().IntP("batch", "B", config.DefaultBatchSize,
		"Number of inputs analyzed concurrently")
	cmd.Flags().Int("concurrency", 0,
		"Workers per analysis (default: number of CPUs)")
	cmd.Flags().Duration("timeout", 0,
		"Time limit per input, e.g. 30s (default: none)")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := validateConfig(cfg); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := xlog.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	// Cancel the running analyses on interrupt
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runAnalyze(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout(), logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags and the optional
// configuration file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.InputIsHex, err = flags.GetBool("hex"); err != nil {
		return nil, err
	}
	if cfg.KnownKeyLength, err = flags.GetInt("key-length"); err != nil {
		return nil, err
	}
	if cfg.MaxKeyLength, err = flags.GetInt("max-keylen"); err != nil {
		return nil, err
	}
	if cfg.FrequentChar, err = flags.GetString("char"); err != nil {
		return nil, err
	}
	if cfg.BruteChars, err = flags.GetBool("brute-chars"); err != nil {
		return nil, err
	}
	if cfg.BrutePrintable, err = flags.GetBool("brute-printable"); err != nil {
		return nil, err
	}
	if cfg.Charset, err = flags.GetString("text-charset"); err != nil {
		return nil, err
	}
	if cfg.KnownPlaintext, err = flags.GetString("known-plaintext"); err != nil {
		return nil, err
	}
	if cfg.Spread, err = flags.GetInt("spread"); err != nil {
		return nil, err
	}
	if cfg.MaxCandidates, err = flags.GetInt("max-candidates"); err != nil {
		return nil, err
	}
	if cfg.FilterOutput, err = flags.GetBool("filter-output"); err != nil {
		return nil, err
	}
	if cfg.OutputDir, err = flags.GetString("output-dir"); err != nil {
		return nil, err
	}
	noFiles, err := flags.GetBool("no-files")
	if err != nil {
		return nil, err
	}
	cfg.WriteFiles = !noFiles
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("report-file"); err != nil {
		return nil, err
	}
	if cfg.Color, err = flags.GetString("color"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noHistory
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	// Load per-input settings from the config file.
	// An explicitly given file must exist; a missing default file is fine.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.PreferFlags(flags.Changed)
		cfg.InputConfigs = file
	case explicitConfigPath:
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	cfg.Inputs = args
	if len(cfg.Inputs) == 0 {
		cfg.Inputs = []string{input.StdinPath}
	}

	return cfg, nil
}

// validateConfig validates the global configuration and the effective
// configuration of every input.
func validateConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	for _, source := range cfg.Inputs {
		if err := cfg.ForInput(source).Validate(); err != nil {
			return fmt.Errorf("%s: %w", source, err)
		}
	}
	return nil
}

// runAnalyze analyzes every input and writes the reports.
func runAnalyze(ctx context.Context, cfg *config.Config, stdin io.Reader, stdout io.Writer, logger *slog.Logger) error {
	logger.Info("starting analysis",
		"inputs", cfg.Inputs,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	var db *database.HistoryDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	bp := pipeline.NewBatchProcessor(
		func(source string, index int) *pipeline.Pipeline {
			pc := pipeline.DefaultPipelineConfig{
				Stdin:  stdin,
				DB:     db,
				Logger: logger,
			}
			if cfg.WriteFiles {
				pc.OutputDir = outputDirFor(cfg, source, index)
			}
			return pipeline.DefaultPipeline(cfg.ForInput(source), pc)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	reports, err := bp.ProcessBatch(ctx, cfg.Inputs)
	if err != nil {
		return err
	}

	return outputReports(cfg, reports, stdout)
}

// outputDirFor returns the plaintext directory of one input. A single
// input uses the output directory itself; several inputs get one
// subdirectory each, named after the index and the file name.
func outputDirFor(cfg *config.Config, source string, index int) string {
	if len(cfg.Inputs) == 1 {
		return cfg.OutputDir
	}
	name := filepath.Base(source)
	if source == input.StdinPath {
		name = "stdin"
	}
	return filepath.Join(cfg.OutputDir, fmt.Sprintf("%d-%s", index, name))
}

// outputReports writes the reports in input order. A single failed input
// is returned as the command error; with several inputs every report is
// written and the failures are counted.
func outputReports(cfg *config.Config, reports []*model.AnalysisReport, stdout io.Writer) (err error) {
	if len(reports) == 1 && reports[0].Error != nil {
		return fmt.Errorf("%s: %w", reports[0].Source, reports[0].Error)
	}

	output := stdout
	colorEnabled := useColor(cfg.Color, stdout)
	if cfg.ReportFile != "" {
		f, err := createReportFile(cfg.ReportFile)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		output = f
		colorEnabled = cfg.Color == config.ColorAlways
	}

	writer := newReportWriter(cfg, output, colorEnabled)
	failed := 0
	for _, r := range reports {
		if r.Error != nil {
			failed++
		}
		if _, err := writer.Write(r); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(reports))
	}
	return nil
}

// newReportWriter selects the report format.
func newReportWriter(cfg *config.Config, output io.Writer, colorEnabled bool) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output,
			report.WithVerbose(cfg.Verbose),
			report.WithColor(colorEnabled),
		)
	}
}

// useColor resolves the color mode for the given output.
func useColor(mode string, output io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := output.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
}

// createReportFile creates the report file and its parent directories.
// Reports may contain recovered keys, so the file is private to the user.
func createReportFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}
