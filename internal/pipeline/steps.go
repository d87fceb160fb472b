package pipeline

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/xorcrack/internal/analysis"
	"github.com/nao1215/xorcrack/internal/config"
	"github.com/nao1215/xorcrack/internal/database"
	"github.com/nao1215/xorcrack/internal/input"
	"github.com/nao1215/xorcrack/internal/model"
	"github.com/nao1215/xorcrack/internal/report"
)

// Step names, recorded in AnalysisReport.PerformedSteps.
const (
	StepLoad            = "load"
	StepAnalyze         = "analyze"
	StepWritePlaintexts = "write_plaintexts"
	StepPersist         = "persist"
)

// LoadStep reads the ciphertext named by the report source.
// It fills Ciphertext, InputSize and the SHA3-256 Fingerprint.
type LoadStep struct {
	// stdin is read when the source is "-".
	stdin io.Reader

	// isHex decodes hex input.
	isHex bool
}

// NewLoadStep creates a load step. A nil stdin means os.Stdin.
func NewLoadStep(stdin io.Reader, isHex bool) *LoadStep {
	if stdin == nil {
		stdin = os.Stdin
	}
	return &LoadStep{stdin: stdin, isHex: isHex}
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return StepLoad
}

// Do executes the load step.
func (s *LoadStep) Do(_ context.Context, r *model.AnalysisReport) error {
	data, err := input.Load(r.Source, s.stdin, s.isHex)
	if err != nil {
		return err
	}

	r.Ciphertext = data
	r.InputSize = len(data)
	r.Fingerprint = Fingerprint(data)
	return nil
}

// Fingerprint returns the hex SHA3-256 digest of data.
func Fingerprint(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// AnalyzeStep runs key length estimation and key recovery on the loaded
// ciphertext.
type AnalyzeStep struct {
	// cfg is the configuration for this input.
	cfg *config.Config

	// logger for structured logging.
	logger *slog.Logger
}

// AnalyzeStepOption configures an AnalyzeStep.
type AnalyzeStepOption func(*AnalyzeStep)

// WithAnalyzeLogger sets a custom logger for the analyze step.
func WithAnalyzeLogger(logger *slog.Logger) AnalyzeStepOption {
	return func(s *AnalyzeStep) {
		s.logger = logger
	}
}

// NewAnalyzeStep creates an analyze step for the given configuration.
// cfg.Timeout bounds the analysis when positive.
func NewAnalyzeStep(cfg *config.Config, opts ...AnalyzeStepOption) *AnalyzeStep {
	s := &AnalyzeStep{
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *AnalyzeStep) Name() string {
	return StepAnalyze
}

// Do executes the analyze step.
func (s *AnalyzeStep) Do(ctx context.Context, r *model.AnalysisReport) error {
	opts, err := s.cfg.AnalysisOptions()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := analysis.NewAnalyzer(opts, analysis.WithLogger(s.logger)).Run(ctx, r.Ciphertext)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			r.TimedOut = true
		}
		return err
	}

	r.Analysis = result
	s.logger.Debug("analysis complete",
		"source", r.Source,
		"key_length", result.KeyLength,
		"candidates", result.CandidateCount,
		"valid", result.ValidCount,
		"elapsed", time.Since(start),
	)
	return nil
}

// WritePlaintextsStep writes the output directory for analyses that
// recovered keys. Estimation-only runs leave the directory untouched.
type WritePlaintextsStep struct {
	writer *report.PlaintextWriter
	logger *slog.Logger
}

// NewWritePlaintextsStep creates a step writing to dir.
func NewWritePlaintextsStep(dir string, logger *slog.Logger) *WritePlaintextsStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &WritePlaintextsStep{
		writer: report.NewPlaintextWriter(dir, report.WithPlaintextLogger(logger)),
		logger: logger,
	}
}

// Name returns the step name.
func (s *WritePlaintextsStep) Name() string {
	return StepWritePlaintexts
}

// Do executes the write step.
func (s *WritePlaintextsStep) Do(_ context.Context, r *model.AnalysisReport) error {
	if r.Analysis == nil || !r.Analysis.RecoveryRequested() {
		s.logger.Debug("no plaintexts to write", "source", r.Source)
		return nil
	}

	if _, err := s.writer.Write(r.Analysis); err != nil {
		return err
	}
	r.OutputDir = s.writer.Dir()
	return nil
}

// PersistStep saves the report to the history database. It is meant to
// run as a finalizer so failed and timed-out runs are recorded too.
type PersistStep struct {
	db     *database.HistoryDB
	logger *slog.Logger
}

// NewPersistStep creates a step saving to db.
func NewPersistStep(db *database.HistoryDB, logger *slog.Logger) *PersistStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &PersistStep{db: db, logger: logger}
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return StepPersist
}

// Do executes the persist step.
func (s *PersistStep) Do(ctx context.Context, r *model.AnalysisReport) error {
	id, err := s.db.SaveAnalysis(ctx, r)
	if err != nil {
		return fmt.Errorf("failed to save analysis history: %w", err)
	}
	s.logger.Debug("analysis saved", "source", r.Source, "id", id)
	return nil
}

// DefaultPipelineConfig holds the collaborators of DefaultPipeline.
type DefaultPipelineConfig struct {
	// Stdin is read for the "-" source. Nil means os.Stdin.
	Stdin io.Reader

	// OutputDir receives plaintext files. Empty disables the write step.
	OutputDir string

	// DB receives the report. Nil disables the persist finalizer.
	DB *database.HistoryDB

	// Logger is shared by the pipeline and its steps.
	Logger *slog.Logger
}

// DefaultPipeline creates the standard analysis pipeline for one input:
// load, analyze, write plaintexts, then persist as a finalizer.
func DefaultPipeline(cfg *config.Config, pc DefaultPipelineConfig, opts ...Option) *Pipeline {
	logger := pc.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p := New(append([]Option{WithLogger(logger)}, opts...)...)
	p.AddSteps(
		NewLoadStep(pc.Stdin, cfg.InputIsHex),
		NewAnalyzeStep(cfg, WithAnalyzeLogger(logger)),
	)
	if pc.OutputDir != "" {
		p.AddStep(NewWritePlaintextsStep(pc.OutputDir, logger))
	}
	if pc.DB != nil {
		p.AddFinalizer(NewPersistStep(pc.DB, logger))
	}
	return p
}
