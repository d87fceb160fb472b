package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/xorcrack/internal/model"
)

// defaultConcurrency is the number of inputs analyzed at once when
// WithConcurrency is not given.
const defaultConcurrency = 4

// Factory creates the pipeline for one input. index is the position of
// source in the batch, which lets callers derive per-input output paths.
type Factory func(source string, index int) *Pipeline

// BatchProcessor handles concurrent processing of multiple inputs.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-input execution
// 2. It provides cleaner separation of concerns
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each input.
	// We use a factory to ensure each input gets a fresh pipeline instance.
	pipelineFactory Factory

	// concurrency is the maximum number of concurrent analyses.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent analyses.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory Factory, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     defaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch analyzes multiple inputs concurrently and returns their
// reports in input order. A failed analysis does not stop the batch; its
// error is recorded in its report. Inputs that never started because the
// context was cancelled have a nil report.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, sources []string) ([]*model.AnalysisReport, error) {
	results := make([]*model.AnalysisReport, len(sources))
	err := bp.ProcessBatchWithCallback(ctx, sources, func(report *model.AnalysisReport, index int) {
		// Each index is written by exactly one goroutine.
		results[index] = report
	})
	return results, err
}

// ProcessBatchWithCallback analyzes multiple inputs and calls a callback
// for each completed analysis. This is useful for streaming results.
//
// The callback receives the report and the index of the input in the
// original slice. The callback is called from the goroutine that completed
// the analysis, so it should be thread-safe if it accesses shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	sources []string,
	callback func(report *model.AnalysisReport, index int),
) error {
	bp.logger.Info("starting batch processing",
		"total_inputs", len(sources),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, source := range sources {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("analyzing input",
				"source", source,
				"index", i+1,
				"total", len(sources),
			)

			report := model.NewAnalysisReport(source)
			if err := bp.pipelineFactory(source, i).Execute(ctx, report); err != nil {
				// Recorded in the report; other inputs keep going.
				bp.logger.Warn("analysis failed",
					"source", source,
					"error", err,
				)
			}

			callback(report, i)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch processing complete",
		"total_inputs", len(sources),
		"elapsed", time.Since(startTime),
	)

	return err
}
