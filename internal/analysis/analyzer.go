package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/xorcrack/internal/charset"
	"github.com/nao1215/xorcrack/internal/model"
)

// Analyzer runs key length estimation and key recovery over a ciphertext.
// An Analyzer holds no per-run state and may be shared between goroutines.
type Analyzer struct {
	// opts is the run configuration, fixed at construction.
	opts Options

	// logger is used for progress and debug output.
	logger *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger used by the analyzer.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// NewAnalyzer creates an Analyzer for the given options.
// A charset without members is replaced by the printable charset.
func NewAnalyzer(opts Options, options ...Option) *Analyzer {
	if opts.Charset.Size() == 0 {
		opts.Charset = charset.MustParse(charset.DefaultName)
	}
	a := &Analyzer{opts: opts}
	for _, opt := range options {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Options returns the analyzer configuration.
func (a *Analyzer) Options() Options {
	return a.opts
}

// Run analyzes ciphertext. It either returns a complete result or an
// error, never a partial result. ciphertext is not modified.
//
// Without an assumption Run stops after key length estimation. With a
// known key length estimation is skipped.
func (a *Analyzer) Run(ctx context.Context, ciphertext []byte) (*model.Analysis, error) {
	if err := a.opts.Validate(len(ciphertext)); err != nil {
		return nil, err
	}

	result := &model.Analysis{
		KeyLength:      a.opts.KnownKeyLength,
		Assumption:     a.opts.Assumption.String(),
		Charset:        a.opts.Charset.Name(),
		KnownPlaintext: string(a.opts.KnownPlaintext),
		FilterOutput:   a.opts.FilterOutput,
		Threshold:      ValidityThreshold,
	}

	if result.KeyLength == 0 {
		estimator := &Estimator{
			MaxKeyLength: a.opts.MaxKeyLength,
			Tunables:     a.opts.Tunables,
			Concurrency:  a.opts.Concurrency,
		}
		estimate, err := estimator.Estimate(ctx, ciphertext)
		if err != nil {
			return nil, fmt.Errorf("key length estimation: %w", err)
		}
		result.KeyLengthEstimated = true
		result.KeyLength = estimate.Best.Length
		result.KeyLengths = estimate.Ranked
		result.Divisors = estimate.Divisors
		result.DivisorFallback = estimate.DivisorFallback

		a.logger.Debug("key length estimated",
			"length", estimate.Best.Length,
			"fitness", estimate.Best.Fitness,
			"local_maxima", len(estimate.Candidates),
		)
	}

	if a.opts.Assumption.IsNone() {
		return result, nil
	}

	keys, err := GuessProbableKeys(ctx, ciphertext, result.KeyLength,
		a.opts.Assumption, a.opts.FrequencySpread, a.opts.MaxCandidates)
	if err != nil {
		return nil, fmt.Errorf("key recovery: %w", err)
	}
	a.logger.Debug("candidate keys generated",
		"count", len(keys),
		"key_length", result.KeyLength,
		"assumption", result.Assumption,
	)

	plaintexts, err := a.decodeAll(ctx, ciphertext, keys)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	result.Keys = keys
	result.CandidateCount = len(keys)
	result.Plaintexts = plaintexts
	for _, p := range plaintexts {
		if IsValid(p.Validity) {
			result.ValidCount++
		}
	}
	return result, nil
}

// decodeAll decodes and scores every key concurrently. Each worker fills
// its own slot; candidates rejected by the known-plaintext filter are
// dropped afterwards, keeping key order.
func (a *Analyzer) decodeAll(ctx context.Context, ciphertext []byte, keys []model.KeyCandidate) ([]model.Plaintext, error) {
	slots := make([]*model.Plaintext, len(keys))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrencyLimit(a.opts.Concurrency))
	for i, key := range keys {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := Dexor(ciphertext, key.Key)
			if err != nil {
				return err
			}
			if !ContainsKnownPlaintext(data, a.opts.KnownPlaintext) {
				return nil
			}
			percent := ValidityPercent(Validity(data, a.opts.Charset))
			slots[i] = &model.Plaintext{
				Index:        i,
				Key:          key.Key,
				FrequentByte: key.FrequentByte,
				Validity:     percent,
				Persist:      !a.opts.FilterOutput || IsValid(percent),
				Data:         data,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	plaintexts := make([]model.Plaintext, 0, len(keys))
	for _, p := range slots {
		if p != nil {
			plaintexts = append(plaintexts, *p)
		}
	}
	return plaintexts, nil
}
