package analysis

import (
	"cmp"
	"context"
	"math"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/xorcrack/internal/model"
)

const (
	// DefaultCoincidenceBias is subtracted from every lane maximum. It
	// discounts the match of the most frequent byte with itself.
	DefaultCoincidenceBias = 1

	// DefaultLengthExponent is the exponent of the key length penalty in
	// the fitness denominator.
	DefaultLengthExponent = 1.5

	// minDivisor is the smallest divisor that takes part in divisor voting.
	minDivisor = 3

	// maxReportedDivisors caps the divisor lines.
	maxReportedDivisors = 3

	// defaultDivisorFallback is the fallback length when no divisor wins.
	defaultDivisorFallback = 2

	// rankedKeyLengths is the number of candidates kept for display.
	rankedKeyLengths = 10
)

// Tunables holds the empirical constants of the key length heuristic.
// Every field is used as given, zero included; start from DefaultTunables
// to override a single constant.
type Tunables struct {
	// CoincidenceBias is subtracted from each lane's maximum count.
	CoincidenceBias int

	// LengthExponent is the exponent applied to the key length in the
	// fitness denominator.
	LengthExponent float64
}

// DefaultTunables returns the default heuristic constants.
func DefaultTunables() Tunables {
	return Tunables{
		CoincidenceBias: DefaultCoincidenceBias,
		LengthExponent:  DefaultLengthExponent,
	}
}

// CountEquals returns the coincidence count of buf at keyLength: the sum
// over all lanes of (lane maximum - bias). It is 0 when keyLength is not
// shorter than buf, because every lane would hold at most one byte.
func CountEquals(buf []byte, keyLength, bias int) int {
	if keyLength <= 0 || keyLength >= len(buf) {
		return 0
	}
	equals := 0
	for offset := range keyLength {
		h := NewHistogram(buf, keyLength, offset)
		equals += h.Max() - bias
	}
	return equals
}

// Fitness returns the normalized coincidence score of keyLength.
func Fitness(buf []byte, keyLength, maxKeyLength int, t Tunables) float64 {
	equals := CountEquals(buf, keyLength, t.CoincidenceBias)
	return float64(equals) / (float64(maxKeyLength) + math.Pow(float64(keyLength), t.LengthExponent))
}

// LocalMaxima scans a fitness curve and returns its local maxima in
// ascending length order. fitnesses[i] is the fitness of key length i+1.
//
// The window starts at (0, 0), so a curve that falls from length 1 on
// reports length 1. A curve still rising at its last point reports that
// point as well.
func LocalMaxima(fitnesses []float64) []model.KeyLengthCandidate {
	var (
		candidates []model.KeyLengthCandidate
		pprev      float64
		prev       float64
	)
	for i, fitness := range fitnesses {
		if pprev < prev && prev > fitness {
			// index i is length i+1, so prev belongs to length i.
			candidates = append(candidates, model.KeyLengthCandidate{Length: i, Fitness: prev})
		}
		pprev, prev = prev, fitness
	}
	if pprev < prev {
		candidates = append(candidates, model.KeyLengthCandidate{Length: len(fitnesses), Fitness: prev})
	}
	return candidates
}

// VoteDivisors counts, for every candidate length, each of its divisors of
// at least 3, and returns the most voted divisors in ascending order (at
// most three) together with the fallback length: the last divisor
// returned, or 2 when nothing was voted for.
func VoteDivisors(candidates []model.KeyLengthCandidate) ([]int, int) {
	votes := map[int]int{}
	maxVotes := 0
	for _, c := range candidates {
		for d := minDivisor; d <= c.Length; d++ {
			if c.Length%d == 0 {
				votes[d]++
				maxVotes = max(maxVotes, votes[d])
			}
		}
	}
	if maxVotes == 0 {
		return nil, defaultDivisorFallback
	}

	keys := make([]int, 0, len(votes))
	for d := range votes {
		keys = append(keys, d)
	}
	slices.Sort(keys)

	var divisors []int
	for _, d := range keys {
		if votes[d] != maxVotes {
			continue
		}
		divisors = append(divisors, d)
		if len(divisors) == maxReportedDivisors {
			break
		}
	}
	return divisors, divisors[len(divisors)-1]
}

// BestKeyLength returns the candidate with the strictly highest fitness.
// Ties go to the shortest length, since candidates are scanned in the
// order LocalMaxima produces them.
func BestKeyLength(candidates []model.KeyLengthCandidate) (model.KeyLengthCandidate, error) {
	if len(candidates) == 0 {
		return model.KeyLengthCandidate{}, ErrNoKeyLengthCandidates
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Fitness > best.Fitness {
			best = c
		}
	}
	return best, nil
}

// RankKeyLengths keeps the ten fittest candidates, orders them by length
// and fills in their share of the total fitness in percent, rounded to
// one decimal. The input slice is not modified.
func RankKeyLengths(candidates []model.KeyLengthCandidate) []model.KeyLengthCandidate {
	top := slices.Clone(candidates)
	slices.SortStableFunc(top, func(a, b model.KeyLengthCandidate) int {
		return cmp.Compare(b.Fitness, a.Fitness)
	})
	if len(top) > rankedKeyLengths {
		top = top[:rankedKeyLengths]
	}
	slices.SortStableFunc(top, func(a, b model.KeyLengthCandidate) int {
		return cmp.Compare(a.Length, b.Length)
	})

	sum := 0.0
	for _, c := range top {
		sum += c.Fitness
	}
	for i := range top {
		if sum > 0 {
			top[i].Percent = math.Round(1000*top[i].Fitness/sum) / 10
		}
	}
	return top
}

// KeyLengthEstimate is the outcome of key length estimation.
type KeyLengthEstimate struct {
	// Fitnesses holds the fitness of every probed length; index i is
	// length i+1.
	Fitnesses []float64

	// Candidates are all local maxima in ascending length order.
	Candidates []model.KeyLengthCandidate

	// Ranked are the top candidates with percentages, ordered by length.
	Ranked []model.KeyLengthCandidate

	// Divisors are the most voted divisors of the candidate lengths.
	Divisors []int

	// DivisorFallback is the fallback length from divisor voting.
	DivisorFallback int

	// Best is the candidate with the highest fitness.
	Best model.KeyLengthCandidate
}

// Estimator scores key lengths 1..MaxKeyLength.
type Estimator struct {
	// MaxKeyLength is the longest key length probed. It is also the
	// constant term of the fitness denominator.
	MaxKeyLength int

	// Tunables are the heuristic constants.
	Tunables Tunables

	// Concurrency limits the number of lengths scored at once.
	// Zero or negative means runtime.NumCPU().
	Concurrency int
}

// Fitnesses computes the fitness of every key length from 1 to
// MaxKeyLength. Lengths are scored concurrently and written to their own
// slot, so the result does not depend on scheduling.
func (e *Estimator) Fitnesses(ctx context.Context, buf []byte) ([]float64, error) {
	if e.MaxKeyLength <= 0 {
		return nil, ErrInvalidMaxKeyLength
	}

	fitnesses := make([]float64, e.MaxKeyLength)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrencyLimit(e.Concurrency))

	for keyLength := 1; keyLength <= e.MaxKeyLength; keyLength++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fitnesses[keyLength-1] = Fitness(buf, keyLength, e.MaxKeyLength, e.Tunables)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return fitnesses, nil
}

// Estimate runs the full key length heuristic over buf.
// It returns ErrNoKeyLengthCandidates when the fitness curve has no local
// maximum.
func (e *Estimator) Estimate(ctx context.Context, buf []byte) (*KeyLengthEstimate, error) {
	fitnesses, err := e.Fitnesses(ctx, buf)
	if err != nil {
		return nil, err
	}

	candidates := LocalMaxima(fitnesses)
	best, err := BestKeyLength(candidates)
	if err != nil {
		return nil, err
	}
	divisors, fallback := VoteDivisors(candidates)

	return &KeyLengthEstimate{
		Fitnesses:       fitnesses,
		Candidates:      candidates,
		Ranked:          RankKeyLengths(candidates),
		Divisors:        divisors,
		DivisorFallback: fallback,
		Best:            best,
	}, nil
}

// EstimateKeyLength is a shorthand for an Estimator with default tunables.
func EstimateKeyLength(ctx context.Context, buf []byte, maxKeyLength int) (*KeyLengthEstimate, error) {
	e := &Estimator{MaxKeyLength: maxKeyLength, Tunables: DefaultTunables()}
	return e.Estimate(ctx, buf)
}

func concurrencyLimit(n int) int {
	if n <= 0 {
		return runtime.NumCPU()
	}
	return n
}
