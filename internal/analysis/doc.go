// Package analysis implements repeating-key XOR cryptanalysis from
// ciphertext alone.
//
// The package is organized around five components, leaves first:
//   - Histogram: per-lane byte counts for a given key length
//   - Estimator: coincidence-based key length scoring
//   - key candidate generation: per-lane candidate bytes and their
//     cross product under a frequent-byte Assumption
//   - Dexor: the XOR transform itself
//   - Validity: charset membership scoring of decoded buffers
//
// Analyzer ties them together: it estimates the key length when it is not
// known, enumerates candidate keys, decodes the ciphertext under each of
// them and scores the results.
//
// # Heuristics
//
// The key length fitness of length L is
//
//	sum over lanes (max lane count - bias) / (max key length + L^exponent)
//
// with bias 1 and exponent 1.5 by default. Both are empirical and exposed
// through Tunables. The exponent penalizes long keys: raw coincidence
// counts grow with L even for random data, and short keys are the common
// case.
//
// # Concurrency
//
// Every function is pure over its inputs. The Estimator computes fitness
// values for different lengths concurrently and the Analyzer decodes
// candidate keys concurrently; both use errgroup with a configurable limit
// and merge results by index, so output never depends on scheduling.
package analysis
