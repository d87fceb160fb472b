// Package input loads ciphertext for analysis.
//
// Ciphertext comes from a file or standard input, optionally hex encoded.
// Hex input is tolerant: every character that is not a hex digit (spaces,
// newlines, colons) is discarded before decoding, so dumps copied from hex
// editors can be fed in directly.
package input
