// Package charset defines the target character sets used to judge whether a
// decoded buffer looks like plausible plaintext.
//
// A charset is either one of the predefined sets (printable, base32, base64)
// or a custom union of symbol classes:
//   - a: lowercase letters
//   - A: uppercase letters
//   - 1: digits
//   - !: punctuation
//   - *: all printable characters
//
// For example "aA1" accepts alphanumerics only.
package charset
