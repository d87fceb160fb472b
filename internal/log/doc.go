// Package log provides logging that is safe to use with binary data,
// built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Escaping of byte slices and control characters in attribute values
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Escaping
//
// Ciphertexts, candidate keys and decoded plaintexts are arbitrary bytes.
// Writing them to a terminal unescaped can move the cursor, change colors
// or garble the rest of the output. The EscapingHandler renders:
//   - []byte values as quoted strings with \xNN escapes
//   - string values containing control characters or invalid UTF-8 the
//     same way
//
// Printable strings pass through unchanged.
//
// # Usage
//
//	// Create a logger
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Debug("candidate",
//	    "key", []byte("K\x00Y"), // Rendered as "K\x00Y"
//	    "input", "cipher.bin",
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
