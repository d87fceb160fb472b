// Package database provides SQLite-based storage for analysis history.
//
// HistoryDB keeps one row per analyzed input: where it came from, a
// SHA3-256 fingerprint of the ciphertext, the key length used, candidate
// and valid counts, and the full report as JSON (without plaintext data).
// The history command lists these rows and re-renders stored reports.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
//
// Plaintexts are never stored. They can be regenerated from the ciphertext
// and the recorded key, and a history file full of decrypted data is not
// something a user expects to leave behind.
package database
