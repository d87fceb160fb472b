package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/xorcrack/internal/model"
)

// FileName is the database file name inside the database directory.
const FileName = "xorcrack.db"

// timeLayout is the fixed-width UTC layout of analyzed_at. Fixed width keeps
// text ordering equal to time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// HistoryDB provides SQLite-based storage for analysis reports.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error
// wrapping os.ErrNotExist is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); err != nil {
			return nil, fmt.Errorf("database not found at %s: %w", dbPath, err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analyses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		fingerprint TEXT NOT NULL DEFAULT '',
		analyzed_at TEXT NOT NULL,
		input_size INTEGER NOT NULL DEFAULT 0,
		key_length INTEGER NOT NULL DEFAULT 0,
		candidate_count INTEGER NOT NULL DEFAULT 0,
		valid_count INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT '',
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_fingerprint ON analyses(fingerprint);
	CREATE INDEX IF NOT EXISTS idx_analyses_analyzed_at ON analyses(analyzed_at);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// AnalysisRecord contains summary information about a stored analysis.
// It is used for listing history without loading the full report.
type AnalysisRecord struct {
	// ID is the unique identifier of the analysis in the database.
	ID int64 `json:"id"`

	// Source is the analyzed input path.
	Source string `json:"source"`

	// Fingerprint is the hex SHA3-256 digest of the ciphertext.
	Fingerprint string `json:"fingerprint"`

	// AnalyzedAt is when the analysis started.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// InputSize is the ciphertext length in bytes.
	InputSize int `json:"input_size"`

	// KeyLength is the key length used for recovery.
	KeyLength int `json:"key_length"`

	// CandidateCount is the number of candidate keys.
	CandidateCount int `json:"candidate_count"`

	// ValidCount is the number of valid plaintexts.
	ValidCount int `json:"valid_count"`

	// Status is "complete", "timeout" or "error".
	Status string `json:"status"`
}

// Status values stored with each analysis.
const (
	StatusComplete = "complete"
	StatusTimeout  = "timeout"
	StatusError    = "error"
)

// statusOf classifies a report.
func statusOf(report *model.AnalysisReport) string {
	switch {
	case report.TimedOut:
		return StatusTimeout
	case report.Error != nil || report.ErrorMessage != "":
		return StatusError
	default:
		return StatusComplete
	}
}

// SaveAnalysis stores a report and returns its ID.
// Plaintext data is stripped before serialization.
func (hdb *HistoryDB) SaveAnalysis(ctx context.Context, report *model.AnalysisReport) (int64, error) {
	stored := report.WithoutData()
	if stored.ErrorMessage == "" && stored.Error != nil {
		stored.ErrorMessage = stored.Error.Error()
	}

	reportJSON, err := json.Marshal(stored)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	var keyLength, candidates, valid int
	if a := stored.Analysis; a != nil {
		keyLength = a.KeyLength
		candidates = a.CandidateCount
		valid = a.ValidCount
	}

	query := `
	INSERT INTO analyses (source, fingerprint, analyzed_at, input_size, key_length,
		candidate_count, valid_count, status, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := hdb.db.ExecContext(ctx, query,
		stored.Source,
		stored.Fingerprint,
		stored.DateAnalyzed.UTC().Format(timeLayout),
		stored.InputSize,
		keyLength,
		candidates,
		valid,
		statusOf(stored),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save analysis: %w", err)
	}

	return result.LastInsertId()
}

// ListAnalyses returns the most recent analyses, newest first.
// A limit of zero or less returns every row.
func (hdb *HistoryDB) ListAnalyses(ctx context.Context, limit int) ([]AnalysisRecord, error) {
	query := `
	SELECT id, source, fingerprint, analyzed_at, input_size, key_length,
		candidate_count, valid_count, status
	FROM analyses
	ORDER BY analyzed_at DESC, id DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	return hdb.queryRecords(ctx, query, args...)
}

// ListByFingerprint returns every analysis of the same ciphertext, newest
// first.
func (hdb *HistoryDB) ListByFingerprint(ctx context.Context, fingerprint string) ([]AnalysisRecord, error) {
	query := `
	SELECT id, source, fingerprint, analyzed_at, input_size, key_length,
		candidate_count, valid_count, status
	FROM analyses
	WHERE fingerprint = ?
	ORDER BY analyzed_at DESC, id DESC
	`

	return hdb.queryRecords(ctx, query, fingerprint)
}

// queryRecords runs a query selecting the AnalysisRecord columns.
func (hdb *HistoryDB) queryRecords(ctx context.Context, query string, args ...any) ([]AnalysisRecord, error) {
	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	var results []AnalysisRecord
	for rows.Next() {
		var rec AnalysisRecord
		var timestamp string

		if err := rows.Scan(
			&rec.ID,
			&rec.Source,
			&rec.Fingerprint,
			&timestamp,
			&rec.InputSize,
			&rec.KeyLength,
			&rec.CandidateCount,
			&rec.ValidCount,
			&rec.Status,
		); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}

		rec.AnalyzedAt = parseTimestamp(timestamp)
		results = append(results, rec)
	}

	return results, rows.Err()
}

// GetAnalysisByID retrieves a stored report by its database ID.
// It returns nil without error when no such analysis exists.
func (hdb *HistoryDB) GetAnalysisByID(ctx context.Context, id int64) (*model.AnalysisReport, error) {
	query := `
	SELECT report_json FROM analyses
	WHERE id = ?
	`

	var reportJSON string
	err := hdb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	var report model.AnalysisReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timeLayout,            // Format written by SaveAnalysis
	time.RFC3339Nano,      // RFC3339 with nanoseconds
	"2006-01-02 15:04:05", // SQLite default datetime format
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
