package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nao1215/xorcrack/internal/model"
)

const (
	// KeyMappingFile maps each plaintext file to its key.
	KeyMappingFile = "filename-key.csv"

	// PercentMappingFile maps each plaintext file to the assumed char and
	// its validity percentage.
	PercentMappingFile = "filename-char_used-perc_valid.csv"

	// dirPerm is the permission for the output directory.
	dirPerm = 0o750

	// filePerm is the permission for written files. Plaintexts may be
	// sensitive, so they are private to the user.
	filePerm = 0o600
)

// ErrOutputDir is returned when the output directory cannot be prepared
// or written.
var ErrOutputDir = errors.New("output directory error")

// PlaintextWriter writes decoded candidates to an output directory.
//
// Layout:
//
//	filename-key.csv                     file_name;key_repr
//	filename-char_used-perc_valid.csv    file_name;char_used;perc_valid
//	000.out, 001.out, ...                decoded plaintexts
//
// Both mappings list every plaintext kept by the known-plaintext filter.
// Only plaintexts marked Persist get a .out file. File numbers are key
// indexes, zero padded to the width of the last index.
type PlaintextWriter struct {
	dir    string
	logger *slog.Logger
}

// PlaintextWriterOption configures a PlaintextWriter.
type PlaintextWriterOption func(*PlaintextWriter)

// WithPlaintextLogger sets the logger.
func WithPlaintextLogger(logger *slog.Logger) PlaintextWriterOption {
	return func(w *PlaintextWriter) {
		w.logger = logger
	}
}

// NewPlaintextWriter creates a PlaintextWriter for the given directory.
func NewPlaintextWriter(dir string, opts ...PlaintextWriterOption) *PlaintextWriter {
	w := &PlaintextWriter{
		dir:    dir,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Dir returns the output directory.
func (w *PlaintextWriter) Dir() string {
	return w.dir
}

// Write creates the output directory if needed, removes the output of a
// previous run and writes the mappings and plaintext files for the
// analysis. Files the writer does not produce are left alone. It returns the number of
// .out files written.
func (w *PlaintextWriter) Write(a *model.Analysis) (int, error) {
	if w.dir == "" {
		return 0, fmt.Errorf("%w: empty path", ErrOutputDir)
	}
	if err := w.prepareDir(); err != nil {
		return 0, err
	}

	width := len(strconv.Itoa(max(len(a.Keys)-1, 0)))

	keyRows := [][]string{{"file_name", "key_repr"}}
	percRows := [][]string{{"file_name", "char_used", "perc_valid"}}
	written := 0

	for _, p := range a.Plaintexts {
		name := filepath.Join(w.dir, fmt.Sprintf("%0*d.out", width, p.Index))
		keyRows = append(keyRows, []string{name, p.Key.Repr()})
		percRows = append(percRows, []string{name, charRepr(p.FrequentByte), strconv.Itoa(p.Validity)})

		if !p.Persist {
			continue
		}
		if err := os.WriteFile(name, p.Data, filePerm); err != nil {
			return written, fmt.Errorf("%w: %w", ErrOutputDir, err)
		}
		written++
	}

	if err := w.writeCSV(KeyMappingFile, keyRows); err != nil {
		return written, err
	}
	if err := w.writeCSV(PercentMappingFile, percRows); err != nil {
		return written, err
	}

	w.logger.Debug("plaintexts written",
		slog.String("dir", w.dir),
		slog.Int("files", written),
		slog.Int("mapped", len(a.Plaintexts)))

	return written, nil
}

// prepareDir creates the directory and removes the mappings and
// numbered .out files of a previous run.
func (w *PlaintextWriter) prepareDir() error {
	if err := os.MkdirAll(w.dir, dirPerm); err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrOutputDir, w.dir, err)
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", ErrOutputDir, w.dir, err)
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !isOwnedFile(entry.Name()) {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("%w: remove %s: %w", ErrOutputDir, path, err)
		}
	}
	return nil
}

// isOwnedFile reports whether name is one the writer produces: a mapping
// file or a plaintext named by its decimal index.
func isOwnedFile(name string) bool {
	if name == KeyMappingFile || name == PercentMappingFile {
		return true
	}
	index, ok := strings.CutSuffix(name, ".out")
	if !ok || index == "" {
		return false
	}
	for _, c := range index {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// writeCSV writes semicolon separated rows to a file in the directory.
func (w *PlaintextWriter) writeCSV(name string, rows [][]string) (err error) {
	path := filepath.Join(w.dir, name)
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOutputDir, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrOutputDir, cerr)
		}
	}()

	cw := csv.NewWriter(f)
	cw.Comma = ';'
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOutputDir, name, err)
	}
	return nil
}
