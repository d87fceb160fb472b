package pipeline

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/xorcrack/internal/config"
	"github.com/nao1215/xorcrack/internal/database"
	"github.com/nao1215/xorcrack/internal/input"
	"github.com/nao1215/xorcrack/internal/model"
	"github.com/nao1215/xorcrack/internal/report"
)

// foxCiphertext returns a pangram repeated five times, XORed with "KEY".
func foxCiphertext() []byte {
	plain := []byte(strings.Repeat("THE QUICK BROWN FOX ", 5))
	key := []byte("KEY")
	out := make([]byte, len(plain))
	for i, b := range plain {
		out[i] = b ^ key[i%len(key)]
	}
	return out
}

// writeInput writes data to a temporary file and returns its path.
func writeInput(t *testing.T, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cipher.bin")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

// recoveryConfig returns a configuration recovering a length-3 key
// assuming a space is the most frequent byte.
func recoveryConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.KnownKeyLength = 3
	cfg.FrequentChar = " "
	return cfg
}

func TestLoadStep(t *testing.T) {
	t.Parallel()

	t.Run("loads file and fingerprints it", func(t *testing.T) {
		t.Parallel()

		data := foxCiphertext()
		r := model.NewAnalysisReport(writeInput(t, data))
		if err := NewLoadStep(nil, false).Do(context.Background(), r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Equal(r.Ciphertext, data) {
			t.Error("ciphertext mismatch")
		}
		if r.InputSize != len(data) {
			t.Errorf("InputSize = %d, want %d", r.InputSize, len(data))
		}
		if r.Fingerprint != Fingerprint(data) || len(r.Fingerprint) != 64 {
			t.Errorf("unexpected fingerprint %q", r.Fingerprint)
		}
	})

	t.Run("reads hex from stdin", func(t *testing.T) {
		t.Parallel()

		stdin := strings.NewReader(hex.EncodeToString([]byte("abc")) + "\n")
		r := model.NewAnalysisReport(input.StdinPath)
		if err := NewLoadStep(stdin, true).Do(context.Background(), r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(r.Ciphertext) != "abc" {
			t.Errorf("ciphertext = %q", r.Ciphertext)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		r := model.NewAnalysisReport(filepath.Join(t.TempDir(), "missing"))
		err := NewLoadStep(nil, false).Do(context.Background(), r)
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected os.ErrNotExist, got %v", err)
		}
	})
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	// SHA3-256 of the empty string.
	const empty = "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a"
	if got := Fingerprint(nil); got != empty {
		t.Errorf("Fingerprint(nil) = %s", got)
	}
	if Fingerprint([]byte("a")) == Fingerprint([]byte("b")) {
		t.Error("expected different fingerprints")
	}
}

func TestAnalyzeStep(t *testing.T) {
	t.Parallel()

	t.Run("recovers key", func(t *testing.T) {
		t.Parallel()

		r := model.NewAnalysisReport("fox")
		r.Ciphertext = foxCiphertext()
		if err := NewAnalyzeStep(recoveryConfig()).Do(context.Background(), r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Analysis == nil || len(r.Analysis.Keys) != 1 {
			t.Fatalf("unexpected analysis %+v", r.Analysis)
		}
		if string(r.Analysis.Keys[0].Key) != "KEY" {
			t.Errorf("key = %q, want KEY", r.Analysis.Keys[0].Key)
		}
		if r.Analysis.ValidCount != 1 {
			t.Errorf("ValidCount = %d, want 1", r.Analysis.ValidCount)
		}
	})

	t.Run("configuration error", func(t *testing.T) {
		t.Parallel()

		cfg := recoveryConfig()
		cfg.FrequentChar = "too long"

		r := model.NewAnalysisReport("fox")
		r.Ciphertext = foxCiphertext()
		err := NewAnalyzeStep(cfg).Do(context.Background(), r)
		if !errors.Is(err, input.ErrInvalidChar) {
			t.Errorf("expected ErrInvalidChar, got %v", err)
		}
	})

	t.Run("cancellation marks timeout", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		cfg := recoveryConfig()
		cfg.KnownKeyLength = 0

		r := model.NewAnalysisReport("fox")
		r.Ciphertext = foxCiphertext()
		err := NewAnalyzeStep(cfg).Do(ctx, r)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if !r.TimedOut {
			t.Error("expected TimedOut")
		}
		if r.Analysis != nil {
			t.Error("expected no partial analysis")
		}
	})
}

func TestWritePlaintextsStep(t *testing.T) {
	t.Parallel()

	t.Run("writes directory", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "out")
		r := model.NewAnalysisReport("fox")
		r.Ciphertext = foxCiphertext()
		if err := NewAnalyzeStep(recoveryConfig()).Do(context.Background(), r); err != nil {
			t.Fatalf("analyze: %v", err)
		}
		if err := NewWritePlaintextsStep(dir, nil).Do(context.Background(), r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.OutputDir != dir {
			t.Errorf("OutputDir = %q, want %q", r.OutputDir, dir)
		}

		data, err := os.ReadFile(filepath.Join(dir, "0.out"))
		if err != nil {
			t.Fatalf("read plaintext: %v", err)
		}
		if string(data) != strings.Repeat("THE QUICK BROWN FOX ", 5) {
			t.Errorf("plaintext = %q", data)
		}
		if _, err := os.Stat(filepath.Join(dir, report.KeyMappingFile)); err != nil {
			t.Errorf("expected key mapping: %v", err)
		}
	})

	t.Run("skips estimation only", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "out")
		r := model.NewAnalysisReport("fox")
		r.Analysis = &model.Analysis{KeyLength: 3}
		if err := NewWritePlaintextsStep(dir, nil).Do(context.Background(), r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Errorf("expected no directory, got %v", err)
		}
		if r.OutputDir != "" {
			t.Errorf("OutputDir = %q", r.OutputDir)
		}
	})
}

func TestDefaultPipeline(t *testing.T) {
	t.Parallel()

	t.Run("step order", func(t *testing.T) {
		t.Parallel()

		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatalf("open database: %v", err)
		}
		defer db.Close()

		p := DefaultPipeline(recoveryConfig(), DefaultPipelineConfig{OutputDir: "out", DB: db})
		want := []string{StepLoad, StepAnalyze, StepWritePlaintexts, StepPersist}
		if got := p.StepNames(); !reflect.DeepEqual(got, want) {
			t.Errorf("StepNames() = %v, want %v", got, want)
		}

		bare := DefaultPipeline(recoveryConfig(), DefaultPipelineConfig{})
		if got := bare.StepNames(); !reflect.DeepEqual(got, []string{StepLoad, StepAnalyze}) {
			t.Errorf("StepNames() = %v", got)
		}
	})

	t.Run("end to end with history", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatalf("open database: %v", err)
		}
		defer db.Close()

		data := foxCiphertext()
		path := writeInput(t, data)
		dir := filepath.Join(t.TempDir(), "out")

		r := model.NewAnalysisReport(path)
		p := DefaultPipeline(recoveryConfig(), DefaultPipelineConfig{OutputDir: dir, DB: db})
		if err := p.Execute(ctx, r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !r.Succeeded() {
			t.Fatalf("expected success, got %v", r.Error)
		}

		records, err := db.ListByFingerprint(ctx, Fingerprint(data))
		if err != nil {
			t.Fatalf("ListByFingerprint: %v", err)
		}
		if len(records) != 1 || records[0].ValidCount != 1 || records[0].Status != database.StatusComplete {
			t.Errorf("unexpected history %+v", records)
		}
	})

	t.Run("failed load is still recorded", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatalf("open database: %v", err)
		}
		defer db.Close()

		r := model.NewAnalysisReport(filepath.Join(t.TempDir(), "missing"))
		r.DateAnalyzed = time.Now()
		p := DefaultPipeline(recoveryConfig(), DefaultPipelineConfig{DB: db})
		if err := p.Execute(ctx, r); err == nil {
			t.Fatal("expected error")
		}

		records, err := db.ListAnalyses(ctx, 0)
		if err != nil {
			t.Fatalf("ListAnalyses: %v", err)
		}
		if len(records) != 1 || records[0].Status != database.StatusError {
			t.Errorf("unexpected history %+v", records)
		}
	})
}
