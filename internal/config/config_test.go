package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/xorcrack/internal/analysis"
	"github.com/nao1215/xorcrack/internal/charset"
	"github.com/nao1215/xorcrack/internal/input"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// Changes to defaults must be intentional, so each one is checked explicitly.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default MaxKeyLength is 65", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxKeyLength != 65 {
			t.Errorf("expected MaxKeyLength to be 65, got %d", cfg.MaxKeyLength)
		}
	})

	t.Run("default Charset is printable", func(t *testing.T) {
		t.Parallel()
		if cfg.Charset != "printable" {
			t.Errorf("expected Charset to be 'printable', got '%s'", cfg.Charset)
		}
	})

	t.Run("default OutputDir is xorcrack_out", func(t *testing.T) {
		t.Parallel()
		if cfg.OutputDir != "xorcrack_out" || !cfg.WriteFiles {
			t.Errorf("expected files in 'xorcrack_out', got '%s' (write %v)", cfg.OutputDir, cfg.WriteFiles)
		}
	})

	t.Run("default MaxCandidates is 65536", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxCandidates != 65536 {
			t.Errorf("expected MaxCandidates to be 65536, got %d", cfg.MaxCandidates)
		}
	})

	t.Run("default BatchSize is 4", func(t *testing.T) {
		t.Parallel()
		if cfg.BatchSize != 4 {
			t.Errorf("expected BatchSize to be 4, got %d", cfg.BatchSize)
		}
	})

	t.Run("no assumption by default", func(t *testing.T) {
		t.Parallel()
		if cfg.FrequentChar != "" || cfg.BruteChars || cfg.BrutePrintable {
			t.Error("expected no frequent-byte assumption")
		}
	})

	t.Run("default Color is auto", func(t *testing.T) {
		t.Parallel()
		if cfg.Color != ColorAuto {
			t.Errorf("expected Color to be auto, got %q", cfg.Color)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	// validConfig returns a minimal valid configuration.
	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Inputs = []string{"cipher.bin"}
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr error
	}{
		{name: "valid config returns nil", modify: func(*Config) {}},
		{name: "no input", modify: func(c *Config) { c.Inputs = nil }, wantErr: ErrNoInput},
		{name: "stdin with files", modify: func(c *Config) { c.Inputs = []string{"-", "cipher.bin"} }},
		{
			name:    "stdin twice",
			modify:  func(c *Config) { c.Inputs = []string{"-", "cipher.bin", "-"} },
			wantErr: ErrDuplicateStdin,
		},
		{name: "zero max key length", modify: func(c *Config) { c.MaxKeyLength = 0 }, wantErr: ErrInvalidMaxKeyLength},
		{name: "negative key length", modify: func(c *Config) { c.KnownKeyLength = -3 }, wantErr: ErrInvalidKeyLength},
		{
			name:    "char and brute chars",
			modify:  func(c *Config) { c.FrequentChar = " "; c.BruteChars = true },
			wantErr: ErrConflictingAssumptions,
		},
		{
			name:    "brute chars and brute printable",
			modify:  func(c *Config) { c.BruteChars = true; c.BrutePrintable = true },
			wantErr: ErrConflictingAssumptions,
		},
		{name: "invalid char", modify: func(c *Config) { c.FrequentChar = "abc" }, wantErr: input.ErrInvalidChar},
		{name: "unknown charset", modify: func(c *Config) { c.Charset = "a?" }, wantErr: charset.ErrUnknownCharset},
		{name: "negative spread", modify: func(c *Config) { c.Spread = -1 }, wantErr: ErrInvalidSpread},
		{name: "negative max candidates", modify: func(c *Config) { c.MaxCandidates = -1 }, wantErr: ErrInvalidMaxCandidates},
		{name: "zero max candidates disables the cap", modify: func(c *Config) { c.MaxCandidates = 0 }},
		{name: "negative concurrency", modify: func(c *Config) { c.Concurrency = -1 }, wantErr: ErrInvalidConcurrency},
		{name: "negative timeout", modify: func(c *Config) { c.Timeout = -time.Second }, wantErr: ErrInvalidTimeout},
		{name: "zero batch size", modify: func(c *Config) { c.BatchSize = 0 }, wantErr: ErrInvalidBatchSize},
		{
			name:    "json and markdown",
			modify:  func(c *Config) { c.JSONReport = true; c.MarkdownReport = true },
			wantErr: ErrConflictingReportFormats,
		},
		{name: "unknown color", modify: func(c *Config) { c.Color = "rainbow" }, wantErr: ErrInvalidColorMode},
		{name: "files without directory", modify: func(c *Config) { c.OutputDir = "" }, wantErr: ErrNoOutputDir},
		{name: "no files without directory", modify: func(c *Config) { c.OutputDir = ""; c.WriteFiles = false }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestConfigAnalysisOptions tests the conversion to analysis options.
func TestConfigAnalysisOptions(t *testing.T) {
	t.Parallel()

	t.Run("fixed char", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.FrequentChar = `\x20`
		cfg.KnownPlaintext = "flag{"
		cfg.Spread = 2
		cfg.Charset = "a1"

		opts, err := cfg.AnalysisOptions()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if opts.Assumption.String() != "0x20" {
			t.Errorf("expected assumption 0x20, got %q", opts.Assumption.String())
		}
		if string(opts.KnownPlaintext) != "flag{" {
			t.Errorf("unexpected known plaintext %q", opts.KnownPlaintext)
		}
		if opts.FrequencySpread != 2 || opts.MaxCandidates != 65536 {
			t.Errorf("unexpected spread %d or cap %d", opts.FrequencySpread, opts.MaxCandidates)
		}
		if opts.Charset.Name() != "a1" || !opts.Charset.Contains('7') || opts.Charset.Contains('A') {
			t.Errorf("unexpected charset %q", opts.Charset.Name())
		}
		if opts.Concurrency <= 0 {
			t.Error("expected concurrency to default to the number of CPUs")
		}
	})

	t.Run("brute modes", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.BruteChars = true
		opts, err := cfg.AnalysisOptions()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if opts.Assumption != analysis.AssumeAllBytes() {
			t.Errorf("expected all bytes, got %q", opts.Assumption.String())
		}

		cfg = NewConfig()
		cfg.BrutePrintable = true
		opts, err = cfg.AnalysisOptions()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if opts.Assumption != analysis.AssumePrintable() {
			t.Errorf("expected printable, got %q", opts.Assumption.String())
		}
	})

	t.Run("no assumption and no known plaintext", func(t *testing.T) {
		t.Parallel()

		opts, err := NewConfig().AnalysisOptions()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !opts.Assumption.IsNone() {
			t.Errorf("expected no assumption, got %q", opts.Assumption.String())
		}
		if opts.KnownPlaintext != nil {
			t.Error("expected nil known plaintext")
		}
	})

	t.Run("known key length raises the maximum", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.KnownKeyLength = 100
		opts, err := cfg.AnalysisOptions()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if opts.MaxKeyLength != 100 {
			t.Errorf("expected MaxKeyLength 100, got %d", opts.MaxKeyLength)
		}
	})

	t.Run("invalid charset", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Charset = "xyz"
		if _, err := cfg.AnalysisOptions(); !errors.Is(err, charset.ErrUnknownCharset) {
			t.Errorf("expected ErrUnknownCharset, got %v", err)
		}
	})
}

// TestConfigForInput tests per-input overrides.
func TestConfigForInput(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.FrequentChar = " "
	cfg.InputConfigs = &File{
		Defaults: InputConfig{Spread: 1},
		Inputs: map[string]InputConfig{
			"secret.bin": {KeyLength: 7, BrutePrintable: true},
			"data/hex.txt": {Hex: true, Charset: "base64"},
		},
	}

	t.Run("base name match", func(t *testing.T) {
		t.Parallel()

		got := cfg.ForInput("some/dir/secret.bin")
		if got.KnownKeyLength != 7 || !got.BrutePrintable || got.FrequentChar != "" {
			t.Errorf("unexpected config %+v", got)
		}
		if got.Spread != 1 {
			t.Errorf("expected default spread 1, got %d", got.Spread)
		}
	})

	t.Run("exact path match", func(t *testing.T) {
		t.Parallel()

		got := cfg.ForInput("data/hex.txt")
		if !got.InputIsHex || got.Charset != "base64" || got.FrequentChar != " " {
			t.Errorf("unexpected config %+v", got)
		}
	})

	t.Run("original config is not modified", func(t *testing.T) {
		t.Parallel()

		_ = cfg.ForInput("secret.bin")
		if cfg.KnownKeyLength != 0 || cfg.FrequentChar != " " {
			t.Error("ForInput modified the receiver")
		}
	})

	t.Run("no config file", func(t *testing.T) {
		t.Parallel()

		plain := NewConfig()
		if got := plain.ForInput("x"); got == plain || got.MaxKeyLength != plain.MaxKeyLength {
			t.Error("expected an equal copy")
		}
	})
}

// TestFilePreferFlags tests that explicit flags clear file defaults.
func TestFilePreferFlags(t *testing.T) {
	t.Parallel()

	cf := &File{
		Defaults: InputConfig{Char: "e", Spread: 2, Charset: "A"},
		Inputs:   map[string]InputConfig{"a.bin": {Char: "x"}},
	}
	changed := map[string]bool{"brute-printable": true, "spread": true}
	cf.PreferFlags(func(name string) bool { return changed[name] })

	if cf.Defaults.Char != "" || cf.Defaults.Spread != 0 {
		t.Errorf("expected overridden defaults to be cleared, got %+v", cf.Defaults)
	}
	if cf.Defaults.Charset != "A" {
		t.Error("unrelated default was cleared")
	}
	if cf.Inputs["a.bin"].Char != "x" {
		t.Error("input-specific settings must be kept")
	}
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.xorcrack")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".xorcrack")
		content := `defaults:
  charset: "a1"
  spread: 1
inputs:
  secret.bin:
    keyLength: 7
    char: '\x00'
    knownPlaintext: "flag{"
  dump.hex:
    hex: true
    brutePrintable: true
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Defaults.Charset != "a1" || cfg.Defaults.Spread != 1 {
			t.Errorf("unexpected defaults %+v", cfg.Defaults)
		}
		secret, ok := cfg.Inputs["secret.bin"]
		if !ok {
			t.Fatal("expected secret.bin in inputs")
		}
		if secret.KeyLength != 7 || secret.Char != `\x00` || secret.KnownPlaintext != "flag{" {
			t.Errorf("unexpected input config %+v", secret)
		}
		merged := cfg.GetInputConfig("dump.hex")
		if !merged.Hex || !merged.BrutePrintable || merged.Charset != "a1" {
			t.Errorf("unexpected merged config %+v", merged)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".xorcrack")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("initializes nil Inputs map", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".xorcrack")
		if err := os.WriteFile(configPath, []byte("defaults:\n  spread: 1\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Inputs == nil {
			t.Error("expected Inputs map to be initialized")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if dir := XDGDataDir(); filepath.Base(dir) != AppName {
		t.Errorf("expected XDG data dir to end in %s, got %q", AppName, dir)
	}
	if dir := XDGConfigDir(); filepath.Base(dir) != AppName {
		t.Errorf("expected XDG config dir to end in %s, got %q", AppName, dir)
	}
}
