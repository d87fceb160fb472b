package config

import (
	"path/filepath"
)

// InputConfig holds analysis settings for a single input file.
// Zero values mean "not set" and leave the CLI value untouched.
type InputConfig struct {
	// KeyLength is the known key length.
	KeyLength int `yaml:"keyLength,omitempty"`

	// MaxKeyLength is the longest key length probed.
	MaxKeyLength int `yaml:"maxKeyLength,omitempty"`

	// Char is the most frequent plaintext character (same formats as --char).
	Char string `yaml:"char,omitempty"`

	// BruteChars tries every byte as the most frequent character.
	BruteChars bool `yaml:"bruteChars,omitempty"`

	// BrutePrintable tries every printable byte as the most frequent character.
	BrutePrintable bool `yaml:"brutePrintable,omitempty"`

	// Charset is the target charset specification.
	Charset string `yaml:"charset,omitempty"`

	// KnownPlaintext filters plaintexts that do not contain it.
	KnownPlaintext string `yaml:"knownPlaintext,omitempty"`

	// Spread is the frequency spread tolerance.
	Spread int `yaml:"spread,omitempty"`

	// Hex marks the input as hex encoded.
	Hex bool `yaml:"hex,omitempty"`

	// FilterOutput writes only valid plaintexts.
	FilterOutput bool `yaml:"filterOutput,omitempty"`
}

// File represents the structure of the .xorcrack configuration file.
type File struct {
	// Inputs maps input paths to their specific settings.
	// Keys are matched against the path as given on the command line and
	// against its base name.
	Inputs map[string]InputConfig `yaml:"inputs,omitempty"`

	// Defaults contains settings applied to all inputs unless overridden
	// in the input-specific configuration.
	Defaults InputConfig `yaml:"defaults,omitempty"`
}

// GetInputConfig returns the configuration for a specific input path.
// It merges the input-specific configuration with defaults.
func (cf *File) GetInputConfig(path string) InputConfig {
	if ic, ok := cf.Inputs[path]; ok {
		return mergeInputConfig(cf.Defaults, ic)
	}
	if ic, ok := cf.Inputs[filepath.Base(path)]; ok {
		return mergeInputConfig(cf.Defaults, ic)
	}
	return cf.Defaults
}

// mergeInputConfig merges default config with input-specific overrides.
func mergeInputConfig(defaults, override InputConfig) InputConfig {
	result := defaults

	// Override with non-zero values
	if override.KeyLength > 0 {
		result.KeyLength = override.KeyLength
	}
	if override.MaxKeyLength > 0 {
		result.MaxKeyLength = override.MaxKeyLength
	}
	if override.Char != "" || override.BruteChars || override.BrutePrintable {
		result.Char = override.Char
		result.BruteChars = override.BruteChars
		result.BrutePrintable = override.BrutePrintable
	}
	if override.Charset != "" {
		result.Charset = override.Charset
	}
	if override.KnownPlaintext != "" {
		result.KnownPlaintext = override.KnownPlaintext
	}
	if override.Spread > 0 {
		result.Spread = override.Spread
	}
	if override.Hex {
		result.Hex = true
	}
	if override.FilterOutput {
		result.FilterOutput = true
	}

	return result
}

// PreferFlags clears the defaults that were also given as command line
// flags, so explicit flags win over file defaults. changed reports
// whether the flag with the given long name was set. Input-specific
// sections are left untouched and still win over flags.
func (cf *File) PreferFlags(changed func(name string) bool) {
	d := &cf.Defaults
	if changed("key-length") {
		d.KeyLength = 0
	}
	if changed("max-keylen") {
		d.MaxKeyLength = 0
	}
	if changed("char") || changed("brute-chars") || changed("brute-printable") {
		d.Char, d.BruteChars, d.BrutePrintable = "", false, false
	}
	if changed("text-charset") {
		d.Charset = ""
	}
	if changed("known-plaintext") {
		d.KnownPlaintext = ""
	}
	if changed("spread") {
		d.Spread = 0
	}
	if changed("hex") {
		d.Hex = false
	}
	if changed("filter-output") {
		d.FilterOutput = false
	}
}
