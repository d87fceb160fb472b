// Package config provides configuration structures and utilities for
// xorcrack. It defines the analysis options, report and output settings,
// and the optional YAML configuration file with per-input overrides.
package config
