// Package main provides the entry point for the xorcrack CLI.
//
// xorcrack analyzes data encrypted with a repeating-key XOR cipher. It
// estimates the key length from coincidence counts and recovers candidate
// keys from an assumption about the most frequent plaintext byte.
//
// Usage:
//
//	xorcrack analyze secret.bin
//	xorcrack analyze -l 3 -c ' ' secret.bin
//	xorcrack analyze -x -b -p "flag{" challenge.hex
//
// See --help for all available options.
package main

// main is the entry point for xorcrack.
func main() {
	Execute()
}
