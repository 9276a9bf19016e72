// Package seqlog reads, tokenizes and writes recorded transition sequences.
//
// A sequence log is free-form UTF-8 text with labels ("T" followed by two
// digits) embedded in arbitrary noise. The whole log is loaded at once;
// there is no streaming mode.
package seqlog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/roach88/tinv/internal/ir"
)

// DefaultPath is where the recording side writes its sequence.
const DefaultPath = "logs/sequence.txt"

// ErrInvalidUTF8 is returned when the log is not valid UTF-8 text.
var ErrInvalidUTF8 = errors.New("sequence log is not valid UTF-8")

var labelPattern = regexp.MustCompile(`T\d{2}`)

// Read loads the whole log at path and strips surrounding whitespace.
// A missing or unreadable file fails immediately; reads are never retried.
func Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read sequence log: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("read sequence log %s: %w", path, ErrInvalidUTF8)
	}
	return strings.TrimSpace(string(data)), nil
}

// Tokenize returns every label occurrence in text, in order, with byte
// offsets. Anything that is not a label is noise and produces no token.
func Tokenize(text string) []ir.Token {
	locs := labelPattern.FindAllStringIndex(text, -1)
	tokens := make([]ir.Token, len(locs))
	for i, loc := range locs {
		tokens[i] = ir.Token{
			Label: ir.Label(text[loc[0]:loc[1]]),
			Start: loc[0],
			End:   loc[1],
		}
	}
	return tokens
}

// Count builds the frequency table of labels in text.
func Count(text string) map[ir.Label]int {
	counts := make(map[ir.Label]int)
	for _, m := range labelPattern.FindAllString(text, -1) {
		counts[ir.Label(m)]++
	}
	return counts
}

// Normalize trims text, collapses every whitespace run into a single space
// and terminates the result with a newline.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ") + "\n"
}

// Write stores text at path in normalized form, creating parent directories
// and truncating any existing file.
func Write(path, text string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("write sequence log: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(Normalize(text)), 0644); err != nil {
		return fmt.Errorf("write sequence log: %w", err)
	}
	return nil
}
