// Package vocab reads raw vocabulary lists and turns them into the
// ordered, deduplicated terms the rest of the pipeline works on.
package vocab

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// ErrInputFormat indicates the input could not be read or decoded as text.
// It is fatal for the whole run.
var ErrInputFormat = errors.New("invalid input format")

// CommaPolicy decides how a comma-separated input line is interpreted.
type CommaPolicy string

const (
	// CommaSplit treats each comma-separated variant as an independent term.
	CommaSplit CommaPolicy = "split"
	// CommaKeep treats the whole line as a single term.
	CommaKeep CommaPolicy = "keep"
)

// Term is a single vocabulary unit to be turned into a flashcard.
// Identity is the exact trimmed source text.
type Term struct {
	Text  string
	Notes string
}

// Options configures parsing behavior.
type Options struct {
	CommaPolicy CommaPolicy
}

// DefaultOptions returns the default parser configuration.
func DefaultOptions() Options {
	return Options{CommaPolicy: CommaSplit}
}

// Parse reads vocabulary terms from r. Blank lines and lines whose first
// non-whitespace character is '#' are ignored. Duplicate terms are dropped
// silently, keeping the first occurrence's position.
func Parse(r io.Reader, opts Options) ([]Term, error) {
	if opts.CommaPolicy == "" {
		opts.CommaPolicy = CommaSplit
	}

	var terms []Term
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !utf8.ValidString(line) {
			return nil, fmt.Errorf("%w: line %d is not valid UTF-8", ErrInputFormat, lineNo)
		}

		var variants []string
		if opts.CommaPolicy == CommaSplit {
			variants = strings.Split(line, ",")
		} else {
			variants = []string{line}
		}

		for _, v := range variants {
			text := strings.TrimSpace(v)
			if text == "" || seen[text] {
				continue
			}
			seen[text] = true
			terms = append(terms, Term{Text: text})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputFormat, err)
	}

	return terms, nil
}

// ParseFile reads vocabulary terms from the named file.
func ParseFile(path string, opts Options) ([]Term, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputFormat, err)
	}
	defer f.Close()

	return Parse(f, opts)
}
