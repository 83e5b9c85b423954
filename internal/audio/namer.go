package audio

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"sync"
)

// Namer assigns unique, sequential, prefixed filenames to rendered audio
// assets. The counter only moves forward; an index handed out is never
// reused within a run. Safe for concurrent use.
type Namer struct {
	mu     sync.Mutex
	prefix string
	next   int
	pad    int
	ext    string
}

// NewNamer creates a namer starting at base. pad is the zero-padding
// width of the index (1 disables padding).
func NewNamer(prefix string, base, pad int, ext string) *Namer {
	if pad < 1 {
		pad = 1
	}
	if ext == "" {
		ext = "wav"
	}
	return &Namer{prefix: prefix, next: base, pad: pad, ext: ext}
}

// Next returns the next filename, e.g. "RT_VOCAB0007.wav".
func (n *Namer) Next() string {
	n.mu.Lock()
	index := n.next
	n.next++
	n.mu.Unlock()
	return n.format(index)
}

// Peek returns the filename the next call to Next will produce, without
// advancing the counter.
func (n *Namer) Peek() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.format(n.next)
}

func (n *Namer) format(index int) string {
	return fmt.Sprintf("%s%0*d.%s", n.prefix, n.pad, index, n.ext)
}

// NextIndex returns the index the next call to Next would use.
func (n *Namer) NextIndex() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.next
}

// ScanNextIndex inspects dir for files named {prefix}{index}.{ext} and
// returns the highest index found plus one, so reprocessing an extended
// input never overwrites existing flashcard audio. Returns 0 for an
// empty or missing directory.
func ScanNextIndex(dir, prefix string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to scan media directory: %w", err)
	}

	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(prefix) + `(\d+)\.[A-Za-z0-9]+$`)
	next := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := pattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		index, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if index >= next {
			next = index + 1
		}
	}
	return next, nil
}
