// Package transcript accumulates finalized speech-to-text fragments into a
// single utterance.
package transcript

import (
	"regexp"
	"strings"
	"sync"
)

var (
	whitespaceRun    = regexp.MustCompile(`\s+`)
	spaceBeforePunct = regexp.MustCompile(`\s+([.,?!])`)
)

// Buffer is safe for concurrent use. Fragments are kept in arrival order.
type Buffer struct {
	mu        sync.RWMutex
	fragments []string
	current   string
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append ignores empty and whitespace-only fragments.
func (b *Buffer) Append(fragment string) {
	if strings.TrimSpace(fragment) == "" {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.fragments = append(b.fragments, fragment)
	b.current = Clean(strings.Join(b.fragments, " "))
}

func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.fragments = nil
	b.current = ""
}

func (b *Buffer) Current() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current
}

func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.fragments)
}

// Clean collapses whitespace and removes spaces left before . , ? and !.
func Clean(text string) string {
	text = whitespaceRun.ReplaceAllString(text, " ")
	text = spaceBeforePunct.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}
