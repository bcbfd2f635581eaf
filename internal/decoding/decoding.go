// Package decoding detects stop conditions in incrementally generated text.
package decoding

import (
	"bytes"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/connorhough/codegen/internal/languages"
)

// StopConditionFactory creates a StopCondition per request. The configured
// stop words never change after construction; stop word sets composed for a
// language are cached.
type StopConditionFactory struct {
	stopWords []string

	mu         sync.RWMutex
	byLanguage map[string][]string
}

// NewStopConditionFactory creates a factory for the given stop words. Empty
// and duplicate words are dropped.
func NewStopConditionFactory(stopWords []string) *StopConditionFactory {
	return &StopConditionFactory{
		stopWords:  normalize(stopWords),
		byLanguage: make(map[string][]string),
	}
}

// StopWords returns the stop words used for language (nil for none).
func (f *StopConditionFactory) StopWords(language *languages.Language) []string {
	if language == nil {
		return f.stopWords
	}

	f.mu.RLock()
	words, ok := f.byLanguage[language.Name]
	f.mu.RUnlock()
	if ok {
		return words
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if words, ok := f.byLanguage[language.Name]; ok {
		return words
	}

	combined := make([]string, 0, len(f.stopWords)+len(language.TopLevelKeywords)+1)
	combined = append(combined, f.stopWords...)
	combined = append(combined, language.StopWords()...)
	words = normalize(combined)
	f.byLanguage[language.Name] = words
	return words
}

// Create returns a fresh StopCondition for one request. Text already in the
// prompt never triggers a stop on its own, but a stop word that begins in the
// prompt and is completed by generated text does.
func (f *StopConditionFactory) Create(prompt string, language *languages.Language) *StopCondition {
	words := f.StopWords(language)

	c := &StopCondition{
		stopWords: make([][]byte, len(words)),
	}
	maxLen := 0
	for i, w := range words {
		c.stopWords[i] = []byte(w)
		maxLen = max(maxLen, len(w))
	}

	// Only the last maxLen-1 bytes of the prompt can take part in a match.
	keep := min(len(prompt), max(maxLen-1, 0))
	start := len(prompt) - keep
	for start > 0 && start < len(prompt) && !utf8.RuneStart(prompt[start]) {
		start--
	}
	c.text = append(c.text, prompt[start:]...)
	c.scanned = len(c.text)

	return c
}

// StopCondition incrementally scans prompt tail plus generated text for stop
// words. It is owned by a single request and is not safe for concurrent use.
type StopCondition struct {
	stopWords [][]byte
	text      []byte
	scanned   int
	stopped   bool
}

// ShouldStop appends newText and reports whether a stop word has now
// appeared. discard is the number of characters that must be removed from
// the end of the text seen so far to cut it just before the earliest match.
// It can exceed the generated length when the match starts inside the prompt.
//
// Once stopped, further calls return (true, 0).
func (c *StopCondition) ShouldStop(newText string) (stopped bool, discard int) {
	if c.stopped {
		return true, 0
	}
	if newText == "" {
		return false, 0
	}

	c.text = append(c.text, newText...)

	match := -1
	for _, w := range c.stopWords {
		// Occurrences starting before from end inside already scanned text.
		from := max(c.scanned-len(w)+1, 0)
		idx := bytes.Index(c.text[from:], w)
		if idx < 0 {
			continue
		}
		if pos := from + idx; match < 0 || pos < match {
			match = pos
		}
	}
	c.scanned = len(c.text)

	if match < 0 {
		return false, 0
	}

	c.stopped = true
	return true, utf8.RuneCount(c.text[match:])
}

// Stopped reports whether a stop word has been matched.
func (c *StopCondition) Stopped() bool {
	return c.stopped
}

func normalize(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
