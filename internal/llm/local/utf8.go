package local

import "unicode/utf8"

// utf8Chunker holds back a trailing incomplete UTF-8 sequence so that every
// emitted chunk is made of whole characters.
type utf8Chunker struct {
	pending []byte
}

// Write appends p and returns the longest prefix that ends on a character boundary.
func (c *utf8Chunker) Write(p []byte) string {
	c.pending = append(c.pending, p...)

	cut := len(c.pending)
	for i := len(c.pending) - 1; i >= 0 && i >= len(c.pending)-utf8.UTFMax; i-- {
		if utf8.RuneStart(c.pending[i]) {
			if !utf8.FullRune(c.pending[i:]) {
				cut = i
			}
			break
		}
	}

	out := string(c.pending[:cut])
	c.pending = append(c.pending[:0], c.pending[cut:]...)
	return out
}

// Flush returns whatever is still pending, complete or not.
func (c *utf8Chunker) Flush() string {
	out := string(c.pending)
	c.pending = nil
	return out
}
