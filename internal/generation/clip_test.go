package generation

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestClipPrompt(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		max    int
		want   string
	}{
		{name: "zero keeps everything", prompt: "abcdef", max: 0, want: "abcdef"},
		{name: "negative keeps everything", prompt: "abcdef", max: -3, want: "abcdef"},
		{name: "short prompt unchanged", prompt: "abc", max: 10, want: "abc"},
		{name: "exact length unchanged", prompt: "abc", max: 3, want: "abc"},
		{name: "keeps the tail", prompt: "abcdef", max: 4, want: "cdef"},
		{name: "empty prompt", prompt: "", max: 4, want: ""},
		{name: "multi-byte tail", prompt: "héllo→wörld", max: 5, want: "wörld"},
		{name: "multi-byte at the cut", prompt: "日本語のコード", max: 4, want: "のコード"},
		{name: "more bytes than limit but fewer characters", prompt: "日本語", max: 5, want: "日本語"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClipPrompt(tt.prompt, tt.max))
		})
	}
}

func TestClipPrompt_SuffixProperty(t *testing.T) {
	prompt := strings.Repeat("fn main() { println!(\"→é日\"); }\n", 8)
	total := utf8.RuneCountInString(prompt)

	for limit := 1; limit <= total+2; limit++ {
		got := ClipPrompt(prompt, limit)
		assert.True(t, strings.HasSuffix(prompt, got), "limit %d: not a suffix", limit)
		assert.True(t, utf8.ValidString(got), "limit %d: split a character", limit)
		assert.Equal(t, min(limit, total), utf8.RuneCountInString(got), "limit %d", limit)
	}
}

func TestDropLastRunes(t *testing.T) {
	tests := []struct {
		text string
		n    int
		want string
	}{
		{"hello worldSTOP", 4, "hello world"},
		{"hello worldSTOPmore", 8, "hello world"},
		{"abc", 0, "abc"},
		{"abc", 3, ""},
		{"abc", 10, ""},
		{"wörld→rést", 5, "wörld"},
		{"", 2, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, dropLastRunes([]byte(tt.text), tt.n), "dropLastRunes(%q, %d)", tt.text, tt.n)
	}
}
