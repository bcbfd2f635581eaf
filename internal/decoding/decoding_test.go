package decoding

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connorhough/codegen/internal/languages"
)

type step struct {
	chunk       string
	wantStop    bool
	wantDiscard int
}

func runSteps(t *testing.T, c *StopCondition, steps []step) {
	t.Helper()
	for i, s := range steps {
		stopped, discard := c.ShouldStop(s.chunk)
		assert.Equal(t, s.wantStop, stopped, "step %d (%q) stopped", i, s.chunk)
		assert.Equal(t, s.wantDiscard, discard, "step %d (%q) discard", i, s.chunk)
	}
}

func TestStopCondition_ShouldStop(t *testing.T) {
	tests := []struct {
		name      string
		stopWords []string
		prompt    string
		language  *languages.Language
		steps     []step
	}{
		{
			name:      "no stop words never stops",
			stopWords: nil,
			steps: []step{
				{"hello", false, 0},
				{"\n\nworld", false, 0},
			},
		},
		{
			name:      "match inside one chunk",
			stopWords: []string{"STOP"},
			steps: []step{
				{"hello ", false, 0},
				{"worldSTOP", true, 4},
			},
		},
		{
			name:      "match straddling two chunks",
			stopWords: []string{"STOP"},
			steps: []step{
				{"hello worldS", false, 0},
				{"TOPmore", true, 8},
			},
		},
		{
			name:      "match spread over many chunks",
			stopWords: []string{"STOP"},
			steps: []step{
				{"ab", false, 0},
				{"S", false, 0},
				{"T", false, 0},
				{"O", false, 0},
				{"Px", true, 5},
			},
		},
		{
			name:      "stop word only in prompt is ignored",
			stopWords: []string{"\n\n"},
			prompt:    "import os\n\n",
			steps: []step{
				{"def main():", false, 0},
			},
		},
		{
			name:      "stop word started by the prompt",
			stopWords: []string{"\n\n"},
			prompt:    "x = 1\n",
			steps: []step{
				{"\nabc", true, 5},
			},
		},
		{
			name:      "earliest match wins",
			stopWords: []string{"END", "\n\n"},
			steps: []step{
				{"foo\n\nbarEND", true, 8},
			},
		},
		{
			name:      "empty chunk is not a stop",
			stopWords: []string{"STOP"},
			steps: []step{
				{"", false, 0},
				{"STOP", true, 4},
			},
		},
		{
			name:      "discard counts characters not bytes",
			stopWords: []string{"→"},
			steps: []step{
				{"héllo ", false, 0},
				{"wörld→rést", true, 5},
			},
		},
		{
			name:      "language stop words",
			stopWords: []string{"<|endoftext|>"},
			language:  languages.Get("python"),
			prompt:    "def add(a, b):\n",
			steps: []step{
				{"    return a + b\n", false, 0},
				{"\ndef sub", true, 8},
			},
		},
		{
			name:      "configured words still apply with a language",
			stopWords: []string{"<|endoftext|>"},
			language:  languages.Get("python"),
			steps: []step{
				{"return 1<|endof", false, 0},
				{"text|>", true, 13},
			},
		},
		{
			name:      "stopped is terminal",
			stopWords: []string{"STOP"},
			steps: []step{
				{"STOP", true, 4},
				{"more", true, 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewStopConditionFactory(tt.stopWords)
			c := f.Create(tt.prompt, tt.language)
			runSteps(t, c, tt.steps)
		})
	}
}

func TestStopConditionFactory_Create_MultiBytePromptTail(t *testing.T) {
	// Five trailing bytes of the prompt would start mid-character, so the
	// kept tail widens to the previous rune start.
	f := NewStopConditionFactory([]string{"ééé"})
	c := f.Create("ééé", nil)
	assert.Equal(t, "ééé", string(c.text))

	stopped, discard := c.ShouldStop("é!")
	require.True(t, stopped)
	assert.Equal(t, 4, discard)
}

func TestStopConditionFactory_StopWords(t *testing.T) {
	f := NewStopConditionFactory([]string{"STOP", "", "STOP", "\n\n"})

	assert.Equal(t, []string{"\n\n", "STOP"}, f.StopWords(nil))

	python := languages.Get("python")
	words := f.StopWords(python)
	assert.Contains(t, words, "STOP")
	assert.Contains(t, words, "\ndef")
	assert.Contains(t, words, "\n#")

	// cached
	assert.Equal(t, words, f.StopWords(python))
	assert.Len(t, f.byLanguage, 1)
}

func TestStopConditionFactory_ConcurrentRequests(t *testing.T) {
	f := NewStopConditionFactory([]string{"STOP"})
	python := languages.Get("python")

	var wg sync.WaitGroup
	results := make([]int, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := f.Create("prompt", python)
			c.ShouldStop("abc")
			_, discard := c.ShouldStop("STOPxyz")
			results[i] = discard
		}(i)
	}
	wg.Wait()

	for i, d := range results {
		assert.Equal(t, 7, d, "request %d", i)
	}
}
