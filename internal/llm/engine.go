// Package llm specifies the engine interface and contains shared plumbing for engine implementations
package llm

import (
	"context"
	"iter"
)

// Engine defines the interface for text-producing engines
type Engine interface {
	// GenerateSync sends a prompt and returns the whole result
	GenerateSync(ctx context.Context, prompt string, opts CompletionOptions) (string, error)

	// Generate returns a lazy sequence of text chunks for the prompt.
	// The sequence is finite and cannot be restarted. A consumer may stop
	// ranging over it at any time; the engine must then stop producing.
	// An error is yielded at most once, as the final element.
	Generate(ctx context.Context, prompt string, opts CompletionOptions) iter.Seq2[string, error]

	// Name returns the engine name (e.g., "openai", "local")
	Name() string
}

// ErrorSeq returns a sequence that yields err once.
func ErrorSeq(err error) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		yield("", err)
	}
}
