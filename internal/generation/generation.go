// Package generation drives an engine to produce a code completion for a
// prompt. It clips the prompt, picks the engine call for the request mode and,
// for streamed output, cuts the completion just before the first stop word.
package generation

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/connorhough/codegen/internal/config"
	"github.com/connorhough/codegen/internal/decoding"
	"github.com/connorhough/codegen/internal/llm"
)

// CodeGeneration produces completions from one engine. It is safe for
// concurrent use; each request gets its own stop condition.
type CodeGeneration struct {
	engine         llm.Engine
	stopConditions *decoding.StopConditionFactory
}

// New creates a CodeGeneration. The additional stop words of cfg apply to
// every request; a nil cfg configures none.
func New(engine llm.Engine, cfg config.ModelConfig) *CodeGeneration {
	var stopWords []string
	if cfg != nil {
		stopWords = cfg.StopWords()
	}

	return &CodeGeneration{
		engine:         engine,
		stopConditions: decoding.NewStopConditionFactory(stopWords),
	}
}

// Generate returns the completion for prompt. Engine errors are returned
// unchanged. An engine that produces nothing yields "" and a nil error.
func (g *CodeGeneration) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	requestID := uuid.NewString()
	prompt = ClipPrompt(prompt, opts.MaxInputLength)
	completionOpts := opts.completionOptions()

	slog.Debug("generating completion",
		"request_id", requestID,
		"engine", g.engine.Name(),
		"mode", opts.Mode,
		"prompt_bytes", len(prompt))

	if opts.Mode == ModeNextEditSuggestion {
		return g.engine.GenerateSync(ctx, prompt, completionOpts)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := g.stopConditions.Create(prompt, opts.Language)
	var text []byte
	for chunk, err := range g.engine.Generate(ctx, prompt, completionOpts) {
		if err != nil {
			return "", err
		}

		stopped, discard := stop.ShouldStop(chunk)
		text = append(text, chunk...)
		if stopped {
			slog.Debug("stop word matched", "request_id", requestID, "discard", discard)
			return dropLastRunes(text, discard), nil
		}
	}

	return string(text), nil
}
