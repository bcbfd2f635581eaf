// Package anthropic implements the llm.Engine interface over the Anthropic messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"github.com/connorhough/codegen/internal/llm"
)

const (
	EngineAnthropic = "anthropic"
	APIKeyEnvVar    = "ANTHROPIC_API_KEY"

	// ModelHaiku is used when no model name is configured
	ModelHaiku = "claude-haiku-4-5"

	// The messages API requires max_tokens
	defaultMaxTokens = 256
)

// Config holds the settings needed to reach the Anthropic API
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Engine implements llm.Engine for Anthropic models.
// The messages API has no sampling seed, so CompletionOptions.Seed is ignored.
type Engine struct {
	client *anthropic.Client
	model  string
	retry  llm.RetryConfig
}

var _ llm.Engine = (*Engine)(nil)

// NewEngine creates a new Anthropic engine
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.APIKey == "" {
		return nil, llm.ErrAuthenticationFailed(EngineAnthropic,
			fmt.Errorf("API key is required (set %s environment variable)", APIKeyEnvVar))
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// retries are handled by llm.RetryWithBackoff
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = ModelHaiku
	}

	client := anthropic.NewClient(opts...)
	return &Engine{
		client: &client,
		model:  model,
		retry:  llm.DefaultRetryConfig(),
	}, nil
}

// Name returns the engine name
func (e *Engine) Name() string {
	return EngineAnthropic
}

// GenerateSync sends the prompt as a single user message and returns the text reply
func (e *Engine) GenerateSync(ctx context.Context, prompt string, opts llm.CompletionOptions) (string, error) {
	params := e.params(prompt, opts)

	return llm.RetryWithBackoff(ctx, e.retry, func(ctx context.Context) (string, error) {
		msg, err := e.client.Messages.New(ctx, params)
		if err != nil {
			return "", e.wrapError(err)
		}

		var b strings.Builder
		for _, block := range msg.Content {
			if block.Type == "text" {
				b.WriteString(block.Text)
			}
		}
		return b.String(), nil
	})
}

// Generate streams text deltas of the reply. Opening the stream is retried
// until the first delta arrives; after that a failure ends the sequence.
func (e *Engine) Generate(ctx context.Context, prompt string, opts llm.CompletionOptions) iter.Seq2[string, error] {
	params := e.params(prompt, opts)

	return func(yield func(string, error) bool) {
		s, err := llm.RetryWithBackoff(ctx, e.retry, func(ctx context.Context) (*openStream, error) {
			return e.open(ctx, params)
		})
		if err != nil {
			yield("", err)
			return
		}
		defer s.stream.Close()

		if s.first == "" {
			return
		}
		if !yield(s.first, nil) {
			return
		}

		for s.stream.Next() {
			text, ok := textDelta(s.stream.Current())
			if !ok {
				continue
			}
			if !yield(text, nil) {
				return
			}
		}

		if err := s.stream.Err(); err != nil {
			yield("", e.wrapError(err))
		}
	}
}

// openStream is an opened event stream together with its first text delta.
// An empty first means the reply ended without text.
type openStream struct {
	stream *ssestream.Stream[anthropic.MessageStreamEventUnion]
	first  string
}

// open starts a stream and reads up to its first text delta, so that errors
// reported before any output can be retried.
func (e *Engine) open(ctx context.Context, params anthropic.MessageNewParams) (*openStream, error) {
	stream := e.client.Messages.NewStreaming(ctx, params)

	for stream.Next() {
		if text, ok := textDelta(stream.Current()); ok {
			return &openStream{stream: stream, first: text}, nil
		}
	}

	if err := stream.Err(); err != nil {
		stream.Close()
		return nil, e.wrapError(err)
	}
	return &openStream{stream: stream}, nil
}

func textDelta(event anthropic.MessageStreamEventUnion) (string, bool) {
	ev, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
	if !ok {
		return "", false
	}
	delta, ok := ev.Delta.AsAny().(anthropic.TextDelta)
	if !ok || delta.Text == "" {
		return "", false
	}
	return delta.Text, true
}

func (e *Engine) params(prompt string, opts llm.CompletionOptions) anthropic.MessageNewParams {
	maxTokens := opts.MaxDecodingTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return anthropic.MessageNewParams{
		Model:       anthropic.Model(e.model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(float64(opts.SamplingTemperature)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
}

// wrapError maps SDK errors onto typed engine errors
func (e *Engine) wrapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			return llm.ErrAuthenticationFailed(EngineAnthropic, err)
		case apiErr.StatusCode == http.StatusNotFound:
			return llm.ErrModelNotFound(e.model, EngineAnthropic, err)
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return llm.ErrRateLimitExceeded(EngineAnthropic, err)
		case apiErr.StatusCode >= 500:
			return llm.ErrEngineNotAvailable(EngineAnthropic, err)
		}
		return fmt.Errorf("anthropic API error: %w", err)
	}
	return llm.ErrEngineNotAvailable(EngineAnthropic, err)
}
