// Package openai implements the llm.Engine interface over OpenAI-compatible completion APIs.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"math"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/connorhough/codegen/internal/llm"
)

const (
	EngineOpenAI = "openai"
	APIKeyEnvVar = "OPENAI_API_KEY"
)

// Config holds the settings needed to reach an OpenAI-compatible server.
// APIKey may be empty for self-hosted servers that do not authenticate.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Engine implements llm.Engine against the /completions endpoint
type Engine struct {
	client *openai.Client
	model  string
	retry  llm.RetryConfig
}

var _ llm.Engine = (*Engine)(nil)

// NewEngine creates a new engine for an OpenAI-compatible API
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("openai engine requires a model name")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &Engine{
		client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
		retry:  llm.DefaultRetryConfig(),
	}, nil
}

// Name returns the engine name
func (e *Engine) Name() string {
	return EngineOpenAI
}

// GenerateSync requests a whole completion
func (e *Engine) GenerateSync(ctx context.Context, prompt string, opts llm.CompletionOptions) (string, error) {
	req := e.request(prompt, opts)

	return llm.RetryWithBackoff(ctx, e.retry, func(ctx context.Context) (string, error) {
		resp, err := e.client.CreateCompletion(ctx, req)
		if err != nil {
			return "", e.wrapError(err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("openai API returned no choices")
		}
		return resp.Choices[0].Text, nil
	})
}

// Generate streams completion text. Only opening the stream is retried;
// once chunks have been yielded a failure ends the sequence.
func (e *Engine) Generate(ctx context.Context, prompt string, opts llm.CompletionOptions) iter.Seq2[string, error] {
	req := e.request(prompt, opts)

	return func(yield func(string, error) bool) {
		stream, err := llm.RetryWithBackoff(ctx, e.retry, func(ctx context.Context) (*openai.CompletionStream, error) {
			s, err := e.client.CreateCompletionStream(ctx, req)
			if err != nil {
				return nil, e.wrapError(err)
			}
			return s, nil
		})
		if err != nil {
			yield("", err)
			return
		}
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", e.wrapError(err))
				return
			}

			if len(resp.Choices) == 0 || resp.Choices[0].Text == "" {
				continue
			}
			if !yield(resp.Choices[0].Text, nil) {
				return
			}
		}
	}
}

func (e *Engine) request(prompt string, opts llm.CompletionOptions) openai.CompletionRequest {
	// Servers commonly take a 32-bit seed; larger seeds wrap into that range.
	seed := int(opts.Seed % math.MaxInt32)
	return openai.CompletionRequest{
		Model:       e.model,
		Prompt:      prompt,
		MaxTokens:   opts.MaxDecodingTokens,
		Temperature: opts.SamplingTemperature,
		Seed:        &seed,
	}
}

// wrapError maps go-openai errors onto typed engine errors
func (e *Engine) wrapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return llm.ErrAuthenticationFailed(EngineOpenAI, err)
	case status == http.StatusNotFound:
		return llm.ErrModelNotFound(e.model, EngineOpenAI, err)
	case status == http.StatusTooManyRequests:
		return llm.ErrRateLimitExceeded(EngineOpenAI, err)
	case status == 0 || status >= 500:
		return llm.ErrEngineNotAvailable(EngineOpenAI, err)
	}

	return fmt.Errorf("openai API error: %w", err)
}
