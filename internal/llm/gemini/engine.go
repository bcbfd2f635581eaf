// Package gemini implements the llm.Engine interface over the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math"
	"strings"

	"google.golang.org/genai"

	"github.com/connorhough/codegen/internal/llm"
)

const (
	EngineGemini = "gemini"
	APIKeyEnvVar = "GEMINI_API_KEY"
)

// Config holds the settings needed to reach the Gemini API
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Engine implements the llm.Engine interface for Gemini API
type Engine struct {
	client *genai.Client
	model  string
	retry  llm.RetryConfig
}

var _ llm.Engine = (*Engine)(nil)

// NewEngine creates a new Gemini engine
func NewEngine(ctx context.Context, cfg Config) (*Engine, error) {
	if cfg.APIKey == "" {
		return nil, llm.ErrAuthenticationFailed(EngineGemini,
			fmt.Errorf("API key is required (set %s environment variable)", APIKeyEnvVar))
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, llm.ErrEngineNotAvailable(EngineGemini, err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel()
	}

	return &Engine{
		client: client,
		model:  model,
		retry:  llm.DefaultRetryConfig(),
	}, nil
}

// Name returns the engine name
func (e *Engine) Name() string {
	return EngineGemini
}

// GenerateSync sends a prompt to Gemini and returns the whole response
func (e *Engine) GenerateSync(ctx context.Context, prompt string, opts llm.CompletionOptions) (string, error) {
	config := contentConfig(opts)

	return llm.RetryWithBackoff(ctx, e.retry, func(ctx context.Context) (string, error) {
		resp, err := e.client.Models.GenerateContent(ctx, e.model, genai.Text(prompt), config)
		if err != nil {
			return "", e.wrapError(err)
		}

		if len(resp.Candidates) == 0 {
			return "", fmt.Errorf("gemini API returned no candidates")
		}

		return responseText(resp), nil
	})
}

// Generate streams the response text as it arrives. Opening the stream is
// retried until the first chunk arrives; after that a failure ends the
// sequence.
func (e *Engine) Generate(ctx context.Context, prompt string, opts llm.CompletionOptions) iter.Seq2[string, error] {
	config := contentConfig(opts)

	return func(yield func(string, error) bool) {
		s, err := llm.RetryWithBackoff(ctx, e.retry, func(ctx context.Context) (*stream, error) {
			return e.open(ctx, prompt, config)
		})
		if err != nil {
			yield("", err)
			return
		}
		defer s.stop()

		if s.first == "" {
			return
		}
		if !yield(s.first, nil) {
			return
		}

		for {
			resp, err, ok := s.next()
			if !ok {
				return
			}
			if err != nil {
				yield("", e.wrapError(err))
				return
			}

			text := responseText(resp)
			if text == "" {
				continue
			}
			if !yield(text, nil) {
				return
			}
		}
	}
}

// stream is an opened response stream together with its first text chunk.
// An empty first means the response had no text.
type stream struct {
	next  func() (*genai.GenerateContentResponse, error, bool)
	stop  func()
	first string
}

// open starts a response stream and reads up to its first text chunk, so
// that errors reported before any output can be retried.
func (e *Engine) open(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*stream, error) {
	next, stop := iter.Pull2(e.client.Models.GenerateContentStream(ctx, e.model, genai.Text(prompt), config))

	for {
		resp, err, ok := next()
		if !ok {
			return &stream{next: next, stop: stop}, nil
		}
		if err != nil {
			stop()
			return nil, e.wrapError(err)
		}
		if text := responseText(resp); text != "" {
			return &stream{next: next, stop: stop, first: text}, nil
		}
	}
}

func contentConfig(opts llm.CompletionOptions) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(opts.SamplingTemperature),
		Seed:        genai.Ptr(seed(opts.Seed)),
	}
	if opts.MaxDecodingTokens > 0 {
		config.MaxOutputTokens = int32(opts.MaxDecodingTokens)
	}
	return config
}

// seed reduces a seed to the int32 range the API accepts. Seeds that
// differ by a multiple of math.MaxInt32 map to the same value.
func seed(s uint64) int32 {
	return int32(s % math.MaxInt32)
}

// responseText concatenates the text parts of the first candidate.
// Whitespace is significant for code, so nothing is trimmed.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var result strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" && !part.Thought {
			result.WriteString(part.Text)
		}
	}
	return result.String()
}

// wrapError wraps Gemini API errors with appropriate typed errors
func (e *Engine) wrapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &apiErrPtr):
		apiErr = *apiErrPtr
	default:
		return e.wrapMessage(err)
	}

	// Check status first (most reliable)
	switch apiErr.Status {
	case "UNAUTHENTICATED", "PERMISSION_DENIED":
		return llm.ErrAuthenticationFailed(EngineGemini, err)
	case "INVALID_ARGUMENT":
		if strings.Contains(apiErr.Message, "API key") {
			return llm.ErrAuthenticationFailed(EngineGemini, err)
		}
	case "RESOURCE_EXHAUSTED":
		return llm.ErrRateLimitExceeded(EngineGemini, err)
	case "NOT_FOUND":
		return llm.ErrModelNotFound(e.model, EngineGemini, err)
	}

	// Fallback to HTTP status code
	switch {
	case apiErr.Code == 400 && strings.Contains(apiErr.Message, "API key"):
		return llm.ErrAuthenticationFailed(EngineGemini, err)
	case apiErr.Code == 401 || apiErr.Code == 403:
		return llm.ErrAuthenticationFailed(EngineGemini, err)
	case apiErr.Code == 429:
		return llm.ErrRateLimitExceeded(EngineGemini, err)
	case apiErr.Code == 404:
		return llm.ErrModelNotFound(e.model, EngineGemini, err)
	case apiErr.Code >= 500:
		return llm.ErrEngineNotAvailable(EngineGemini, err)
	}

	return fmt.Errorf("gemini API error: %w", err)
}

// wrapMessage classifies errors that are not genai.APIError by their text
func (e *Engine) wrapMessage(err error) error {
	errMsg := err.Error()
	if strings.Contains(errMsg, "API key") || strings.Contains(errMsg, "authentication") {
		return llm.ErrAuthenticationFailed(EngineGemini, err)
	}

	if strings.Contains(errMsg, "rate limit") || strings.Contains(errMsg, "quota") || strings.Contains(errMsg, "RESOURCE_EXHAUSTED") {
		return llm.ErrRateLimitExceeded(EngineGemini, err)
	}

	if strings.Contains(errMsg, "not found") && strings.Contains(errMsg, "model") {
		return llm.ErrModelNotFound(e.model, EngineGemini, err)
	}

	return llm.ErrEngineNotAvailable(EngineGemini, err)
}
