// Package engines implements the engine factory.
package engines

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/connorhough/codegen/internal/config"
	"github.com/connorhough/codegen/internal/llm"
	"github.com/connorhough/codegen/internal/llm/anthropic"
	"github.com/connorhough/codegen/internal/llm/gemini"
	"github.com/connorhough/codegen/internal/llm/local"
	"github.com/connorhough/codegen/internal/llm/openai"
)

// EngineMock names the HTTP engine setting that selects llm.MockEngine
const EngineMock = "mock"

// Factory creates and caches engine instances
type Factory struct {
	cache map[string]llm.Engine
	mu    sync.RWMutex
}

// NewFactory creates a new engine factory
func NewFactory() *Factory {
	return &Factory{
		cache: make(map[string]llm.Engine),
	}
}

// GetEngine returns the engine described by cfg. Engines are cached per
// distinct configuration.
func (f *Factory) GetEngine(ctx context.Context, cfg config.ModelConfig) (llm.Engine, error) {
	if isNil(cfg) {
		return nil, fmt.Errorf("no model configured")
	}
	key := cacheKey(cfg)

	f.mu.RLock()
	if engine, ok := f.cache[key]; ok {
		f.mu.RUnlock()
		return engine, nil
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	if engine, ok := f.cache[key]; ok {
		return engine, nil
	}

	engine, err := newEngine(ctx, cfg)
	if err != nil {
		return nil, err
	}

	f.cache[key] = engine

	return engine, nil
}

func newEngine(ctx context.Context, cfg config.ModelConfig) (llm.Engine, error) {
	switch c := cfg.(type) {
	case *config.LocalModelConfig:
		return local.NewEngine(c.Command, c.Args)
	case *config.HTTPModelConfig:
		return newHTTPEngine(ctx, c)
	default:
		return nil, fmt.Errorf("unsupported model config %T", cfg)
	}
}

func newHTTPEngine(ctx context.Context, c *config.HTTPModelConfig) (llm.Engine, error) {
	switch strings.ToLower(c.Engine) {
	case openai.EngineOpenAI, "":
		return openai.NewEngine(openai.Config{
			APIKey:  apiKey(c.APIKey, openai.APIKeyEnvVar),
			BaseURL: c.APIEndpoint,
			Model:   c.ModelName,
		})
	case gemini.EngineGemini:
		return gemini.NewEngine(ctx, gemini.Config{
			APIKey:  apiKey(c.APIKey, gemini.APIKeyEnvVar),
			BaseURL: c.APIEndpoint,
			Model:   c.ModelName,
		})
	case anthropic.EngineAnthropic:
		return anthropic.NewEngine(anthropic.Config{
			APIKey:  apiKey(c.APIKey, anthropic.APIKeyEnvVar),
			BaseURL: c.APIEndpoint,
			Model:   c.ModelName,
		})
	case EngineMock:
		return llm.NewMockEngine(), nil
	default:
		return nil, fmt.Errorf("unknown engine: %s", c.Engine)
	}
}

// apiKey prefers the configured key over the environment
func apiKey(configured, envVar string) string {
	if configured != "" {
		return configured
	}
	return os.Getenv(envVar)
}

func cacheKey(cfg config.ModelConfig) string {
	switch c := cfg.(type) {
	case *config.LocalModelConfig:
		return strings.Join(append([]string{config.ModelTypeLocal, c.Command}, c.Args...), "\x00")
	case *config.HTTPModelConfig:
		return strings.Join([]string{config.ModelTypeHTTP, strings.ToLower(c.Engine), c.APIEndpoint, c.APIKey, c.ModelName}, "\x00")
	}
	return fmt.Sprintf("%T", cfg)
}

func isNil(cfg config.ModelConfig) bool {
	switch c := cfg.(type) {
	case nil:
		return true
	case *config.LocalModelConfig:
		return c == nil
	case *config.HTTPModelConfig:
		return c == nil
	}
	return false
}

// Global factory instance
var globalFactory = NewFactory()

// GetEngine is a convenience function that uses the global factory
func GetEngine(ctx context.Context, cfg config.ModelConfig) (llm.Engine, error) {
	return globalFactory.GetEngine(ctx, cfg)
}
