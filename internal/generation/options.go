package generation

import (
	"time"

	"github.com/connorhough/codegen/internal/languages"
	"github.com/connorhough/codegen/internal/llm"
)

// Mode selects how a request is served
type Mode int

const (
	// ModeStandard streams from the engine and applies stop conditions
	ModeStandard Mode = iota
	// ModeNextEditSuggestion returns the engine's synchronous output as is
	ModeNextEditSuggestion
)

func (m Mode) String() string {
	switch m {
	case ModeNextEditSuggestion:
		return "next_edit_suggestion"
	default:
		return "standard"
	}
}

// ParseMode maps a mode name to a Mode. Only the exact name
// "next_edit_suggestion" selects ModeNextEditSuggestion; anything else,
// including other spellings of it, is ModeStandard.
func ParseMode(s string) Mode {
	if s == "next_edit_suggestion" {
		return ModeNextEditSuggestion
	}
	return ModeStandard
}

// Options holds the per-request generation parameters. Build it once with
// NewOptions and pass it by value.
type Options struct {
	// MaxInputLength is the number of trailing prompt characters kept; 0 keeps all
	MaxInputLength      int
	MaxDecodingTokens   int
	SamplingTemperature float32
	Seed                uint64
	// Language adds the language's stop words when set
	Language *languages.Language
	Mode     Mode
}

// Option configures Options
type Option func(*Options)

// DefaultSeed derives a seed from the current time
func DefaultSeed() uint64 {
	return uint64(time.Now().UnixMilli())
}

// DefaultOptions returns options with the standard defaults and a fresh seed
func DefaultOptions() Options {
	return Options{
		MaxInputLength:      1024,
		MaxDecodingTokens:   256,
		SamplingTemperature: 0.1,
		Seed:                DefaultSeed(),
		Mode:                ModeStandard,
	}
}

// NewOptions applies opts on top of DefaultOptions
func NewOptions(opts ...Option) Options {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// WithMaxInputLength keeps only the last n prompt characters; 0 keeps all
func WithMaxInputLength(n int) Option {
	return func(o *Options) {
		o.MaxInputLength = n
	}
}

// WithMaxDecodingTokens caps the number of tokens the engine may produce
func WithMaxDecodingTokens(n int) Option {
	return func(o *Options) {
		o.MaxDecodingTokens = n
	}
}

// WithSamplingTemperature sets the sampling temperature
func WithSamplingTemperature(t float32) Option {
	return func(o *Options) {
		o.SamplingTemperature = t
	}
}

// WithSeed sets the sampling seed, replacing the time-derived default
func WithSeed(seed uint64) Option {
	return func(o *Options) {
		o.Seed = seed
	}
}

// WithLanguage looks up the language by id. Unknown ids leave no language set.
func WithLanguage(id string) Option {
	return func(o *Options) {
		o.Language = languages.Get(id)
	}
}

// WithMode selects how the request is served
func WithMode(m Mode) Option {
	return func(o *Options) {
		o.Mode = m
	}
}

// completionOptions returns the subset of options the engine sees
func (o Options) completionOptions() llm.CompletionOptions {
	return llm.BuildCompletionOptions(
		llm.WithMaxDecodingTokens(o.MaxDecodingTokens),
		llm.WithSamplingTemperature(o.SamplingTemperature),
		llm.WithSeed(o.Seed),
	)
}
