package llm

// Option configures a CompletionOptions value
type Option func(*CompletionOptions)

// CompletionOptions holds the decoding parameters forwarded to an engine
type CompletionOptions struct {
	MaxDecodingTokens   int
	SamplingTemperature float32
	Seed                uint64
}

// WithMaxDecodingTokens caps the number of tokens the engine may produce
func WithMaxDecodingTokens(n int) Option {
	return func(opts *CompletionOptions) {
		opts.MaxDecodingTokens = n
	}
}

// WithSamplingTemperature sets the sampling temperature
func WithSamplingTemperature(t float32) Option {
	return func(opts *CompletionOptions) {
		opts.SamplingTemperature = t
	}
}

// WithSeed sets the sampling seed
func WithSeed(seed uint64) Option {
	return func(opts *CompletionOptions) {
		opts.Seed = seed
	}
}

// BuildCompletionOptions constructs CompletionOptions from Option functions
func BuildCompletionOptions(opts ...Option) CompletionOptions {
	options := CompletionOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
