package llm

import (
	"context"
	"iter"
	"sync"
)

// MockEngine is a deterministic Engine for testing.
// Generate yields Chunks in order; GenerateSync returns SyncOutput.
// It records prompts, options and how far each stream was consumed.
type MockEngine struct {
	Chunks     []string
	SyncOutput string

	// SyncErr is returned by GenerateSync.
	SyncErr error
	// StreamErr is yielded after the chunks, when set.
	StreamErr error

	mu          sync.Mutex
	prompts     []string
	options     []CompletionOptions
	syncCalls   int
	streamCalls int
	pulled      int
	abandoned   bool
}

var _ Engine = (*MockEngine)(nil)

// NewMockEngine creates a MockEngine that streams the given chunks.
func NewMockEngine(chunks ...string) *MockEngine {
	return &MockEngine{Chunks: chunks}
}

// Name returns "mock".
func (m *MockEngine) Name() string {
	return "mock"
}

func (m *MockEngine) GenerateSync(_ context.Context, prompt string, opts CompletionOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.syncCalls++
	m.prompts = append(m.prompts, prompt)
	m.options = append(m.options, opts)

	if m.SyncErr != nil {
		return "", m.SyncErr
	}
	return m.SyncOutput, nil
}

func (m *MockEngine) Generate(_ context.Context, prompt string, opts CompletionOptions) iter.Seq2[string, error] {
	m.mu.Lock()
	m.streamCalls++
	m.prompts = append(m.prompts, prompt)
	m.options = append(m.options, opts)
	m.mu.Unlock()

	return func(yield func(string, error) bool) {
		for _, chunk := range m.Chunks {
			m.mu.Lock()
			m.pulled++
			m.mu.Unlock()

			if !yield(chunk, nil) {
				m.mu.Lock()
				m.abandoned = true
				m.mu.Unlock()
				return
			}
		}
		if m.StreamErr != nil {
			yield("", m.StreamErr)
		}
	}
}

// Pulled returns the number of chunks handed to consumers.
func (m *MockEngine) Pulled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pulled
}

// Abandoned reports whether a consumer stopped ranging before the end.
func (m *MockEngine) Abandoned() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.abandoned
}

// SyncCalls returns the number of GenerateSync calls made.
func (m *MockEngine) SyncCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.syncCalls
}

// StreamCalls returns the number of Generate calls made.
func (m *MockEngine) StreamCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.streamCalls
}

// LastPrompt returns the prompt of the most recent call.
func (m *MockEngine) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// LastOptions returns the options of the most recent call.
func (m *MockEngine) LastOptions() CompletionOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.options) == 0 {
		return CompletionOptions{}
	}
	return m.options[len(m.options)-1]
}
