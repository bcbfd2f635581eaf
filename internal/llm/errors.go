package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies an EngineError
type ErrorKind int

const (
	KindUnavailable ErrorKind = iota
	KindAuthentication
	KindRateLimit
	KindModelNotFound
)

// EngineError represents an engine-specific error
type EngineError struct {
	Engine string
	Kind   ErrorKind
	Msg    string
	Err    error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// ErrEngineNotAvailable indicates the engine is not reachable (binary missing, connection refused, server error)
func ErrEngineNotAvailable(engine string, err error) error {
	return &EngineError{
		Engine: engine,
		Kind:   KindUnavailable,
		Msg:    fmt.Sprintf("engine '%s' not available", engine),
		Err:    err,
	}
}

// ErrAuthenticationFailed indicates authentication failure (invalid API key, etc.)
func ErrAuthenticationFailed(engine string, err error) error {
	return &EngineError{
		Engine: engine,
		Kind:   KindAuthentication,
		Msg:    fmt.Sprintf("authentication failed for engine '%s'", engine),
		Err:    err,
	}
}

// ErrRateLimitExceeded indicates the engine's rate limit was hit
func ErrRateLimitExceeded(engine string, err error) error {
	return &EngineError{
		Engine: engine,
		Kind:   KindRateLimit,
		Msg:    fmt.Sprintf("rate limit exceeded for engine '%s'", engine),
		Err:    err,
	}
}

// ErrModelNotFound indicates the specified model doesn't exist for the engine
func ErrModelNotFound(model, engine string, err error) error {
	return &EngineError{
		Engine: engine,
		Kind:   KindModelNotFound,
		Msg:    fmt.Sprintf("model '%s' not found for engine '%s'", model, engine),
		Err:    err,
	}
}

// IsRetryable reports whether err is worth another attempt.
// Context errors, authentication failures and unknown models are final.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		switch engineErr.Kind {
		case KindAuthentication, KindModelNotFound:
			return false
		}
	}
	return true
}
