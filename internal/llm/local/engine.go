// Package local implements the llm.Engine interface by running a local inference command.
//
// The prompt is written to the command's stdin and its stdout is the
// generated text. Arguments may contain the placeholders {max_tokens},
// {temperature} and {seed}, which are substituted per request.
package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os/exec"
	"strconv"
	"strings"

	"github.com/connorhough/codegen/internal/llm"
)

const EngineLocal = "local"

const readBufferSize = 4096

// Engine implements the llm.Engine interface for a local command
type Engine struct {
	cliPath string
	args    []string
}

var _ llm.Engine = (*Engine)(nil)

// NewEngine resolves command on PATH and creates a new local engine
func NewEngine(command string, args []string) (*Engine, error) {
	if command == "" {
		return nil, llm.ErrEngineNotAvailable(EngineLocal, errors.New("no command configured"))
	}

	cliPath, err := exec.LookPath(command)
	if err != nil {
		return nil, llm.ErrEngineNotAvailable(EngineLocal, err)
	}

	return &Engine{
		cliPath: cliPath,
		args:    args,
	}, nil
}

// Name returns the engine name
func (e *Engine) Name() string {
	return EngineLocal
}

// GenerateSync runs the command to completion and returns its stdout unmodified
func (e *Engine) GenerateSync(ctx context.Context, prompt string, opts llm.CompletionOptions) (string, error) {
	cmd := exec.CommandContext(ctx, e.cliPath, e.expandArgs(opts)...)
	cmd.Stdin = strings.NewReader(prompt)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("local engine failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}

	return string(output), nil
}

// Generate streams the command's stdout. Abandoning the sequence kills the process.
func (e *Engine) Generate(ctx context.Context, prompt string, opts llm.CompletionOptions) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		cmd := exec.CommandContext(ctx, e.cliPath, e.expandArgs(opts)...)
		cmd.Stdin = strings.NewReader(prompt)

		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		stdout, err := cmd.StdoutPipe()
		if err != nil {
			yield("", llm.ErrEngineNotAvailable(EngineLocal, err))
			return
		}
		if err := cmd.Start(); err != nil {
			yield("", llm.ErrEngineNotAvailable(EngineLocal, err))
			return
		}

		abandon := func() {
			cancel()
			_ = cmd.Wait()
		}

		var chunker utf8Chunker
		buf := make([]byte, readBufferSize)
		for {
			n, readErr := stdout.Read(buf)
			if n > 0 {
				if chunk := chunker.Write(buf[:n]); chunk != "" && !yield(chunk, nil) {
					abandon()
					return
				}
			}
			if errors.Is(readErr, io.EOF) {
				break
			}
			if readErr != nil {
				abandon()
				yield("", fmt.Errorf("reading local engine output: %w", readErr))
				return
			}
		}

		if rest := chunker.Flush(); rest != "" && !yield(rest, nil) {
			abandon()
			return
		}

		if err := cmd.Wait(); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				yield("", ctxErr)
				return
			}
			yield("", fmt.Errorf("local engine failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String())))
		}
	}
}

func (e *Engine) expandArgs(opts llm.CompletionOptions) []string {
	r := strings.NewReplacer(
		"{max_tokens}", strconv.Itoa(opts.MaxDecodingTokens),
		"{temperature}", strconv.FormatFloat(float64(opts.SamplingTemperature), 'g', -1, 32),
		"{seed}", strconv.FormatUint(opts.Seed, 10),
	)

	args := make([]string, len(e.args))
	for i, a := range e.args {
		args[i] = r.Replace(a)
	}
	return args
}
