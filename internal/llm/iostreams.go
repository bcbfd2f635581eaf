package llm

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// IOStreams abstracts standard I/O so commands can be driven from tests.
type IOStreams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer

	isTerminalFunc func(fd int) bool
	stdinFd        int
}

// NewIOStreams creates IOStreams connected to os.Stdin/Stdout/Stderr.
func NewIOStreams() *IOStreams {
	return &IOStreams{
		In:             os.Stdin,
		Out:            os.Stdout,
		ErrOut:         os.Stderr,
		isTerminalFunc: term.IsTerminal,
		stdinFd:        int(os.Stdin.Fd()),
	}
}

// IsInteractive returns true if stdin is a TTY (terminal).
func (s *IOStreams) IsInteractive() bool {
	if s.isTerminalFunc == nil {
		return false
	}
	return s.isTerminalFunc(s.stdinFd)
}

// ReadPrompt returns arg when it is non-empty, otherwise the whole of stdin.
// Reading stdin from a terminal is refused so the command never blocks
// waiting on a user who did not pipe anything in.
func (s *IOStreams) ReadPrompt(arg string) (string, error) {
	if arg != "" {
		return arg, nil
	}
	if s.IsInteractive() {
		return "", fmt.Errorf("no prompt given: pass it as an argument or pipe it on stdin")
	}

	data, err := io.ReadAll(s.In)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt from stdin: %w", err)
	}
	return string(data), nil
}

// TestIOStreams creates IOStreams backed by in-memory buffers that report a TTY.
// Returns the streams and the input/output buffers for assertions.
func TestIOStreams() (*IOStreams, *bytes.Buffer, *bytes.Buffer) {
	in := &bytes.Buffer{}
	out := &bytes.Buffer{}
	return &IOStreams{
		In:             in,
		Out:            out,
		ErrOut:         out,
		isTerminalFunc: func(int) bool { return true },
		stdinFd:        0,
	}, in, out
}

// TestIOStreamsNonInteractive is TestIOStreams for a piped stdin.
func TestIOStreamsNonInteractive() (*IOStreams, *bytes.Buffer, *bytes.Buffer) {
	in := &bytes.Buffer{}
	out := &bytes.Buffer{}
	return &IOStreams{
		In:             in,
		Out:            out,
		ErrOut:         out,
		isTerminalFunc: func(int) bool { return false },
		stdinFd:        0,
	}, in, out
}
