// Package tuitest drives the compiled TUI binary inside a pseudo terminal
// so integration tests can replay keystrokes and assert on rendered frames.
package tuitest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/creack/pty"
)

const (
	defaultWidth   = 120
	defaultHeight  = 32
	defaultTimeout = 5 * time.Second
)

// Step is one scripted user interaction. A zero delay writes the input
// immediately after the previous step.
type Step struct {
	Delay time.Duration
	Input []byte
}

// Script configures how the harness spawns and drives the program.
type Script struct {
	Command          []string
	Dir              string
	Env              []string
	Width            int
	Height           int
	Steps            []Step
	Timeout          time.Duration
	AllowedExitCodes []int
	AllowInterrupt   bool
}

// Capture holds the raw terminal stream plus the parsed frames.
type Capture struct {
	Raw      []byte
	Frames   []Frame
	Duration time.Duration
}

// Run executes the scripted command inside a PTY, replays its inputs, and
// records every byte the program writes to the terminal.
func Run(ctx context.Context, script Script) (*Capture, error) {
	if len(script.Command) == 0 {
		return nil, errors.New("tuitest: command is required")
	}
	width := script.Width
	if width <= 0 {
		width = defaultWidth
	}
	height := script.Height
	if height <= 0 {
		height = defaultHeight
	}
	timeout := script.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, script.Command[0], script.Command[1:]...)
	cmd.Dir = script.Dir
	cmd.Env = buildEnv(script.Env)

	allowedCodes := map[int]struct{}{0: {}}
	for _, code := range script.AllowedExitCodes {
		allowedCodes[code] = struct{}{}
	}

	winsize := &pty.Winsize{Rows: uint16(height), Cols: uint16(width)}
	ptmx, err := pty.StartWithSize(cmd, winsize)
	if err != nil {
		return nil, fmt.Errorf("tuitest: start program: %w", err)
	}
	defer func() { _ = ptmx.Close() }()

	var output bytes.Buffer
	copyDone := make(chan struct{})
	go func() {
		defer close(copyDone)
		responder := newQueryResponder(ptmx)
		buf := make([]byte, 4096)
		for {
			n, readErr := ptmx.Read(buf)
			if n > 0 {
				chunk := buf[:n]
				responder.Process(chunk)
				_, _ = output.Write(chunk)
			}
			if readErr != nil {
				if errors.Is(readErr, io.EOF) || errors.Is(readErr, os.ErrClosed) {
					return
				}
				return
			}
		}
	}()

	start := time.Now()
	for _, step := range script.Steps {
		if step.Delay > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("tuitest: context cancelled before script finished: %w", ctx.Err())
			case <-time.After(step.Delay):
			}
		}
		if len(step.Input) > 0 {
			if _, err := ptmx.Write(step.Input); err != nil {
				return nil, fmt.Errorf("tuitest: write input: %w", err)
			}
		}
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
	}()

	select {
	case err := <-waitErr:
		if err != nil {
			if exitErr, ok := err.(*exec.ExitError); ok {
				if _, ok := allowedCodes[exitErr.ExitCode()]; ok {
					break
				}
			}
			if script.AllowInterrupt && strings.Contains(err.Error(), "signal: interrupt") {
				break
			}
			return nil, fmt.Errorf("tuitest: program exited with error: %w", err)
		}
	case <-ctx.Done():
		return nil, fmt.Errorf("tuitest: timeout waiting for program exit: %w", ctx.Err())
	}

	// Closing the PTY lets the reader goroutine finish draining.
	_ = ptmx.Close()
	<-copyDone

	raw := output.Bytes()
	return &Capture{
		Raw:      raw,
		Frames:   parseFrames(raw),
		Duration: time.Since(start),
	}, nil
}

func buildEnv(extra []string) []string {
	env := os.Environ()
	env = append(env, extra...)
	for _, entry := range env {
		if strings.HasPrefix(entry, "TERM=") {
			return env
		}
	}
	return append(env, "TERM=xterm-256color")
}

var (
	// KeyEnter sends a carriage return to the PTY.
	KeyEnter = []byte{'\r'}
	// KeyTab cycles highlighted terms inside the TUI.
	KeyTab = []byte{'\t'}
	// KeyCtrlC requests the program to terminate.
	KeyCtrlC = []byte{3}
	// KeyEsc dismisses overlays inside the TUI.
	KeyEsc = []byte{27}
)
