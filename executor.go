package main

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

	"github.com/rs/zerolog"
)

// Cmd describes one external process invocation.
type Cmd struct {
	Argv    []string
	Dir     string
	Env     []string // KEY=VALUE entries layered over the current environment
	Timeout time.Duration
	// Stderr, when set, is consulted for every stderr line; lines for which it
	// returns false are dropped.
	Stderr func(line string) bool
	// Probe marks read-only queries (java -version) that run even in dry-run mode.
	Probe bool
}

func (c Cmd) String() string {
	return strings.Join(c.Argv, " ")
}

// Runner executes external processes. Every call blocks until the child exits.
type Runner interface {
	Run(ctx context.Context, c Cmd) (int, error)
	Output(ctx context.Context, c Cmd) (string, int, error)
}

// ProcessError reports a child process that exited non-zero or failed to start.
type ProcessError struct {
	Argv []string
	Code int
	Err  error
}

func (e *ProcessError) Error() string {
	name := ""
	if len(e.Argv) > 0 {
		name = e.Argv[0]
	}
	if e.Code == 0 || !e.Exited() {
		return fmt.Sprintf("%s: %v", name, e.Err)
	}
	return fmt.Sprintf("%s exited with code %d", name, e.Code)
}

func (e *ProcessError) Unwrap() error { return e.Err }

func (e *ProcessError) ExitCode() int { return e.Code }

// Exited reports whether the process ran and exited, as opposed to failing
// to start.
func (e *ProcessError) Exited() bool {
	return e.Err == nil || isExitError(e.Err)
}

// fatalRunError returns the error to propagate from a Run or Output call
// whose non-zero exit the caller records as a failure itself. Cancellation
// and processes that never started are returned; plain exits give nil.
func fatalRunError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var perr *ProcessError
	if errors.As(err, &perr) && perr.Exited() {
		return nil
	}
	return err
}

func isExitError(err error) bool {
	var ee *exec.ExitError
	return errors.As(err, &ee)
}

// ProcessRunner runs commands on the host with os/exec.
type ProcessRunner struct {
	Stdout  io.Writer
	Stderr  io.Writer
	DryRun  bool
	Verbose bool
	Log     zerolog.Logger
}

// NewProcessRunner returns a runner streaming to the process stdout/stderr.
func NewProcessRunner(log zerolog.Logger, dryRun, verbose bool) *ProcessRunner {
	return &ProcessRunner{
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		DryRun:  dryRun,
		Verbose: verbose,
		Log:     log,
	}
}

func (r *ProcessRunner) Run(ctx context.Context, c Cmd) (int, error) {
	if len(c.Argv) == 0 || strings.TrimSpace(c.Argv[0]) == "" {
		return 1, &ProcessError{Code: 1, Err: errors.New("empty command")}
	}
	if r.skip(c) {
		return 0, nil
	}
	ctx, cancel := withTimeout(ctx, c.Timeout)
	defer cancel()

	// #nosec G204 - vmx runs toolchain commands from the suite by design
	cmd := exec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...)
	cmd.Dir = c.Dir
	cmd.Env = mergeEnv(c.Env)
	cmd.Stdin = os.Stdin
	cmd.Stdout = r.stdout()
	var filtered *lineFilter
	if c.Stderr != nil {
		filtered = &lineFilter{out: r.stderr(), keep: c.Stderr}
		cmd.Stderr = filtered
	} else {
		cmd.Stderr = r.stderr()
	}
	err := cmd.Run()
	if filtered != nil {
		filtered.Flush()
	}
	return r.result(ctx, c, err)
}

func (r *ProcessRunner) Output(ctx context.Context, c Cmd) (string, int, error) {
	if len(c.Argv) == 0 || strings.TrimSpace(c.Argv[0]) == "" {
		return "", 1, &ProcessError{Code: 1, Err: errors.New("empty command")}
	}
	if r.skip(c) {
		return "", 0, nil
	}
	ctx, cancel := withTimeout(ctx, c.Timeout)
	defer cancel()

	// #nosec G204 - vmx runs toolchain commands from the suite by design
	cmd := exec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...)
	cmd.Dir = c.Dir
	cmd.Env = mergeEnv(c.Env)
	var buf bytes.Buffer
	if r.Verbose {
		cmd.Stdout = io.MultiWriter(r.stdout(), &buf)
		cmd.Stderr = io.MultiWriter(r.stderr(), &buf)
	} else {
		cmd.Stdout = &buf
		cmd.Stderr = &buf
	}
	err := cmd.Run()
	code, perr := r.result(ctx, c, err)
	return buf.String(), code, perr
}

func (r *ProcessRunner) skip(c Cmd) bool {
	if r.Verbose || r.DryRun {
		dir := ""
		if c.Dir != "" {
			dir = " (in " + c.Dir + ")"
		}
		fmt.Fprintf(r.stderr(), "→ %s%s\n", c, dir)
	}
	if r.DryRun && !c.Probe {
		fmt.Fprintf(r.stdout(), "  [DRY RUN] Would execute: %s\n", c)
		return true
	}
	return false
}

func (r *ProcessRunner) result(ctx context.Context, c Cmd, err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	code := 1
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		code = ee.ExitCode()
		if code < 0 {
			code = 1
		}
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		code = 124
		err = fmt.Errorf("timed out after %s: %w", c.Timeout, err)
	}
	r.Log.Debug().Strs("argv", c.Argv).Int("code", code).Msg("process failed")
	return code, &ProcessError{Argv: c.Argv, Code: code, Err: err}
}

func (r *ProcessRunner) stdout() io.Writer {
	if r.Stdout == nil {
		return os.Stdout
	}
	return r.Stdout
}

func (r *ProcessRunner) stderr() io.Writer {
	if r.Stderr == nil {
		return os.Stderr
	}
	return r.Stderr
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func mergeEnv(extra []string) []string {
	if len(extra) == 0 {
		return nil
	}
	return append(os.Environ(), extra...)
}

// envDefaults returns KEY=VALUE entries for the pairs whose key is not
// already set in the environment.
func envDefaults(pairs ...string) []string {
	var out []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if _, ok := os.LookupEnv(pairs[i]); ok {
			continue
		}
		out = append(out, pairs[i]+"="+pairs[i+1])
	}
	return out
}

// lineFilter forwards complete lines for which keep returns true.
type lineFilter struct {
	out     io.Writer
	keep    func(string) bool
	pending []byte
}

func (f *lineFilter) Write(p []byte) (int, error) {
	f.pending = append(f.pending, p...)
	for {
		i := bytes.IndexByte(f.pending, '\n')
		if i < 0 {
			break
		}
		line := f.pending[:i+1]
		if f.keep(strings.TrimRight(string(line), "\r\n")) {
			if _, err := f.out.Write(line); err != nil {
				return 0, err
			}
		}
		f.pending = f.pending[i+1:]
	}
	return len(p), nil
}

// Flush writes a trailing partial line, if any.
func (f *lineFilter) Flush() {
	if len(f.pending) == 0 {
		return
	}
	if f.keep(strings.TrimRight(string(f.pending), "\r\n")) {
		_, _ = f.out.Write(f.pending)
	}
	f.pending = nil
}
