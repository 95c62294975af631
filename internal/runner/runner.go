// Package runner launches external programs (git, cargo, ...) and turns their
// exit status into a single error value the installer can propagate.
package runner

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"mclang-up/internal/logger"
)

// OutputMode selects what happens to a child's stdout and stderr.
type OutputMode int

const (
	// ModeCapture buffers the child's output; it is only shown if the command fails.
	ModeCapture OutputMode = iota
	// ModeInherit connects the child's output to the runner's own streams.
	ModeInherit
)

func (m OutputMode) String() string {
	if m == ModeInherit {
		return "inherit"
	}
	return "capture"
}

// ModeFor returns ModeInherit in verbose mode and ModeCapture otherwise.
func ModeFor(verbose bool) OutputMode {
	if verbose {
		return ModeInherit
	}
	return ModeCapture
}

// Invocation describes one process launch.
type Invocation struct {
	Program string
	Args    []string
	Dir     string
	Mode    OutputMode
}

// CommandLine renders the program and its arguments separated by spaces.
func (inv Invocation) CommandLine() string {
	return strings.TrimSpace(inv.Program + " " + strings.Join(inv.Args, " "))
}

// Outcome is what a finished process left behind.
// ExitCode is -1 when the process was terminated by a signal.
type Outcome struct {
	ExitCode int
	Signaled bool
	Signal   string
	Stdout   []byte
	Stderr   []byte
}

// Success reports whether the process exited normally with code 0.
func (o *Outcome) Success() bool {
	return o != nil && !o.Signaled && o.ExitCode == 0
}

// Runner runs an invocation to completion.
type Runner interface {
	Run(inv Invocation) error
}

// ProcessRunner runs invocations as child processes of the current program.
// Calls block until the child exits; there is no timeout.
type ProcessRunner struct {
	log *logger.Logger

	// Stdout and Stderr receive the child's streams in ModeInherit.
	Stdout io.Writer
	Stderr io.Writer
}

// New creates a ProcessRunner inheriting the current process's stdout and stderr.
func New(log *logger.Logger) *ProcessRunner {
	return &ProcessRunner{
		log:    log,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run executes inv and returns nil only if it exited with code 0.
func (r *ProcessRunner) Run(inv Invocation) error {
	_, err := r.Exec(inv)
	return err
}

// Exec executes inv and returns its outcome. Any failure is reported through the
// logger and returned as an *ExecError; the outcome is nil only on spawn failure.
func (r *ProcessRunner) Exec(inv Invocation) (*Outcome, error) {
	if r.log.Verbose() {
		r.log.Cmd("Running '%s' in %s", inv.CommandLine(), inv.Dir)
	}

	// Build the command; the program is resolved through PATH
	cmd := exec.Command(inv.Program, inv.Args...)
	cmd.Dir = inv.Dir

	// Either hand the terminal to the child or keep its output for the failure report
	var stdout, stderr bytes.Buffer
	switch inv.Mode {
	case ModeInherit:
		cmd.Stdout = r.Stdout
		cmd.Stderr = r.Stderr
	default:
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	// A program that cannot be started never produces an outcome
	if err := cmd.Start(); err != nil {
		r.log.Error("Could not start '%s': %v", inv.Program, err)
		return nil, &ExecError{Kind: KindSpawn, Invocation: inv, Err: err}
	}

	waitErr := cmd.Wait()
	outcome := &Outcome{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	// Classify the exit: clean, non-zero code, or killed by a signal
	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
		outcome.ExitCode = 0
	case errors.As(waitErr, &exitErr):
		outcome.ExitCode = exitErr.ExitCode()
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			outcome.Signaled = true
			outcome.Signal = ws.Signal().String()
		} else if outcome.ExitCode == -1 {
			outcome.Signaled = true
		}
	default:
		// Wait failed for a reason other than the exit status, e.g. copying output.
		r.log.Error("Waiting for '%s' failed: %v", inv.Program, waitErr)
		return outcome, &ExecError{Kind: KindSpawn, Invocation: inv, Outcome: outcome, Err: waitErr}
	}

	if outcome.Success() {
		if r.log.Verbose() {
			r.log.Info("Exited with status code: 0")
		}
		return outcome, nil
	}

	// Show what the process printed before saying how it ended
	r.report(outcome)
	kind := KindExit
	if outcome.Signaled {
		kind = KindSignal
	}
	return outcome, &ExecError{Kind: kind, Invocation: inv, Outcome: outcome, Err: waitErr}
}

// report logs the captured output of a failed process followed by its exit condition.
func (r *ProcessRunner) report(o *Outcome) {
	if out := decode(o.Stdout); out != "" {
		r.log.Info("STDOUT:\n%s", logger.CodeBlock(out))
	}
	if out := decode(o.Stderr); out != "" {
		r.log.Info("STDERR:\n%s", logger.CodeBlock(out))
	}
	if o.Signaled {
		if o.Signal != "" {
			r.log.Info("Process terminated by signal: %s", o.Signal)
		} else {
			r.log.Info("Process terminated by signal")
		}
		return
	}
	r.log.Info("Exited with status code: %d", o.ExitCode)
}

// decode turns captured bytes into text, replacing invalid UTF-8 sequences.
func decode(b []byte) string {
	return strings.TrimRight(strings.ToValidUTF8(string(b), "\uFFFD"), "\r\n")
}

// Kind classifies why an invocation failed.
type Kind int

const (
	// KindSpawn means the program could not be started at all.
	KindSpawn Kind = iota
	// KindExit means the program ran and exited with a non-zero code.
	KindExit
	// KindSignal means the program was terminated by a signal.
	KindSignal
)

func (k Kind) String() string {
	switch k {
	case KindSpawn:
		return "spawn"
	case KindExit:
		return "exit"
	case KindSignal:
		return "signal"
	default:
		return "unknown"
	}
}

// ExecError is returned for every failed invocation.
type ExecError struct {
	Kind       Kind
	Invocation Invocation
	Outcome    *Outcome
	Err        error
}

func (e *ExecError) Error() string {
	switch e.Kind {
	case KindSpawn:
		return fmt.Sprintf("failed to run '%s': %v", e.Invocation.CommandLine(), e.Err)
	case KindSignal:
		if e.Outcome != nil && e.Outcome.Signal != "" {
			return fmt.Sprintf("'%s' terminated by signal %s", e.Invocation.CommandLine(), e.Outcome.Signal)
		}
		return fmt.Sprintf("'%s' terminated by signal", e.Invocation.CommandLine())
	default:
		return fmt.Sprintf("'%s' exited with status code %d", e.Invocation.CommandLine(), e.Outcome.ExitCode)
	}
}

func (e *ExecError) Unwrap() error {
	return e.Err
}
