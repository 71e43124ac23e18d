package toolrun

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds every external tool invocation.
const DefaultTimeout = 300 * time.Second

// CommandRunner abstracts external command execution for testability.
type CommandRunner interface {
	Run(ctx context.Context, dir string, argv []string) (stdout string, stderr string, exitCode int, err error)
}

// ExecRunner implements CommandRunner by spawning the process directly.
type ExecRunner struct{}

func (e *ExecRunner) Run(ctx context.Context, dir string, argv []string) (string, string, int, error) {
	if len(argv) == 0 {
		return "", "", -1, fmt.Errorf("empty argv")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir

	var stdoutBuf, stderrBuf strings.Builder
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return stdoutBuf.String(), stderrBuf.String(), -1, fmt.Errorf("exec %s: %w", argv[0], err)
		}
	}
	return stdoutBuf.String(), stderrBuf.String(), exitCode, nil
}

// Outcome is the result of one bounded tool invocation. Timeouts and spawn
// failures are folded in as OK=false with the error text in Stderr; callers
// never see them as errors.
type Outcome struct {
	OK     bool
	Stdout string
	Stderr string
}

// ErrorText returns stderr, falling back to stdout when stderr is empty.
// This mirrors how validation tools report: linters write findings to
// stdout, hard failures to stderr.
func (o Outcome) ErrorText() string {
	if s := strings.TrimSpace(o.Stderr); s != "" {
		return o.Stderr
	}
	return o.Stdout
}

// Invoker runs external tools through a CommandRunner with a fixed timeout.
type Invoker struct {
	cmd     CommandRunner
	timeout time.Duration
}

// NewInvoker creates an Invoker. A zero or negative timeout falls back to
// DefaultTimeout.
func NewInvoker(cmd CommandRunner, timeout time.Duration) *Invoker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Invoker{cmd: cmd, timeout: timeout}
}

// Exec runs argv in dir and reports whether it exited zero. Pass "" for dir
// to run in the current directory.
func (iv *Invoker) Exec(dir string, argv ...string) Outcome {
	ctx, cancel := context.WithTimeout(context.Background(), iv.timeout)
	defer cancel()

	stdout, stderr, exitCode, err := iv.cmd.Run(ctx, dir, argv)
	// A context-killed process comes back as a plain non-zero exit, not an
	// error, so the deadline check cannot hide behind err != nil.
	if ctx.Err() == context.DeadlineExceeded {
		return Outcome{OK: false, Stdout: stdout, Stderr: fmt.Sprintf("timeout after %s", iv.timeout)}
	}
	if err != nil {
		return Outcome{OK: false, Stdout: stdout, Stderr: err.Error()}
	}
	return Outcome{OK: exitCode == 0, Stdout: stdout, Stderr: stderr}
}
