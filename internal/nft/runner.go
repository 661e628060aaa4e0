package nft

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds both introspection queries and mutation
// directives. The engine normally answers in milliseconds; anything
// slower indicates a wedged netlink socket.
const DefaultTimeout = 30 * time.Second

// Result captures one command invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner abstracts external command execution. Implementations receive
// already-tokenized argument vectors, never shell strings.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
	RunInput(ctx context.Context, input string, name string, args ...string) (Result, error)
}

// ExecRunner executes actual commands via os/exec.
type ExecRunner struct{}

// DefaultRunner is the runner used outside tests.
var DefaultRunner Runner = &ExecRunner{}

// Run executes a command and captures exit code, stdout and stderr.
// A non-zero exit is reported in the Result, not as an error; the error
// return covers start failures and context expiry.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	return r.run(ctx, "", name, args...)
}

// RunInput executes a command feeding input via stdin.
func (r *ExecRunner) RunInput(ctx context.Context, input string, name string, args ...string) (Result, error) {
	return r.run(ctx, input, name, args...)
}

func (r *ExecRunner) run(ctx context.Context, input, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err == nil {
		return res, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, err
}
