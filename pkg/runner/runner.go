package runner

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"

	"golang.org/x/xerrors"
)

// Result is the outcome of a finished external command.
type Result struct {
	Stdout   []byte
	ExitCode int
}

// Runner runs external commands such as `lftp` and `mvn`.
// A non-zero exit status is reported in Result, not as an error.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
	LookPath(name string) (string, error)
}

var _ Runner = OSRunner{}

// OSRunner runs commands with os/exec. Stderr is passed through to the process stderr.
type OSRunner struct{}

func (OSRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr

	slog.Debug("Running external command", slog.String("command", name), slog.Any("args", args))
	err := cmd.Run()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Result{
			Stdout:   stdout.Bytes(),
			ExitCode: exitErr.ExitCode(),
		}, nil
	} else if err != nil {
		return Result{}, xerrors.Errorf("unable to run %s: %w", name, err)
	}
	return Result{Stdout: stdout.Bytes()}, nil
}

func (OSRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
