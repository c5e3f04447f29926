package gotest

// This file contains discovery and execution of `go test` for the
// packages under test. Execution always uses -json so results can be
// consumed as a stream of events.

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"al.essio.dev/pkg/shellescape"
	"github.com/rs/zerolog"
)

// Runner executes `go test` and streams its events.
type Runner struct {
	logger zerolog.Logger
}

// NewRunner creates a runner logging through the given logger.
func NewRunner(logger zerolog.Logger) *Runner {
	return &Runner{logger: logger}
}

// List discovers the tests in the given packages without running them,
// returning their identifiers ("<package>.<TestName>").
func (r *Runner) List(ctx context.Context, packages []string) ([]string, error) {
	args := append([]string{"test", "-json", "-list", ".*"}, packages...)
	r.logger.Debug().Str("cmd", quoteGoCommand(args)).Msg("Discovering tests")

	cmd := exec.CommandContext(ctx, "go", args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting go test -list: %w", err)
	}

	var tests []string
	parseErr := ParseStream(stdout, func(ev Event) error {
		if ev.Action != ActionOutput {
			return nil
		}
		name := strings.TrimSpace(ev.Output)
		if isTestName(name) {
			tests = append(tests, ev.Package+"."+name)
		}
		return nil
	})

	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("go test -list failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if parseErr != nil {
		return nil, parseErr
	}
	return tests, nil
}

// Run executes `go test -json` for the given packages, invoking fn for
// every event. The exit code of the go test invocation is returned;
// test failures are an expected non-zero exit, not an execution error.
func (r *Runner) Run(ctx context.Context, packages []string, extraArgs []string, fn func(Event) error) (int, error) {
	args := append([]string{"test", "-json"}, extraArgs...)
	args = append(args, packages...)
	r.logger.Info().Str("cmd", quoteGoCommand(args)).Msg("Running tests")

	cmd := exec.CommandContext(ctx, "go", args...)
	cmd.Stderr = os.Stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, fmt.Errorf("creating stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("starting go test: %w", err)
	}

	parseErr := ParseStream(stdout, fn)

	if err := cmd.Wait(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			r.logger.Info().
				Int("exit_code", exitErr.ExitCode()).
				Msg("Tests completed with failures")
			return exitErr.ExitCode(), parseErr
		}
		return 0, fmt.Errorf("failed to execute go test: %w", err)
	}
	if parseErr != nil {
		return 0, parseErr
	}

	r.logger.Info().Msg("Tests completed successfully")
	return 0, nil
}

func quoteGoCommand(args []string) string {
	parts := []string{"go"}
	for _, arg := range args {
		parts = append(parts, shellescape.Quote(arg))
	}
	return strings.Join(parts, " ")
}
