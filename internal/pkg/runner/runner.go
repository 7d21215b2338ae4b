package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	clog "github.com/ibm-mas/image-set-configs/internal/pkg/log"
	"github.com/ibm-mas/image-set-configs/internal/pkg/stream"
)

// ErrToolNotFound - the external binary is not installed or not on PATH.
// Surfaced before any stream is read; there is no partial result to report.
var ErrToolNotFound = errors.New("tool not installed")

// Outcome is the final mirrored/total count parsed from tool output.
// The tool may report inconsistent numbers; consumers treat anything
// other than a matching non-zero pair as a failure, never a panic.
type Outcome struct {
	Images   int
	Mirrored int
}

// Succeeded - true when every expected image was mirrored.
func (o Outcome) Succeeded() bool {
	return o.Images != 0 && o.Images == o.Mirrored
}

// RunResult is constructed only after the process has exited AND both
// output streams have been fully drained. Parsed distinguishes "the tool
// reported zero images" from "we never saw a progress report at all".
type RunResult struct {
	ExitCode int
	Outcome  Outcome
	Parsed   bool
}

// CommandRunner owns the child-process lifecycle: spawn with captured
// pipes, drain through the stream Coordinator, wait, combine exit code
// and accumulator into a RunResult.
type CommandRunner struct {
	Log  clog.PluggableLoggerInterface
	Sink clog.PluggableLoggerInterface
}

func New(log, sink clog.PluggableLoggerInterface) *CommandRunner {
	return &CommandRunner{Log: log, Sink: sink}
}

// Run executes argv, streaming both outputs through the classifier. tick
// (may be nil) is invoked once per observed per-image completion. A
// nonzero exit always yields a zero Outcome, whatever was parsed.
func (o *CommandRunner) Run(ctx context.Context, argv []string, tick stream.TickFunc) (RunResult, error) {
	if len(argv) == 0 {
		return RunResult{ExitCode: 1}, errors.New("empty command")
	}
	if _, err := exec.LookPath(argv[0]); err != nil {
		return RunResult{ExitCode: 1}, fmt.Errorf("%w: %s", ErrToolNotFound, argv[0])
	}

	o.Log.Info("executing: %s", strings.Join(argv, " "))

	// nolint:gosec // argv is assembled from validated route fields
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return RunResult{ExitCode: 1}, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return RunResult{ExitCode: 1}, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return RunResult{ExitCode: 1}, fmt.Errorf("starting %s: %w", argv[0], err)
	}

	acc := &stream.Accumulator{}
	coordinator := stream.NewCoordinator(o.Log, o.Sink, acc, tick)

	// Drain returns only once both pipes hit end-of-stream; Wait then
	// reaps the process. Both must complete before the result exists:
	// a process can exit while its pipe buffers still hold final lines.
	coordinator.Drain(stdout, stderr)

	exitCode := 0
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return RunResult{ExitCode: 1}, fmt.Errorf("waiting for %s: %w", argv[0], err)
		}
	}

	if exitCode != 0 {
		o.Log.Error("command failed with exit code %d", exitCode)
		return RunResult{ExitCode: exitCode}, nil
	}

	mirrored, images, seen := acc.Snapshot()
	return RunResult{
		ExitCode: 0,
		Outcome:  Outcome{Images: images, Mirrored: mirrored},
		Parsed:   seen,
	}, nil
}

// RunCaptured executes argv buffering combined output instead of streaming
// it, for short housekeeping commands such as the CASE manifest fetch.
func (o *CommandRunner) RunCaptured(ctx context.Context, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", errors.New("empty command")
	}
	if _, err := exec.LookPath(argv[0]); err != nil {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, argv[0])
	}

	o.Log.Info("executing: %s", strings.Join(argv, " "))

	var buf bytes.Buffer
	// nolint:gosec // argv is assembled from validated route fields
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		return buf.String(), fmt.Errorf("running %s: %w", argv[0], err)
	}
	return buf.String(), nil
}
