package executor

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/pylon/pkg/errors"
	"github.com/arthur-debert/pylon/pkg/logging"
	"github.com/arthur-debert/pylon/pkg/paths"
	"github.com/arthur-debert/pylon/pkg/rules"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single shell operation's wall-clock runtime
const DefaultTimeout = 5 * time.Minute

// Options contains configuration for the executor
type Options struct {
	// Timeout applies per shell operation; zero means DefaultTimeout
	Timeout time.Duration

	// Logger overrides the default component logger
	Logger *zerolog.Logger
}

// Executor runs rule operation lists against resolved asset requests
type Executor struct {
	timeout time.Duration
	logger  zerolog.Logger
}

// New creates a new executor instance
func New(opts Options) *Executor {
	logger := logging.GetLogger("executor")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Executor{
		timeout: timeout,
		logger:  logger,
	}
}

// Run executes the rule's operations for one resolved asset. The
// scratch directory is removed before Run returns, on every exit path.
// A run that finishes without producing the target is an error, not a
// silent success.
func (e *Executor) Run(ctx context.Context, rctx *paths.ResolutionContext, rule *rules.Rule) error {
	defer func() {
		if err := rctx.Cleanup(); err != nil {
			e.logger.Warn().
				Err(err).
				Str("scratchDir", rctx.ScratchDir).
				Msg("Failed to remove scratch directory")
		}
	}()

	if err := os.MkdirAll(filepath.Dir(rctx.TargetPath), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrTargetWrite,
			"failed to create parent directories for target %q", rctx.TargetPath)
	}

	for i, op := range rule.Ops {
		position := i + 1

		var err error
		switch op.Kind {
		case rules.OpCopy:
			err = e.runCopy(rctx)
		case rules.OpShell:
			err = e.runShell(ctx, rctx, op, position)
		}
		if err != nil {
			e.logger.Error().
				Err(err).
				Str("uri", rctx.URI).
				Str("rule", rule.Name).
				Int("position", position).
				Msg("Pipeline operation failed")
			return err
		}
	}

	if _, err := os.Stat(rctx.TargetPath); err != nil {
		return errors.Newf(errors.ErrTargetNotProduced,
			"rule %q completed but did not produce target %q", rule.Name, rctx.TargetPath).
			WithDetail("uri", rctx.URI).
			WithDetail("rule", rule.Name).
			WithDetail("target", rctx.TargetPath)
	}

	e.logger.Debug().
		Str("uri", rctx.URI).
		Str("rule", rule.Name).
		Str("target", rctx.TargetPath).
		Msg("Asset produced")

	return nil
}

// runCopy copies the resolved source to the target location
func (e *Executor) runCopy(rctx *paths.ResolutionContext) error {
	if _, err := os.Stat(rctx.SourcePath); err != nil {
		return errors.Wrapf(err, errors.ErrSourceMissing,
			"copy source %q does not exist", rctx.SourcePath).
			WithDetail("uri", rctx.URI).
			WithDetail("source", rctx.SourcePath)
	}

	e.logger.Trace().
		Str("source", rctx.SourcePath).
		Str("target", rctx.TargetPath).
		Msg("Builtin copy")

	src, err := os.Open(rctx.SourcePath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrSourceMissing,
			"failed to open copy source %q", rctx.SourcePath)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(rctx.TargetPath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrTargetWrite,
			"failed to create copy target %q", rctx.TargetPath)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return errors.Wrapf(err, errors.ErrTargetWrite,
			"failed to copy %q -> %q", rctx.SourcePath, rctx.TargetPath)
	}
	if err := dst.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrTargetWrite,
			"failed to finish copy target %q", rctx.TargetPath)
	}

	return nil
}

// runShell substitutes tokens and runs one command through the platform
// shell, with the rule's resolved working directory
func (e *Executor) runShell(ctx context.Context, rctx *paths.ResolutionContext, op rules.Operation, position int) error {
	command := substituteTokens(op.Command, rctx)

	e.logger.Debug().
		Str("command", command).
		Str("workingDir", rctx.WorkingDir).
		Int("position", position).
		Msg("Running shell operation")

	opCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(opCtx, "sh", "-c", command)
	cmd.Dir = rctx.WorkingDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	if opCtx.Err() == context.DeadlineExceeded {
		return errors.Wrapf(err, errors.ErrTimeout,
			"pipeline command %d timed out after %s: %s", position, e.timeout, command).
			WithDetail("uri", rctx.URI).
			WithDetail("commandIndex", position).
			WithDetail("command", command)
	}

	exitCode := -1
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	}

	return errors.Wrapf(err, errors.ErrShellExit,
		"pipeline command %d exited with status %d: %s", position, exitCode, command).
		WithDetail("uri", rctx.URI).
		WithDetail("commandIndex", position).
		WithDetail("command", command).
		WithDetail("exitCode", exitCode).
		WithDetail("stderr", strings.TrimSpace(stderr.String()))
}

// substituteTokens expands $SOURCE, $TARGET, and $SCRATCH with absolute
// paths. Any other $-prefixed token passes through unchanged so that
// shell-native variables keep working.
func substituteTokens(command string, rctx *paths.ResolutionContext) string {
	return strings.NewReplacer(
		"$SOURCE", rctx.SourcePath,
		"$TARGET", rctx.TargetPath,
		"$SCRATCH", rctx.ScratchFile,
	).Replace(command)
}
