package docker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/devcgo/devc/internal/provider"
)

// Runner executes engine commands. The default runner spawns real
// processes; tests substitute a scripted one.
type Runner interface {
	Run(ctx context.Context, program string, args ...string) (CommandOutput, error)
}

// CommandOutput is the captured result of one engine invocation. A
// non-zero exit is not an error at this layer; classification happens in
// the provider.
type CommandOutput struct {
	// Command is the full command line, for diagnostics
	Command string

	ExitCode int
	Stdout   string
	Stderr   string

	// TimedOut marks a process terminated by the context deadline
	TimedOut bool
}

// Success reports a clean zero exit.
func (o CommandOutput) Success() bool {
	return o.ExitCode == 0 && !o.TimedOut
}

// absent reports whether stderr matches one of the engine's benign
// "resource does not exist" messages.
func (o CommandOutput) absent() bool {
	stderr := strings.ToLower(o.Stderr)
	for _, pattern := range []string{
		"no such container",
		"no such network",
		"no such volume",
		"no such image",
		"is not running",
	} {
		if strings.Contains(stderr, pattern) {
			return true
		}
	}
	return false
}

// osRunner executes real engine commands via exec.CommandContext.
type osRunner struct{}

func (osRunner) Run(ctx context.Context, program string, args ...string) (CommandOutput, error) {
	cmd := exec.CommandContext(ctx, program, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := CommandOutput{
		Command: formatCommand(program, args),
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
	}

	if err == nil {
		return out, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		out.TimedOut = ctx.Err() != nil
		return out, nil
	}

	return CommandOutput{}, fmt.Errorf("failed to spawn %q: %w", out.Command, err)
}

// engineCLI wraps one resolved engine binary and a runner.
type engineCLI struct {
	program string
	runner  Runner
}

// newEngineCLI resolves the engine binary once: bare command names are
// looked up on the search path, explicit paths are taken as-is.
func newEngineCLI(command string, runner Runner) (*engineCLI, error) {
	program := command
	if !strings.ContainsAny(command, `/\`) {
		resolved, err := exec.LookPath(command)
		if err != nil {
			return nil, &provider.Error{
				Message: fmt.Sprintf("failed to locate engine binary %q: %v", command, err),
			}
		}
		program = resolved
	}
	return &engineCLI{program: program, runner: runner}, nil
}

func (c *engineCLI) run(ctx context.Context, args ...string) (CommandOutput, error) {
	out, err := c.runner.Run(ctx, c.program, args...)
	if err != nil {
		return CommandOutput{}, &provider.Error{Message: err.Error()}
	}
	return out, nil
}

// runExpectSuccess runs the command and converts any non-zero exit into a
// provider error carrying the command line, exit code, and stderr.
func (c *engineCLI) runExpectSuccess(ctx context.Context, args ...string) (CommandOutput, error) {
	out, err := c.run(ctx, args...)
	if err != nil {
		return CommandOutput{}, err
	}
	if out.Success() {
		return out, nil
	}
	return CommandOutput{}, commandError("engine command failed", out)
}

// verify checks the engine daemon is reachable.
func (c *engineCLI) verify(ctx context.Context) error {
	out, err := c.run(ctx, "version", "--format", "{{.Server.Version}}")
	if err != nil {
		return err
	}
	if !out.Success() {
		return commandError("engine unreachable", out)
	}
	return nil
}

func commandError(message string, out CommandOutput) *provider.Error {
	return &provider.Error{
		Message:  message,
		Command:  out.Command,
		ExitCode: out.ExitCode,
		Stderr:   strings.TrimSpace(out.Stderr),
		Timeout:  out.TimedOut,
	}
}

func formatCommand(program string, args []string) string {
	if len(args) == 0 {
		return program
	}
	return program + " " + strings.Join(args, " ")
}
