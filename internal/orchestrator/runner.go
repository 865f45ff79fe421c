package orchestrator

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"fabric-desk/internal/interfaces"
)

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// NewExecRunner creates the default command runner
func NewExecRunner() interfaces.CommandRunner {
	return &ExecRunner{}
}

// Run implements interfaces.CommandRunner.
func (r *ExecRunner) Run(ctx context.Context, cmd interfaces.Command) (interfaces.Result, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if cmd.Stdin != "" {
		c.Stdin = strings.NewReader(cmd.Stdin)
	}

	if err := c.Start(); err != nil {
		return interfaces.Result{ExitCode: -1}, err
	}
	err := c.Wait()

	res := interfaces.Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Started:  true,
		ExitCode: c.ProcessState.ExitCode(),
	}
	return res, err
}
