package interfaces

import "context"

// Command is a single child-process invocation.
type Command struct {
	Name  string
	Args  []string
	Stdin string
}

// Result is what a child process left behind.
type Result struct {
	Stdout []byte
	Stderr []byte
	// Started is false when the process could not be spawned at all.
	Started  bool
	ExitCode int
}

// CommandRunner spawns child processes
type CommandRunner interface {
	// Run starts cmd, waits for it and captures its output. The error is
	// non-nil when the process could not start, could not be waited on, or
	// exited with a non-zero status.
	Run(ctx context.Context, cmd Command) (Result, error)
}
