package orchestrator

import (
	"context"
	"strings"

	"fabric-desk/internal/apperr"
	"fabric-desk/internal/interfaces"
)

// Tool flags for the plain sub-commands.
const (
	flagListModels    = "--listmodels"
	flagListContexts  = "--listcontexts"
	flagListSessions  = "--listsessions"
	flagOutputSession = "--output-session"
	flagUpdate        = "-U"
)

// RunTool invokes the tool with args and returns its decoded stdout. Unlike
// Run it does not touch the running flag.
func (o *Orchestrator) RunTool(ctx context.Context, args ...string) (string, error) {
	bin, err := o.resolver.Path()
	if err != nil {
		return "", err
	}
	cmd := interfaces.Command{Name: bin, Args: args}
	res, err := o.exec(ctx, cmd)
	return finish(cmd, res, err)
}

func (o *Orchestrator) runNamed(ctx context.Context, what, flag, name string) (string, error) {
	if name == "" {
		return "", apperr.Precondition(what+" name cannot be empty", "")
	}
	return o.RunTool(ctx, flag+"="+name)
}

// ListModels returns the trimmed, non-empty lines of --listmodels.
func (o *Orchestrator) ListModels(ctx context.Context) ([]string, error) {
	out, err := o.RunTool(ctx, flagListModels)
	if err != nil {
		return nil, err
	}
	return nonEmptyLines(out), nil
}

// ListVendors returns the vendor headings of --listmodels.
func (o *Orchestrator) ListVendors(ctx context.Context) ([]string, error) {
	lines, err := o.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	return vendorLines(lines), nil
}

// SetContext selects a context in the tool.
func (o *Orchestrator) SetContext(ctx context.Context, name string) (string, error) {
	return o.runNamed(ctx, "context", "--context", name)
}

// ListContexts returns the context names the tool knows about.
func (o *Orchestrator) ListContexts(ctx context.Context) ([]string, error) {
	out, err := o.RunTool(ctx, flagListContexts)
	if err != nil {
		return nil, err
	}
	return nonEmptyLines(out), nil
}

// WipeContext clears a context through the tool.
func (o *Orchestrator) WipeContext(ctx context.Context, name string) (string, error) {
	return o.runNamed(ctx, "context", "--wipecontext", name)
}

// PrintContext prints a context through the tool.
func (o *Orchestrator) PrintContext(ctx context.Context, name string) (string, error) {
	return o.runNamed(ctx, "context", "--printcontext", name)
}

// SetSession selects a session in the tool.
func (o *Orchestrator) SetSession(ctx context.Context, name string) (string, error) {
	return o.runNamed(ctx, "session", "--session", name)
}

// ListSessions returns the session names the tool knows about.
func (o *Orchestrator) ListSessions(ctx context.Context) ([]string, error) {
	out, err := o.RunTool(ctx, flagListSessions)
	if err != nil {
		return nil, err
	}
	return nonEmptyLines(out), nil
}

// OutputSession prints the output of the current session.
func (o *Orchestrator) OutputSession(ctx context.Context) (string, error) {
	return o.RunTool(ctx, flagOutputSession)
}

// WipeSession clears a session through the tool.
func (o *Orchestrator) WipeSession(ctx context.Context, name string) (string, error) {
	return o.runNamed(ctx, "session", "--wipesession", name)
}

// PrintSession prints a session through the tool.
func (o *Orchestrator) PrintSession(ctx context.Context, name string) (string, error) {
	return o.runNamed(ctx, "session", "--printsession", name)
}

// UpdatePatterns asks the tool to download the latest patterns.
func (o *Orchestrator) UpdatePatterns(ctx context.Context) (string, error) {
	return o.RunTool(ctx, flagUpdate)
}

func nonEmptyLines(s string) []string {
	lines := []string{}
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func vendorLines(lines []string) []string {
	vendors := []string{}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "[") || strings.HasPrefix(line, "Available models:") {
			continue
		}
		vendors = append(vendors, line)
	}
	return vendors
}
