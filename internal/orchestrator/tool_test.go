package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fabric-desk/internal/apperr"
	"fabric-desk/internal/interfaces"
)

const listing = `Available models:

OpenAI

	[1]	gpt-4o
	[2]	gpt-4o-mini

Anthropic

	[3]	claude-3-5-sonnet-latest
`

func stdout(s string) func(int, interfaces.Command) (interfaces.Result, error) {
	return func(int, interfaces.Command) (interfaces.Result, error) {
		return interfaces.Result{Started: true, Stdout: []byte(s)}, nil
	}
}

func TestToolCommands_Arguments(t *testing.T) {
	tests := []struct {
		name string
		call func(o *Orchestrator) error
		args []string
	}{
		{"set context", func(o *Orchestrator) error { _, err := o.SetContext(context.Background(), "notes"); return err }, []string{"--context=notes"}},
		{"list contexts", func(o *Orchestrator) error { _, err := o.ListContexts(context.Background()); return err }, []string{"--listcontexts"}},
		{"wipe context", func(o *Orchestrator) error { _, err := o.WipeContext(context.Background(), "notes"); return err }, []string{"--wipecontext=notes"}},
		{"print context", func(o *Orchestrator) error { _, err := o.PrintContext(context.Background(), "notes"); return err }, []string{"--printcontext=notes"}},
		{"set session", func(o *Orchestrator) error { _, err := o.SetSession(context.Background(), "s1"); return err }, []string{"--session=s1"}},
		{"list sessions", func(o *Orchestrator) error { _, err := o.ListSessions(context.Background()); return err }, []string{"--listsessions"}},
		{"output session", func(o *Orchestrator) error { _, err := o.OutputSession(context.Background()); return err }, []string{"--output-session"}},
		{"wipe session", func(o *Orchestrator) error { _, err := o.WipeSession(context.Background(), "s1"); return err }, []string{"--wipesession=s1"}},
		{"print session", func(o *Orchestrator) error { _, err := o.PrintSession(context.Background(), "s1"); return err }, []string{"--printsession=s1"}},
		{"update patterns", func(o *Orchestrator) error { _, err := o.UpdatePatterns(context.Background()); return err }, []string{"-U"}},
		{"list models", func(o *Orchestrator) error { _, err := o.ListModels(context.Background()); return err }, []string{"--listmodels"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, mirror, _, runner := newTestOrchestrator("linux")
			var flagged bool
			runner.during = func() { flagged = flagged || mirror.IsRunning() }

			require.NoError(t, tt.call(o))

			calls := runner.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, "/usr/bin/fabric", calls[0].Name)
			assert.Equal(t, tt.args, calls[0].Args)
			assert.False(t, flagged, "tool sub-commands must not toggle the running flag")
		})
	}
}

func TestToolCommands_EmptyName(t *testing.T) {
	o, _, _, runner := newTestOrchestrator("linux")

	_, err := o.WipeContext(context.Background(), "")
	assert.True(t, errors.Is(err, apperr.ErrPrecondition))
	_, err = o.PrintSession(context.Background(), "")
	assert.True(t, errors.Is(err, apperr.ErrPrecondition))
	assert.Empty(t, runner.Calls())
}

func TestListModelsAndVendors(t *testing.T) {
	o, _, _, runner := newTestOrchestrator("linux")
	runner.respond = stdout(listing)

	lines, err := o.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Available models:",
		"OpenAI",
		"[1]\tgpt-4o",
		"[2]\tgpt-4o-mini",
		"Anthropic",
		"[3]\tclaude-3-5-sonnet-latest",
	}, lines)

	vendors, err := o.ListVendors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"OpenAI", "Anthropic"}, vendors)
}

func TestListContexts_ProcessFailure(t *testing.T) {
	o, _, _, runner := newTestOrchestrator("linux")
	runner.respond = func(int, interfaces.Command) (interfaces.Result, error) {
		return interfaces.Result{Started: true, ExitCode: 1, Stderr: []byte("no contexts dir")}, errors.New("exit status 1")
	}

	_, err := o.ListContexts(context.Background())
	assert.True(t, errors.Is(err, apperr.ErrProcess))
	assert.Contains(t, err.Error(), "no contexts dir")
}

func TestParseModels(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []Model
	}{
		{
			name:  "empty",
			lines: nil,
			want:  []Model{},
		},
		{
			name:  "vendor headings",
			lines: nonEmptyLines(listing),
			want: []Model{
				{ID: 1, Name: "gpt-4o", Vendor: "OpenAI"},
				{ID: 2, Name: "gpt-4o-mini", Vendor: "OpenAI"},
				{ID: 3, Name: "claude-3-5-sonnet-latest", Vendor: "Anthropic"},
			},
		},
		{
			name:  "entries before any vendor",
			lines: []string{"[7] local-model", "[bad] skipped", "Ollama", "[8]   llama3  "},
			want: []Model{
				{ID: 7, Name: "local-model"},
				{ID: 8, Name: "llama3", Vendor: "Ollama"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseModels(tt.lines))
		})
	}
}

func TestRefreshAndCachedModels(t *testing.T) {
	dir := t.TempDir()
	o, _, _, runner := newTestOrchestrator("linux")
	runner.respond = stdout(listing)

	lines, err := o.RefreshModels(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, lines, 6)

	data, err := os.ReadFile(filepath.Join(dir, ModelsFile))
	require.NoError(t, err)
	assert.Equal(t, "# Available Models\n\nAvailable models:\nOpenAI\n[1]\tgpt-4o\n[2]\tgpt-4o-mini\nAnthropic\n[3]\tclaude-3-5-sonnet-latest", string(data))

	cached, err := CachedModels(dir)
	require.NoError(t, err)
	assert.Equal(t, []Model{
		{ID: 1, Name: "gpt-4o", Vendor: "OpenAI"},
		{ID: 2, Name: "gpt-4o-mini", Vendor: "OpenAI"},
		{ID: 3, Name: "claude-3-5-sonnet-latest", Vendor: "Anthropic"},
	}, cached)
}

func TestCachedModels_Missing(t *testing.T) {
	_, err := CachedModels(t.TempDir())
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
