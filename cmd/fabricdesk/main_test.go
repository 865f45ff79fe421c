package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"fabric-desk/internal/app"
	"fabric-desk/internal/config"
	"fabric-desk/internal/interactive"
	"fabric-desk/internal/interfaces"
	"fabric-desk/internal/store"
	"fabric-desk/internal/toolpath"
	"fabric-desk/pkg/models"
)

func newRunFlags() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().String("url", "", "")
	cmd.Flags().String("question", "", "")
	cmd.Flags().Bool("clipboard", false, "")
	cmd.Flags().String("text", "", "")
	cmd.Flags().String("pattern", "", "")
	cmd.Flags().String("context", "", "")
	cmd.Flags().String("session", "", "")
	return cmd
}

func TestBuildRunRequest(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		flags    map[string]string
		expected models.RunRequest
		wantErr  bool
	}{
		{
			name:  "url",
			flags: map[string]string{"url": "https://example.com", "pattern": "summarize"},
			expected: models.RunRequest{
				Strategy: models.StrategyDirect,
				Source:   models.SourceURL,
				Flag:     "-u",
				Input:    "https://example.com",
				Pattern:  "summarize",
			},
		},
		{
			name:  "question with session",
			flags: map[string]string{"question": "why?", "session": "s1"},
			expected: models.RunRequest{
				Strategy: models.StrategyDirect,
				Source:   models.SourceQuestion,
				Flag:     "-q",
				Input:    "why?",
				Session:  "s1",
			},
		},
		{
			name:  "clipboard",
			flags: map[string]string{"clipboard": "true", "context": "work"},
			expected: models.RunRequest{
				Strategy: models.StrategyClipboard,
				Source:   models.SourceClipboard,
				Context:  "work",
			},
		},
		{
			name: "positional text",
			args: []string{"some notes"},
			expected: models.RunRequest{
				Strategy: models.StrategyDirect,
				Source:   models.SourceText,
				Input:    "some notes",
			},
		},
		{
			name:    "no source",
			wantErr: true,
		},
		{
			name:    "two sources",
			flags:   map[string]string{"url": "https://example.com", "clipboard": "true"},
			wantErr: true,
		},
		{
			name:    "flag and positional",
			args:    []string{"text"},
			flags:   map[string]string{"question": "q"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRunFlags()
			for flag, value := range tt.flags {
				if err := cmd.Flags().Set(flag, value); err != nil {
					t.Fatalf("set %s: %v", flag, err)
				}
			}

			got, err := buildRunRequest(cmd, tt.args)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("got %+v, want %+v", got, tt.expected)
			}
		})
	}
}

type stubRunner struct {
	mu    sync.Mutex
	calls []interfaces.Command
	out   string
}

func (r *stubRunner) Run(_ context.Context, cmd interfaces.Command) (interfaces.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, cmd)
	return interfaces.Result{Started: true, Stdout: []byte(r.out)}, nil
}

// useTestApp points buildApp at a temporary fabric directory and a stub
// runner for the duration of the test.
func useTestApp(t *testing.T, output string) (*stubRunner, string) {
	t.Helper()

	toolDir := t.TempDir()
	t.Setenv(config.EnvConfigDir, toolDir)
	t.Setenv(toolpath.EnvBinPath, "")

	bin := filepath.Join(t.TempDir(), "fabric")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	runner := &stubRunner{out: "tool output"}
	cfg := &interfaces.Config{ToolPath: bin, LogLevel: "error", Output: output}

	previous := buildApp
	buildApp = func(cmd *cobra.Command) (*app.App, error) {
		return app.New(cfg,
			app.WithRunner(runner),
			app.WithStdout(cmd.OutOrStdout()),
			app.WithLogger(zap.NewNop()),
			app.WithPrompter(interactive.NewPlainPrompter(strings.NewReader(""), &bytes.Buffer{})),
		)
	}
	t.Cleanup(func() { buildApp = previous })
	return runner, toolDir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConfigSetAndGet(t *testing.T) {
	_, toolDir := useTestApp(t, config.OutputTable)

	if _, err := execute(t, "config", "set", "OPENAI_API_KEY", "sk-123456"); err != nil {
		t.Fatalf("set: %v", err)
	}
	out, err := execute(t, "config", "get", "OPENAI_API_KEY")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out != "sk-123456\n" {
		t.Errorf("get printed %q", out)
	}

	data, err := os.ReadFile(filepath.Join(toolDir, store.FileName))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "OPENAI_API_KEY=sk-123456\n" {
		t.Errorf(".env = %q", data)
	}
}

func TestConfigSet_NoValueWithoutTerminal(t *testing.T) {
	useTestApp(t, config.OutputTable)

	_, err := execute(t, "config", "set", "GROQ_API_KEY")
	if err == nil || !strings.Contains(err.Error(), "no terminal") {
		t.Errorf("expected a no-terminal error, got %v", err)
	}
}

func TestRunCommand(t *testing.T) {
	runner, toolDir := useTestApp(t, config.OutputTable)
	if err := os.WriteFile(filepath.Join(toolDir, store.FileName), []byte("CURRENT_CONTEXT=work\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "run", "--url", "https://example.com", "--pattern", "summarize")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "tool output\n" {
		t.Errorf("run printed %q", out)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("expected one process, got %d", len(runner.calls))
	}

	args := runner.calls[0].Args
	if strings.Join(args[:4], " ") != "-u https://example.com --pattern summarize" {
		t.Errorf("unexpected args %v", args)
	}
	if args[len(args)-1] != "--context=work" {
		t.Errorf("current context not applied: %v", args)
	}
}

func TestPatternSelectPersists(t *testing.T) {
	_, toolDir := useTestApp(t, config.OutputTable)
	if err := os.MkdirAll(filepath.Join(toolDir, "patterns", "summarize"), 0o755); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "pattern", "select", "summarize"); err != nil {
		t.Fatalf("select: %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(toolDir, store.FileName))
	if string(data) != "DEFAULT_PATTERN=summarize\n" {
		t.Errorf(".env = %q", data)
	}
}

func TestPatternLoaderListsLoaderKeysOnly(t *testing.T) {
	_, toolDir := useTestApp(t, config.OutputTable)
	env := "OPENAI_API_KEY=sk-secret\n" +
		"PATTERNS_LOADER_GIT_REPO_URL=https://github.com/danielmiessler/fabric.git\n" +
		"PATTERNS_LOADER_GIT_REPO_PATTERNS_FOLDER=patterns\n"
	if err := os.WriteFile(filepath.Join(toolDir, store.FileName), []byte(env), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "pattern", "loader")
	if err != nil {
		t.Fatalf("loader: %v", err)
	}
	for _, want := range []string{"PATTERNS_LOADER_GIT_REPO_URL", "https://github.com/danielmiessler/fabric.git", "PATTERNS_LOADER_GIT_REPO_PATTERNS_FOLDER"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "OPENAI_API_KEY") {
		t.Errorf("loader listed an API key:\n%s", out)
	}
}

func TestContextLifecycle(t *testing.T) {
	useTestApp(t, config.OutputTable)

	if _, err := execute(t, "context", "create", "notes"); err != nil {
		t.Fatalf("create: %v", err)
	}
	rootCmd.SetIn(strings.NewReader("be brief\n"))
	t.Cleanup(func() { rootCmd.SetIn(nil) })
	if _, err := execute(t, "context", "save", "notes"); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := execute(t, "context", "read", "notes")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if out != "be brief\n" {
		t.Errorf("read printed %q", out)
	}

	out, err = execute(t, "context", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if out != "notes\n" {
		t.Errorf("list printed %q", out)
	}
}

func TestPrinterFormats(t *testing.T) {
	a := newPrinterApp(t)
	data := []store.Entry{{Name: "OPENAI_API_KEY", Value: "sk"}}
	rows := [][]string{{"OPENAI_API_KEY", "sk"}}

	t.Run("json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		p := &printer{out: buf, format: config.OutputJSON, app: a}
		if err := p.print(data, []string{"KEY", "VALUE"}, rows); err != nil {
			t.Fatal(err)
		}
		var got []store.Entry
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid json %q: %v", buf.String(), err)
		}
		if len(got) != 1 || got[0] != data[0] {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		buf := &bytes.Buffer{}
		p := &printer{out: buf, format: config.OutputYAML, app: a}
		if err := p.print(data, []string{"KEY", "VALUE"}, rows); err != nil {
			t.Fatal(err)
		}
		var got []store.Entry
		if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid yaml %q: %v", buf.String(), err)
		}
		if len(got) != 1 || got[0] != data[0] {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("table", func(t *testing.T) {
		buf := &bytes.Buffer{}
		p := &printer{out: buf, format: config.OutputTable, app: a}
		if err := p.print(data, []string{"KEY", "VALUE"}, rows); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "OPENAI_API_KEY") || !strings.Contains(buf.String(), "╭") {
			t.Errorf("unexpected table:\n%s", buf.String())
		}
	})

	t.Run("template", func(t *testing.T) {
		buf := &bytes.Buffer{}
		p := &printer{out: buf, format: config.OutputTable, template: `{{ range . }}{{ .Name }}{{ end }}`, app: a}
		if err := p.print(data, nil, nil); err != nil {
			t.Fatal(err)
		}
		if buf.String() != "OPENAI_API_KEY\n" {
			t.Errorf("got %q", buf.String())
		}
	})

	t.Run("empty table", func(t *testing.T) {
		buf := &bytes.Buffer{}
		p := &printer{out: buf, format: config.OutputTable, app: a}
		if err := p.print([]store.Entry{}, []string{"KEY", "VALUE"}, nil); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "No results") {
			t.Errorf("got %q", buf.String())
		}
	})
}

func TestMaskEntries(t *testing.T) {
	a := newPrinterApp(t)
	entries := []store.Entry{
		{Name: "OPENAI_API_KEY", Value: "sk-abcdef"},
		{Name: "GROQ_API_KEY", Value: ""},
		{Name: "OPENAI_BASE_URL", Value: "https://api.openai.com/v1"},
	}

	masked := maskEntries(a, entries, false)
	if masked[0].Value != "*****cdef" {
		t.Errorf("api key not masked: %q", masked[0].Value)
	}
	if masked[1].Value != "" || masked[2].Value != entries[2].Value {
		t.Errorf("unexpected masking: %+v", masked)
	}
	if entries[0].Value != "sk-abcdef" {
		t.Error("input was modified")
	}

	shown := maskEntries(a, entries, true)
	if shown[0].Value != "sk-abcdef" {
		t.Errorf("show-secrets still masked: %q", shown[0].Value)
	}
}

func newPrinterApp(t *testing.T) *app.App {
	t.Helper()
	useTestApp(t, config.OutputTable)
	a, err := buildApp(&cobra.Command{})
	if err != nil {
		t.Fatal(err)
	}
	return a
}
