package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fabric-desk/internal/interfaces"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
}

func writeScript(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o755))
}

func TestExecRunner(t *testing.T) {
	skipOnWindows(t)
	r := NewExecRunner()

	t.Run("captures stdout and stdin", func(t *testing.T) {
		res, err := r.Run(context.Background(), interfaces.Command{
			Name:  "/bin/sh",
			Args:  []string{"-c", "cat; echo done"},
			Stdin: "hello\n",
		})
		require.NoError(t, err)
		assert.True(t, res.Started)
		assert.Equal(t, 0, res.ExitCode)
		assert.Equal(t, "hello\ndone\n", string(res.Stdout))
	})

	t.Run("non-zero exit keeps stderr", func(t *testing.T) {
		res, err := r.Run(context.Background(), interfaces.Command{
			Name: "/bin/sh",
			Args: []string{"-c", "echo boom >&2; exit 3"},
		})
		assert.Error(t, err)
		assert.True(t, res.Started)
		assert.Equal(t, 3, res.ExitCode)
		assert.Equal(t, "boom\n", string(res.Stderr))
	})

	t.Run("missing binary never starts", func(t *testing.T) {
		res, err := r.Run(context.Background(), interfaces.Command{
			Name: filepath.Join(t.TempDir(), "fabric"),
		})
		assert.Error(t, err)
		assert.False(t, res.Started)
	})
}

func TestRun_RealProcess(t *testing.T) {
	skipOnWindows(t)

	// A stand-in tool that echoes its arguments, one per line.
	script := filepath.Join(t.TempDir(), "fabric")
	writeScript(t, script, "#!/bin/sh\nfor a in \"$@\"; do echo \"$a\"; done\n")

	o, mirror, resolver, _ := newTestOrchestrator("linux")
	o.runner = NewExecRunner()
	resolver.path = script
	mirror.SetSelectedPattern("summarize")

	out, err := o.RunPattern(context.Background(), "https://example.com", "-u")
	require.NoError(t, err)
	assert.Equal(t, "-u\nhttps://example.com\n--pattern\nsummarize\n--temperature=0.7\n--topp=0.9\n--presencepenalty=0\n--frequencypenalty=0\n", out)
	assert.False(t, mirror.IsRunning())
}
