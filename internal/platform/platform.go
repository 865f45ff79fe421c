// Package platform describes the per-OS differences fabric-desk cares about:
// executable suffix, clipboard read command, shell, and where the fabric
// binary usually lives.
package platform

import (
	"os"
	"path/filepath"
	"runtime"
)

// Strategy bundles the OS-specific behavior for one GOOS value.
type Strategy struct {
	GOOS string
	// ExeSuffix is appended to executable names (".exe" on Windows).
	ExeSuffix string
	// ClipboardCommand is a shell command line that prints the clipboard as
	// UTF-8 text. Empty when the platform has no supported clipboard reader.
	ClipboardCommand string
	// Shell is the program and leading arguments used to run a command line.
	Shell []string
	// ShellFallback retries a failed direct spawn once through Shell.
	ShellFallback bool
	// KnownLocations lists absolute candidates for the fabric binary, most
	// preferred first. Entries may reference environment variables.
	KnownLocations []string
}

var strategies = map[string]Strategy{
	"darwin": {
		GOOS:             "darwin",
		ClipboardCommand: "pbpaste",
		Shell:            []string{"sh", "-c"},
		KnownLocations: []string{
			"/usr/local/bin/fabric",
			"/opt/homebrew/bin/fabric",
		},
	},
	"linux": {
		GOOS:             "linux",
		ClipboardCommand: "xclip -selection clipboard -o",
		Shell:            []string{"sh", "-c"},
		KnownLocations: []string{
			"/usr/local/bin/fabric",
			"/usr/bin/fabric",
		},
	},
	"windows": {
		GOOS:             "windows",
		ExeSuffix:        ".exe",
		ClipboardCommand: `powershell.exe -command "[Console]::OutputEncoding = [System.Text.Encoding]::UTF8; Get-Clipboard"`,
		Shell:            []string{"cmd", "/C"},
		ShellFallback:    true,
		KnownLocations: []string{
			`${ProgramFiles}\fabric\fabric.exe`,
			`${LOCALAPPDATA}\Programs\fabric\fabric.exe`,
		},
	},
}

// For returns the strategy for goos. Unknown platforms get a POSIX-shaped
// strategy with no clipboard reader and no known locations.
func For(goos string) Strategy {
	if s, ok := strategies[goos]; ok {
		return s
	}
	return Strategy{GOOS: goos, Shell: []string{"sh", "-c"}}
}

// Current returns the strategy for the running OS.
func Current() Strategy {
	return For(runtime.GOOS)
}

// Supported reports whether goos has a dedicated strategy.
func Supported(goos string) bool {
	_, ok := strategies[goos]
	return ok
}

// SupportsClipboard reports whether the clipboard input source is available.
func (s Strategy) SupportsClipboard() bool {
	return s.ClipboardCommand != ""
}

// Executable appends the platform executable suffix to name.
func (s Strategy) Executable(name string) string {
	return name + s.ExeSuffix
}

// ShellCommand returns the argv that runs line through the platform shell.
func (s Strategy) ShellCommand(line string) []string {
	argv := make([]string, 0, len(s.Shell)+1)
	argv = append(argv, s.Shell...)
	return append(argv, line)
}

// Locations expands the known locations with getenv and drops candidates
// whose variables are unset.
func (s Strategy) Locations(getenv func(string) string) []string {
	if getenv == nil {
		getenv = os.Getenv
	}

	var out []string
	for _, loc := range s.KnownLocations {
		missing := false
		expanded := os.Expand(loc, func(name string) string {
			v := getenv(name)
			if v == "" {
				missing = true
			}
			return v
		})
		if missing {
			continue
		}
		out = append(out, filepath.Clean(expanded))
	}
	return out
}
