package orchestrator

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/atotto/clipboard"

	"fabric-desk/internal/interfaces"
)

// OutputHandler implements the OutputHandler interface
type OutputHandler struct {
	out io.Writer
}

// NewOutputHandler creates a new output handler writing to w. A nil w means
// standard output.
func NewOutputHandler(w io.Writer) interfaces.OutputHandler {
	if w == nil {
		w = os.Stdout
	}
	return &OutputHandler{out: w}
}

// WriteToClipboard copies content to the system clipboard
func (h *OutputHandler) WriteToClipboard(content string) error {
	if err := clipboard.WriteAll(content); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}

// ReadClipboard returns the current clipboard text
func (h *OutputHandler) ReadClipboard() (string, error) {
	content, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	return content, nil
}

// WriteToStdout writes content followed by a newline
func (h *OutputHandler) WriteToStdout(content string) error {
	_, err := fmt.Fprintln(h.out, content)
	return err
}

// WriteToFile writes content to the specified file path
func (h *OutputHandler) WriteToFile(content string, path string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

// OpenInEditor opens the file at path in editor and waits for it to exit
func (h *OutputHandler) OpenInEditor(path string, editor string) error {
	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to launch editor %s: %w", editor, err)
	}
	return nil
}

// ResolveEditor resolves the editor using precedence rules
func ResolveEditor(requestEditor, configEditor string) string {
	// Precedence: flag > $VISUAL > $EDITOR > config editor > nvim/vim/vi/nano
	if requestEditor != "" {
		return requestEditor
	}
	if visual := os.Getenv("VISUAL"); visual != "" {
		return visual
	}
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	if configEditor != "" {
		return configEditor
	}
	for _, editor := range []string{"nvim", "vim", "vi", "nano"} {
		if _, err := exec.LookPath(editor); err == nil {
			return editor
		}
	}
	return "vi"
}
