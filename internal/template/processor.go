// Package template renders user-supplied Go templates over command results,
// e.g. `fabricdesk config list --template '{{range .}}{{.Name}}{{"\n"}}{{end}}'`.
package template

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"fabric-desk/internal/interfaces"
)

// Processor implements the TemplateRenderer interface
type Processor struct {
	funcs template.FuncMap
}

// NewProcessor creates a processor with sprig and the local helpers loaded.
func NewProcessor() *Processor {
	funcs := sprig.TxtFuncMap()
	for name, fn := range helperFuncs() {
		funcs[name] = fn
	}
	return &Processor{funcs: funcs}
}

var _ interfaces.TemplateRenderer = (*Processor)(nil)

// Render executes text with data.
func (p *Processor) Render(text string, data any) (string, error) {
	tmpl, err := p.parse("output", text)
	if err != nil {
		return "", err
	}
	return p.execute(tmpl, data)
}

// RenderFile loads the template at path and executes it with data.
func (p *Processor) RenderFile(path string, data any) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template file %s: %w", path, err)
	}
	tmpl, err := p.parse(filepath.Base(path), string(content))
	if err != nil {
		return "", err
	}
	return p.execute(tmpl, data)
}

// Validate parses text without executing it.
func (p *Processor) Validate(text string) error {
	_, err := p.parse("output", text)
	return err
}

// Load resolves a --template value: "@path" reads a file, anything else is
// inline template text.
func (p *Processor) Load(value string, data any) (string, error) {
	if path, ok := strings.CutPrefix(value, "@"); ok {
		return p.RenderFile(path, data)
	}
	return p.Render(value, data)
}

func (p *Processor) parse(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(p.funcs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	return tmpl, nil
}

func (p *Processor) execute(tmpl *template.Template, data any) (string, error) {
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func helperFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": truncateFunc,
		"mdFence":  mdFenceFunc,
		"indent":   indentFunc,
		"dedent":   dedentFunc,
		"mask":     maskFunc,
	}
}

// truncateFunc shortens text to at most length runes, ending in "..." when
// there is room for it.
func truncateFunc(length int, text string) string {
	runes := []rune(text)
	if len(runes) <= length {
		return text
	}
	if length <= 3 {
		return string(runes[:max(length, 0)])
	}
	return string(runes[:length-3]) + "..."
}

func mdFenceFunc(language, content string) string {
	return "```" + language + "\n" + content + "\n```"
}

// indentFunc prefixes every non-blank line with spaces.
func indentFunc(spaces int, text string) string {
	if spaces <= 0 {
		return text
	}
	pad := strings.Repeat(" ", spaces)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = pad + line
		}
	}
	return strings.Join(lines, "\n")
}

// dedentFunc strips the leading spaces common to every non-blank line. Tabs
// count as four spaces.
func dedentFunc(text string) string {
	lines := strings.Split(text, "\n")
	common := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if w := leadingWidth(line); common == -1 || w < common {
			common = w
		}
	}
	if common <= 0 {
		return text
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines[i] = trimWidth(line, common)
	}
	return strings.Join(lines, "\n")
}

func leadingWidth(line string) int {
	w := 0
	for _, c := range line {
		switch c {
		case ' ':
			w++
		case '\t':
			w += 4
		default:
			return w
		}
	}
	return w
}

func trimWidth(line string, width int) string {
	removed := 0
	for i, c := range line {
		if removed >= width {
			return line[i:]
		}
		switch c {
		case ' ':
			removed++
		case '\t':
			removed += 4
			if removed > width {
				return strings.Repeat(" ", removed-width) + line[i+1:]
			}
		default:
			return line[i:]
		}
	}
	return ""
}

// maskFunc hides all but the last four characters of a secret.
func maskFunc(secret string) string {
	runes := []rune(secret)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-4:])
}
