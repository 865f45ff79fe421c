package template

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type entry struct {
	Name  string
	Value string
}

func TestProcessor_Render(t *testing.T) {
	processor := NewProcessor()

	entries := []entry{{"OPENAI_API_KEY", "sk-123456789"}, {"DEFAULT_MODEL", "gpt-4o"}}
	result, err := processor.Render(`{{range .}}{{.Name}}={{mask .Value}}{{"\n"}}{{end}}`, entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := "OPENAI_API_KEY=********6789\nDEFAULT_MODEL=**t-4o\n"
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestProcessor_RenderErrors(t *testing.T) {
	processor := NewProcessor()

	tests := []struct {
		name     string
		template string
	}{
		{"parse error", "{{.Name"},
		{"unknown function", "{{ nope .Name }}"},
		{"missing field", "{{ .Name }}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := processor.Render(tt.template, struct{ Value string }{}); err == nil {
				t.Errorf("expected error for %q", tt.template)
			}
		})
	}
}

func TestProcessor_Validate(t *testing.T) {
	processor := NewProcessor()

	if err := processor.Validate(`{{ upper "ok" }}`); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := processor.Validate(`{{ if }}`); err == nil {
		t.Error("expected error for malformed template")
	}
}

func TestProcessor_Load(t *testing.T) {
	processor := NewProcessor()
	path := filepath.Join(t.TempDir(), "models.tmpl")
	if err := os.WriteFile(path, []byte(`{{len .}} models`), 0644); err != nil {
		t.Fatal(err)
	}

	fromFile, err := processor.Load("@"+path, []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fromFile != "2 models" {
		t.Errorf("expected %q, got %q", "2 models", fromFile)
	}

	inline, err := processor.Load(`{{ join ", " . }}`, []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inline != "a, b" {
		t.Errorf("expected %q, got %q", "a, b", inline)
	}

	if _, err := processor.Load("@"+filepath.Join(t.TempDir(), "missing.tmpl"), nil); err == nil {
		t.Error("expected error for missing template file")
	}
}

func TestCustomHelperFunctions(t *testing.T) {
	processor := NewProcessor()

	tests := []struct {
		name     string
		template string
		expected string
	}{
		{
			name:     "truncate function",
			template: `{{truncate 10 "This is a very long string"}}`,
			expected: "This is...",
		},
		{
			name:     "mdFence function with language",
			template: `{{mdFence "go" "fmt.Println(\"hello\")"}}`,
			expected: "```go\nfmt.Println(\"hello\")\n```",
		},
		{
			name:     "mdFence function without language",
			template: `{{mdFence "" "some code"}}`,
			expected: "```\nsome code\n```",
		},
		{
			name:     "indent function",
			template: `{{indent 4 "line1\nline2\n\nline4"}}`,
			expected: "    line1\n    line2\n\n    line4",
		},
		{
			name:     "dedent function",
			template: `{{dedent "    line1\n    line2\n        line3"}}`,
			expected: "line1\nline2\n    line3",
		},
		{
			name:     "sprig is available",
			template: `{{ "summarize" | upper | trimSuffix "IZE" }}`,
			expected: "SUMMAR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := processor.Render(tt.template, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestHelperFunctions(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"truncate short text", truncateFunc(10, "short"), "short"},
		{"truncate long text", truncateFunc(10, "this is a very long text"), "this is..."},
		{"truncate tiny length", truncateFunc(2, "abcdef"), "ab"},
		{"truncate multibyte", truncateFunc(4, "héllo wörld"), "h..."},
		{"mdFence with language", mdFenceFunc("python", "print('hello')"), "```python\nprint('hello')\n```"},
		{"indent", indentFunc(2, "line1\nline2"), "  line1\n  line2"},
		{"indent zero", indentFunc(0, "line1"), "line1"},
		{"dedent", dedentFunc("  line1\n  line2\n    line3"), "line1\nline2\n  line3"},
		{"dedent tabs", dedentFunc("\tline1\n\t\tline2"), "line1\n\tline2"},
		{"dedent nothing common", dedentFunc("a\n  b"), "a\n  b"},
		{"mask short", maskFunc("abc"), "***"},
		{"mask long", maskFunc("sk-abcdef"), "*****cdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, tt.got)
			}
		})
	}
}

func TestRender_MultilineOutput(t *testing.T) {
	processor := NewProcessor()
	out, err := processor.Render("{{range .}}- {{.}}\n{{end}}", []string{"summarize", "extract_wisdom"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(out, "\n") != 2 {
		t.Errorf("expected two lines, got %q", out)
	}
}
