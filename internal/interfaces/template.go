package interfaces

// TemplateRenderer renders user-supplied Go templates over command output
type TemplateRenderer interface {
	// Render executes the template text with data
	Render(text string, data any) (string, error)

	// Validate parses the template text without executing it
	Validate(text string) error
}
