package interfaces

// OutputHandler manages different output destinations
type OutputHandler interface {
	// WriteToClipboard copies content to the system clipboard
	WriteToClipboard(content string) error

	// ReadClipboard returns the current clipboard text
	ReadClipboard() (string, error)

	// WriteToStdout writes content to standard output
	WriteToStdout(content string) error

	// WriteToFile writes content to the specified file path
	WriteToFile(content string, path string) error

	// OpenInEditor opens the file at path in the specified editor
	OpenInEditor(path string, editor string) error
}
