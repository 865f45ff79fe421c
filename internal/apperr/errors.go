package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every failure surfaced by the core matches exactly one of these
// through errors.Is.
var (
	ErrIO                  = errors.New("io error")
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrPrecondition        = errors.New("precondition failed")
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrProcess             = errors.New("process error")
)

// Error represents a structured error with actionable guidance
type Error struct {
	Kind     error
	Message  string
	Guidance string
	Cause    error
	// Stderr holds the captured standard error of a failed child process.
	Stderr string
}

func (e *Error) Error() string {
	if e.Guidance != "" {
		return fmt.Sprintf("%s: %s\n\nSuggestion: %s", e.Kind, e.Message, e.Guidance)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

// Error constructors with actionable guidance

func IO(message string, cause error) *Error {
	guidance := "Check that the configuration directory exists and is writable."
	if cause != nil && strings.Contains(cause.Error(), "permission") {
		guidance = "Permission denied. Ensure you have read/write access to the configuration directory " +
			"and all of its parents."
	}

	return &Error{
		Kind:     ErrIO,
		Message:  message,
		Guidance: guidance,
		Cause:    cause,
	}
}

func NotFound(what, name string, cause error) *Error {
	message := fmt.Sprintf("%s '%s' not found", what, name)
	guidance := ""
	switch what {
	case "key":
		guidance = fmt.Sprintf("Set it first with: fabricdesk config set %s <value>", name)
	case "context":
		guidance = fmt.Sprintf("Create it first with: fabricdesk context create %s", name)
	case "pattern":
		guidance = "List installed patterns with: fabricdesk pattern list, or fetch them with: fabricdesk pattern update"
	case "model cache":
		guidance = "Build it with: fabricdesk models refresh"
	}

	return &Error{
		Kind:     ErrNotFound,
		Message:  message,
		Guidance: guidance,
		Cause:    cause,
	}
}

func AlreadyExists(what, name string) *Error {
	return &Error{
		Kind:     ErrAlreadyExists,
		Message:  fmt.Sprintf("%s '%s' already exists", what, name),
		Guidance: fmt.Sprintf("Choose a different name or delete the existing %s first.", what),
	}
}

func Precondition(message, guidance string) *Error {
	return &Error{
		Kind:     ErrPrecondition,
		Message:  message,
		Guidance: guidance,
	}
}

func UnsupportedPlatform(goos, feature string) *Error {
	return &Error{
		Kind:     ErrUnsupportedPlatform,
		Message:  fmt.Sprintf("%s is not supported on %s", feature, goos),
		Guidance: "Pass the input directly instead, for example: fabricdesk run --text \"...\"",
	}
}

// Process builds a process failure. stderr is the captured standard error, or
// empty when the process never started; in that case cause carries the spawn
// error.
func Process(command string, stderr string, cause error) *Error {
	message := fmt.Sprintf("'%s' failed", command)
	detail := strings.TrimSpace(stderr)
	if detail == "" && cause != nil {
		detail = cause.Error()
	}
	if detail != "" {
		message = fmt.Sprintf("%s: %s", message, detail)
	}

	guidance := ""
	if cause != nil && stderr == "" {
		guidance = "The tool could not be started. Check the resolved path with 'fabricdesk tool path' " +
			"or set FABRIC_BIN_PATH to the tool's executable."
	}

	return &Error{
		Kind:     ErrProcess,
		Message:  message,
		Guidance: guidance,
		Cause:    cause,
		Stderr:   stderr,
	}
}

// KindOf returns the kind of err, or nil if err is not an *Error.
func KindOf(err error) error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return nil
}
