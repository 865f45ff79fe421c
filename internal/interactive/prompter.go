// Package interactive asks the user for missing input when a terminal is
// attached. Without a terminal it falls back to plain numbered prompts on
// the configured reader, or fails when an answer cannot be collected.
package interactive

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"golang.org/x/term"
)

// ErrNotInteractive is returned when a prompt needs a terminal and none is
// attached.
var ErrNotInteractive = errors.New("no terminal attached")

// Prompter handles interactive user input collection
type Prompter struct {
	in     io.Reader
	out    io.Writer
	isTerm func() bool
}

// NewPrompter creates a prompter on the process stdin/stdout.
func NewPrompter() *Prompter {
	return &Prompter{
		in:  os.Stdin,
		out: os.Stdout,
		isTerm: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		},
	}
}

// NewPlainPrompter creates a prompter that never uses survey and reads
// answers line by line from in.
func NewPlainPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out, isTerm: func() bool { return false }}
}

// IsInteractive reports whether survey prompts can be shown.
func (p *Prompter) IsInteractive() bool {
	return p.isTerm()
}

// Select asks the user to pick one of options. current is preselected when
// it is one of them.
func (p *Prompter) Select(message, help string, options []string, current string) (string, error) {
	if len(options) == 0 {
		return "", errors.New("nothing to select from")
	}
	if !p.isTerm() {
		return p.fallbackNumberSelection(message, options)
	}

	prompt := &survey.Select{
		Message:  message,
		Options:  options,
		Help:     help,
		PageSize: 15,
	}
	for _, o := range options {
		if o == current {
			prompt.Default = current
			break
		}
	}

	var selected string
	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}
	return selected, nil
}

// SelectPattern asks for one of the installed patterns.
func (p *Prompter) SelectPattern(patterns []string, current string) (string, error) {
	return p.Select("Select a pattern:", "Type to filter; the choice becomes DEFAULT_PATTERN", patterns, current)
}

// Secret asks for a value without echoing it. It needs a terminal.
func (p *Prompter) Secret(key string) (string, error) {
	if !p.isTerm() {
		return "", fmt.Errorf("cannot prompt for %s: %w", key, ErrNotInteractive)
	}

	var value string
	prompt := &survey.Password{Message: fmt.Sprintf("Value for %s:", key)}
	if err := survey.AskOne(prompt, &value, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(message string, defaultValue bool) (bool, error) {
	if !p.isTerm() {
		return p.fallbackYesNo(message, defaultValue)
	}

	result := defaultValue
	prompt := &survey.Confirm{Message: message, Default: defaultValue}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

// fallbackNumberSelection lists numbered options and reads a line. An empty
// line picks the first option.
func (p *Prompter) fallbackNumberSelection(message string, options []string) (string, error) {
	fmt.Fprintf(p.out, "%s\n", message)
	for i, option := range options {
		fmt.Fprintf(p.out, "  %d. %s\n", i+1, option)
	}
	fmt.Fprintf(p.out, "Enter number (1-%d) or press Enter for first option: ", len(options))

	input, err := p.readLine()
	if err != nil {
		return "", err
	}
	if input == "" {
		return options[0], nil
	}

	selectedIndex, err := strconv.Atoi(input)
	if err != nil || selectedIndex < 1 || selectedIndex > len(options) {
		return "", fmt.Errorf("invalid selection %q: please enter a number between 1 and %d", input, len(options))
	}
	return options[selectedIndex-1], nil
}

func (p *Prompter) fallbackYesNo(message string, defaultValue bool) (bool, error) {
	hint := "y/N"
	if defaultValue {
		hint = "Y/n"
	}
	fmt.Fprintf(p.out, "%s [%s]: ", message, hint)

	input, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(input) {
	case "":
		return defaultValue, nil
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return false, fmt.Errorf("invalid answer %q: please enter y or n", input)
	}
}

func (p *Prompter) readLine() (string, error) {
	line, err := bufio.NewReader(p.in).ReadString('\n')
	if errors.Is(err, io.EOF) && line == "" {
		return "", fmt.Errorf("no answer given: %w", ErrNotInteractive)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
