package models

import "fmt"

// InputSource names where the text fed to a pattern comes from.
type InputSource string

const (
	SourceURL       InputSource = "url"
	SourceQuestion  InputSource = "question"
	SourceClipboard InputSource = "clipboard"
	SourceText      InputSource = "text"
)

// Flag returns the tool flag that carries the input for this source. The
// clipboard and text sources feed stdin and have no flag.
func (s InputSource) Flag() string {
	switch s {
	case SourceURL:
		return "-u"
	case SourceQuestion:
		return "-q"
	default:
		return ""
	}
}

// Strategy selects how the tool is spawned.
type Strategy int

const (
	// StrategyDirect execs the resolved binary with an explicit argv.
	StrategyDirect Strategy = iota
	// StrategyClipboard pipes the platform clipboard reader into the tool
	// through the platform shell.
	StrategyClipboard
)

func (s Strategy) String() string {
	switch s {
	case StrategyDirect:
		return "direct"
	case StrategyClipboard:
		return "clipboard"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// RunRequest describes one "run a pattern" invocation
type RunRequest struct {
	Strategy Strategy
	Source   InputSource
	// Flag is the tool flag preceding Input, e.g. "-u". Empty means Input is
	// passed on stdin.
	Flag  string
	Input string
	// Pattern overrides the selected pattern for this request only.
	Pattern string
	Context string
	Session string
}

// NewRunRequest builds a request whose strategy and flag follow from source.
func NewRunRequest(source InputSource, input string) (RunRequest, error) {
	switch source {
	case SourceURL, SourceQuestion, SourceText:
		return RunRequest{Strategy: StrategyDirect, Source: source, Flag: source.Flag(), Input: input}, nil
	case SourceClipboard:
		return RunRequest{Strategy: StrategyClipboard, Source: source}, nil
	default:
		return RunRequest{}, fmt.Errorf("unknown input source %q", source)
	}
}
