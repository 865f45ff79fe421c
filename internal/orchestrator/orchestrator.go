package orchestrator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"fabric-desk/internal/apperr"
	"fabric-desk/internal/interfaces"
	"fabric-desk/internal/logging"
	"fabric-desk/internal/platform"
	"fabric-desk/internal/settings"
	"fabric-desk/pkg/models"
)

// PathResolver yields the current best guess for the tool binary.
type PathResolver interface {
	Path() (string, error)
}

// Orchestrator runs the tool and platform shell commands
type Orchestrator struct {
	mirror   *settings.Mirror
	resolver PathResolver
	runner   interfaces.CommandRunner
	platform platform.Strategy
	timeout  time.Duration
	logger   *zap.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRunner replaces the exec runner.
func WithRunner(r interfaces.CommandRunner) Option {
	return func(o *Orchestrator) { o.runner = r }
}

// WithPlatform replaces the detected platform strategy.
func WithPlatform(s platform.Strategy) Option {
	return func(o *Orchestrator) { o.platform = s }
}

// WithTimeout bounds every spawned process. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = logging.OrNop(l) }
}

// New creates an orchestrator reading parameters from mirror and the binary
// location from resolver.
func New(mirror *settings.Mirror, resolver PathResolver, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		mirror:   mirror,
		resolver: resolver,
		runner:   NewExecRunner(),
		platform: platform.Current(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Mirror returns the settings mirror the orchestrator reads from.
func (o *Orchestrator) Mirror() *settings.Mirror {
	return o.mirror
}

// Run executes a pattern over the request input. The running flag is set for
// the duration of the call and cleared on every return path.
func (o *Orchestrator) Run(ctx context.Context, req models.RunRequest) (string, error) {
	if o.mirror.SwapRunning(true) {
		o.logger.Debug("another run is already in flight")
	}
	defer o.mirror.SetRunning(false)

	pattern := req.Pattern
	if pattern == "" {
		pattern = o.mirror.SelectedPattern()
	}
	if pattern == "" {
		return "", apperr.Precondition("no pattern selected",
			"Select one with 'fabricdesk pattern select NAME' or pass --pattern.")
	}

	switch req.Strategy {
	case models.StrategyDirect:
		return o.runDirect(ctx, req, pattern)
	case models.StrategyClipboard:
		return o.runClipboard(ctx, req, pattern)
	default:
		return "", apperr.Precondition(fmt.Sprintf("unknown run strategy %s", req.Strategy), "")
	}
}

// RunPattern runs the selected pattern with input passed after flag, e.g.
// RunPattern(ctx, "https://example.com", "-u").
func (o *Orchestrator) RunPattern(ctx context.Context, input, flag string) (string, error) {
	return o.Run(ctx, models.RunRequest{Strategy: models.StrategyDirect, Flag: flag, Input: input})
}

// RunClipboard runs the selected pattern over the clipboard contents.
func (o *Orchestrator) RunClipboard(ctx context.Context) (string, error) {
	return o.Run(ctx, models.RunRequest{Strategy: models.StrategyClipboard, Source: models.SourceClipboard})
}

func (o *Orchestrator) runDirect(ctx context.Context, req models.RunRequest, pattern string) (string, error) {
	bin, err := o.resolver.Path()
	if err != nil {
		return "", err
	}

	cmd := interfaces.Command{Name: bin}
	if req.Flag != "" {
		cmd.Args = append(cmd.Args, req.Flag, req.Input)
	} else {
		cmd.Stdin = req.Input
	}
	cmd.Args = append(cmd.Args, "--pattern", pattern)
	cmd.Args = append(cmd.Args, o.parameterArgs(req)...)

	res, err := o.exec(ctx, cmd)
	if err != nil && !res.Started && o.platform.ShellFallback {
		o.logger.Debug("direct spawn failed, retrying through shell", zap.Error(err))
		line := quoteCommandLine(o.platform.GOOS, append([]string{cmd.Name}, cmd.Args...))
		argv := o.platform.ShellCommand(line)
		cmd = interfaces.Command{Name: argv[0], Args: argv[1:], Stdin: cmd.Stdin}
		res, err = o.exec(ctx, cmd)
	}
	return finish(cmd, res, err)
}

func (o *Orchestrator) runClipboard(ctx context.Context, req models.RunRequest, pattern string) (string, error) {
	if !o.platform.SupportsClipboard() {
		return "", apperr.UnsupportedPlatform(o.platform.GOOS, "reading the clipboard")
	}

	bin, err := o.resolver.Path()
	if err != nil {
		return "", err
	}

	toolArgv := append([]string{bin, "--pattern", pattern}, o.parameterArgs(req)...)
	line := o.platform.ClipboardCommand + " | " + quoteCommandLine(o.platform.GOOS, toolArgv)
	argv := o.platform.ShellCommand(line)

	cmd := interfaces.Command{Name: argv[0], Args: argv[1:]}
	res, err := o.exec(ctx, cmd)
	return finish(cmd, res, err)
}

// parameterArgs renders the mirror's model parameters plus the request's
// context and session as tool flags.
func (o *Orchestrator) parameterArgs(req models.RunRequest) []string {
	p := o.mirror.Parameters()

	var args []string
	if p.Model != "" {
		args = append(args, "--model="+p.Model)
	}
	args = append(args,
		"--temperature="+formatFloat(p.Temperature),
		"--topp="+formatFloat(p.TopP),
		"--presencepenalty="+formatFloat(p.PresencePenalty),
		"--frequencypenalty="+formatFloat(p.FrequencyPenalty),
	)
	if req.Context != "" {
		args = append(args, "--context="+req.Context)
	}
	if req.Session != "" {
		args = append(args, "--session="+req.Session)
	}
	return args
}

func (o *Orchestrator) exec(ctx context.Context, cmd interfaces.Command) (interfaces.Result, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := o.runner.Run(ctx, cmd)
	o.logger.Debug("process finished",
		zap.String("command", cmd.Name),
		zap.Strings("args", cmd.Args),
		zap.Bool("started", res.Started),
		zap.Int("exit_code", res.ExitCode),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err),
	)
	return res, err
}

// finish maps a raw process result to output or a process error. Success is
// decided by the exit status alone; stderr on a zero exit is ignored.
func finish(cmd interfaces.Command, res interfaces.Result, err error) (string, error) {
	if !res.Started {
		return "", apperr.Process(cmd.Name, "", err)
	}
	if err != nil || res.ExitCode != 0 {
		label := fmt.Sprintf("%s (exit status %d)", cmd.Name, res.ExitCode)
		return "", apperr.Process(label, decode(res.Stderr), nil)
	}
	return decode(res.Stdout), nil
}

func decode(b []byte) string {
	return strings.ToValidUTF8(string(b), "\uFFFD")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// quoteCommandLine joins argv into one command line for the platform shell.
func quoteCommandLine(goos string, argv []string) string {
	if goos != "windows" {
		return shellquote.Join(argv...)
	}

	quoted := make([]string, len(argv))
	for i, a := range argv {
		if a != "" && !strings.ContainsAny(a, " \t\"&|<>^") {
			quoted[i] = a
			continue
		}
		quoted[i] = `"` + strings.ReplaceAll(a, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " ")
}
