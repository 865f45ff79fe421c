// Package app wires the fabric-desk components together. An App is built
// once per process and owns the settings mirror; nothing else holds global
// state.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"fabric-desk/internal/apperr"
	"fabric-desk/internal/config"
	"fabric-desk/internal/contexts"
	"fabric-desk/internal/interactive"
	"fabric-desk/internal/interfaces"
	"fabric-desk/internal/logging"
	"fabric-desk/internal/orchestrator"
	"fabric-desk/internal/settings"
	"fabric-desk/internal/store"
	"fabric-desk/internal/template"
	"fabric-desk/internal/toolpath"
	"fabric-desk/pkg/models"
)

// PatternsDir is the patterns subdirectory of the tool config directory.
const PatternsDir = "patterns"

// App is the top-level controller.
type App struct {
	Config   *interfaces.Config
	Logger   *zap.Logger
	ToolDir  string
	Store    *store.Store
	Mirror   *settings.Mirror
	Resolver *toolpath.Resolver
	Orch     *orchestrator.Orchestrator
	Contexts *contexts.Manager
	Output   interfaces.OutputHandler
	Renderer *template.Processor
	Prompter *interactive.Prompter
}

type options struct {
	stdout   io.Writer
	stderr   io.Writer
	runner   interfaces.CommandRunner
	prompter *interactive.Prompter
	logger   *zap.Logger
}

// Option customizes New.
type Option func(*options)

// WithStdout sets where command output goes.
func WithStdout(w io.Writer) Option { return func(o *options) { o.stdout = w } }

// WithStderr sets where logs go.
func WithStderr(w io.Writer) Option { return func(o *options) { o.stderr = w } }

// WithRunner replaces the process runner.
func WithRunner(r interfaces.CommandRunner) Option { return func(o *options) { o.runner = r } }

// WithPrompter replaces the terminal prompter.
func WithPrompter(p *interactive.Prompter) Option { return func(o *options) { o.prompter = p } }

// WithLogger replaces the logger built from the config.
func WithLogger(l *zap.Logger) Option { return func(o *options) { o.logger = l } }

// LoadConfig reads the application config file, applies flag overrides and
// validates the result.
func LoadConfig(path string, flags map[string]interface{}) (*interfaces.Config, error) {
	manager := config.NewManager()
	if _, err := manager.Load(path); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	for key, value := range flags {
		manager.SetFlag(key, value)
	}

	cfg, err := manager.Resolve()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configuration: %w", err)
	}
	if err := manager.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// New builds every component from cfg and hydrates the mirror from the store.
func New(cfg *interfaces.Config, opts ...Option) (*App, error) {
	o := options{stdout: os.Stdout, stderr: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		var err error
		if logger, err = logging.New(cfg.LogLevel, o.stderr); err != nil {
			return nil, err
		}
	}

	toolDir, err := config.ResolveToolConfigDir(cfg.ConfigDir)
	if err != nil {
		return nil, err
	}
	st, err := store.New(toolDir, logger.Named("store"))
	if err != nil {
		return nil, err
	}

	mirror := settings.NewMirror()
	mirror.SetFabricFolder(toolDir)

	resolver := toolpath.New(cfg.ToolPath, logger.Named("toolpath"))
	orchOpts := []orchestrator.Option{
		orchestrator.WithTimeout(cfg.ToolTimeout),
		orchestrator.WithLogger(logger.Named("orchestrator")),
	}
	if o.runner != nil {
		orchOpts = append(orchOpts, orchestrator.WithRunner(o.runner))
	}

	prompter := o.prompter
	if prompter == nil {
		prompter = interactive.NewPrompter()
	}

	a := &App{
		Config:   cfg,
		Logger:   logger,
		ToolDir:  toolDir,
		Store:    st,
		Mirror:   mirror,
		Resolver: resolver,
		Orch:     orchestrator.New(mirror, resolver, orchOpts...),
		Contexts: contexts.NewManager(toolDir, st, logger.Named("contexts")),
		Output:   orchestrator.NewOutputHandler(o.stdout),
		Renderer: template.NewProcessor(),
		Prompter: prompter,
	}
	a.hydrate()
	return a, nil
}

// hydrate copies the persisted defaults into the mirror. A store that cannot
// be read leaves the documented defaults in place.
func (a *App) hydrate() {
	entries, err := a.Store.GetMany([]string{store.KeyDefaultPattern, store.KeyDefaultModel})
	if err != nil {
		a.Logger.Warn("could not read persisted defaults", zap.Error(err))
		return
	}
	for _, e := range entries {
		switch e.Name {
		case store.KeyDefaultPattern:
			a.Mirror.SetDefaultPattern(e.Value)
			a.Mirror.SetSelectedPattern(e.Value)
		case store.KeyDefaultModel:
			a.Mirror.SetModel(e.Value)
		}
	}
}

// Run executes a pattern invocation.
func (a *App) Run(ctx context.Context, req models.RunRequest) (string, error) {
	return a.Orch.Run(ctx, req)
}

// RefreshPatterns reloads the installed pattern names (the subdirectories of
// <tool dir>/patterns) into the mirror.
func (a *App) RefreshPatterns() ([]string, error) {
	dir := filepath.Join(a.ToolDir, PatternsDir)
	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, apperr.IO(fmt.Sprintf("could not read %s", dir), err)
	}

	names := []string{}
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	a.Mirror.SetPatterns(names)
	return names, nil
}

// SelectPattern makes name the selected pattern. With persist it also
// becomes DEFAULT_PATTERN in the store. When patterns are installed, name
// must be one of them.
func (a *App) SelectPattern(name string, persist bool) error {
	if strings.TrimSpace(name) == "" {
		return apperr.Precondition("pattern name cannot be empty", "")
	}
	installed, err := a.RefreshPatterns()
	if err != nil {
		return err
	}
	if len(installed) > 0 && !slices.Contains(installed, name) {
		return apperr.NotFound("pattern", name, nil)
	}

	a.Mirror.SetSelectedPattern(name)
	if !persist {
		return nil
	}
	if err := a.Store.Set(store.KeyDefaultPattern, name); err != nil {
		return err
	}
	a.Mirror.SetDefaultPattern(name)
	return nil
}

// SetDefaultModel persists DEFAULT_MODEL and mirrors it.
func (a *App) SetDefaultModel(model string) error {
	if err := a.Store.Set(store.KeyDefaultModel, model); err != nil {
		return err
	}
	a.Mirror.SetModel(model)
	return nil
}

// SetDefaultVendor persists DEFAULT_VENDOR.
func (a *App) SetDefaultVendor(vendor string) error {
	return a.Store.Set(store.KeyDefaultVendor, vendor)
}

// ContractPath converts a full path back to use ~ for the home directory
func ContractPath(path string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return path
	}

	if path == homeDir {
		return "~"
	}
	if rel, ok := strings.CutPrefix(path, homeDir+string(filepath.Separator)); ok {
		return "~" + string(filepath.Separator) + rel
	}
	return path
}
