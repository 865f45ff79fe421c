package app

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"fabric-desk/internal/apperr"
	"fabric-desk/internal/orchestrator"
	"fabric-desk/internal/store"
	"fabric-desk/internal/toolpath"
)

// Status is a point-in-time overview of the installation.
type Status struct {
	ToolDir        string              `json:"tool_dir" yaml:"tool_dir"`
	StoreFile      string              `json:"store_file" yaml:"store_file"`
	Tool           toolpath.Resolution `json:"tool" yaml:"tool"`
	DefaultPattern string              `json:"default_pattern" yaml:"default_pattern"`
	DefaultModel   string              `json:"default_model" yaml:"default_model"`
	DefaultVendor  string              `json:"default_vendor" yaml:"default_vendor"`
	CurrentContext string              `json:"current_context" yaml:"current_context"`
	Contexts       []string            `json:"contexts" yaml:"contexts"`
	Patterns       int                 `json:"patterns" yaml:"patterns"`
	CachedModels   int                 `json:"cached_models" yaml:"cached_models"`
	// APIKeys lists the names of keys that hold a value. Values are never
	// reported.
	APIKeys []string `json:"api_keys" yaml:"api_keys"`
}

// Status gathers the overview concurrently. It never runs the tool itself,
// so ctx is only checked before and after the gathering.
func (a *App) Status(ctx context.Context) (Status, error) {
	if err := ctx.Err(); err != nil {
		return Status{}, err
	}
	st := Status{ToolDir: a.ToolDir, StoreFile: a.Store.Path()}

	var g errgroup.Group

	g.Go(func() error {
		res, err := a.Resolver.Resolve()
		st.Tool = res
		return err
	})

	g.Go(func() error {
		entries, err := a.Store.GetMany([]string{
			store.KeyDefaultPattern, store.KeyDefaultModel, store.KeyDefaultVendor, store.KeyCurrentContext,
		})
		if err != nil {
			return err
		}
		for _, e := range entries {
			switch e.Name {
			case store.KeyDefaultPattern:
				st.DefaultPattern = e.Value
			case store.KeyDefaultModel:
				st.DefaultModel = e.Value
			case store.KeyDefaultVendor:
				st.DefaultVendor = e.Value
			case store.KeyCurrentContext:
				st.CurrentContext = e.Value
			}
		}
		return nil
	})

	g.Go(func() error {
		names, err := a.Contexts.List()
		st.Contexts = names
		return err
	})

	g.Go(func() error {
		names, err := a.RefreshPatterns()
		st.Patterns = len(names)
		return err
	})

	g.Go(func() error {
		cached, err := orchestrator.CachedModels(a.ToolDir)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		st.CachedModels = len(cached)
		return err
	})

	g.Go(func() error {
		keys, err := a.Store.APIKeys()
		if err != nil {
			return err
		}
		st.APIKeys = []string{}
		for _, k := range keys {
			if k.Value != "" {
				st.APIKeys = append(st.APIKeys, k.Name)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return Status{}, err
	}
	if err := ctx.Err(); err != nil {
		return Status{}, err
	}
	return st, nil
}
