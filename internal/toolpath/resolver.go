// Package toolpath locates the fabric executable.
package toolpath

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"fabric-desk/internal/apperr"
	"fabric-desk/internal/logging"
	"fabric-desk/internal/platform"
)

const (
	// BinaryName is the bare command name of the tool.
	BinaryName = "fabric"
	// EnvBinPath overrides every other resolution step when it names an
	// existing file.
	EnvBinPath = "FABRIC_BIN_PATH"
)

// Step names reported alongside a resolved path.
const (
	StepEnv      = "env"
	StepOverride = "config"
	StepKnown    = "known-location"
	StepPath     = "path"
	StepHome     = "home"
	StepBare     = "bare"
)

// Resolution is the outcome of one resolver run.
type Resolution struct {
	Path string `json:"path" yaml:"path"`
	Step string `json:"step" yaml:"step"`
	// Found is false when the bare name was returned as a last resort.
	Found bool `json:"found" yaml:"found"`
}

// finder is one link of the chain. ok reports whether it produced a path.
type finder struct {
	step string
	find func() (path string, ok bool, err error)
}

// Resolver evaluates the fallback chain. The zero value is not usable; use
// New. All OS access goes through the function fields so tests can replace
// them.
type Resolver struct {
	// Override is a configured binary path, checked right after the env var.
	Override string

	GOOS      string
	LookupEnv func(string) (string, bool)
	Stat      func(string) (os.FileInfo, error)
	LookPath  func(string) (string, error)
	HomeDir   func() (string, error)

	logger *zap.Logger
}

// New creates a Resolver wired to the real OS.
func New(override string, logger *zap.Logger) *Resolver {
	return &Resolver{
		Override:  override,
		GOOS:      runtime.GOOS,
		LookupEnv: os.LookupEnv,
		Stat:      os.Stat,
		LookPath:  exec.LookPath,
		HomeDir:   os.UserHomeDir,
		logger:    logging.OrNop(logger),
	}
}

// Resolve returns the best current guess for the tool location. It is
// recomputed on every call. The only error is an undeterminable home
// directory when the chain reaches the per-user step.
func (r *Resolver) Resolve() (Resolution, error) {
	for _, f := range r.chain() {
		path, ok, err := f.find()
		if err != nil {
			return Resolution{}, err
		}
		if ok {
			r.logger.Debug("resolved tool path", zap.String("path", path), zap.String("step", f.step))
			return Resolution{Path: path, Step: f.step, Found: f.step != StepBare}, nil
		}
	}
	// unreachable: the bare step always succeeds
	return Resolution{Path: r.bareName(), Step: StepBare}, nil
}

// Path is Resolve without the step detail.
func (r *Resolver) Path() (string, error) {
	res, err := r.Resolve()
	return res.Path, err
}

func (r *Resolver) chain() []finder {
	return []finder{
		{StepEnv, r.fromEnv},
		{StepOverride, r.fromOverride},
		{StepKnown, r.fromKnownLocations},
		{StepPath, r.fromPathLookup},
		{StepHome, r.fromHome},
		{StepBare, func() (string, bool, error) { return r.bareName(), true, nil }},
	}
}

func (r *Resolver) strategy() platform.Strategy {
	return platform.For(r.GOOS)
}

func (r *Resolver) bareName() string {
	return r.strategy().Executable(BinaryName)
}

func (r *Resolver) exists(path string) bool {
	if path == "" {
		return false
	}
	info, err := r.Stat(path)
	return err == nil && !info.IsDir()
}

func (r *Resolver) fromEnv() (string, bool, error) {
	v, ok := r.LookupEnv(EnvBinPath)
	if !ok || !r.exists(v) {
		return "", false, nil
	}
	return v, true, nil
}

func (r *Resolver) fromOverride() (string, bool, error) {
	if !r.exists(r.Override) {
		return "", false, nil
	}
	return r.Override, true, nil
}

func (r *Resolver) fromKnownLocations() (string, bool, error) {
	getenv := func(name string) string {
		v, _ := r.LookupEnv(name)
		return v
	}
	for _, loc := range r.strategy().Locations(getenv) {
		if r.exists(loc) {
			return loc, true, nil
		}
	}
	return "", false, nil
}

func (r *Resolver) fromPathLookup() (string, bool, error) {
	out, err := r.LookPath(r.bareName())
	if err != nil {
		return "", false, nil
	}
	first, _, _ := strings.Cut(out, "\n")
	first = strings.TrimSpace(first)
	if first == "" {
		return "", false, nil
	}
	return first, true, nil
}

func (r *Resolver) fromHome() (string, bool, error) {
	home, err := r.HomeDir()
	if err != nil || home == "" {
		return "", false, apperr.IO("could not determine home directory", err)
	}
	candidate := filepath.Join(home, "go", "bin", r.bareName())
	if !r.exists(candidate) {
		return "", false, nil
	}
	return candidate, true, nil
}
