// Package contexts manages the plain-text context files the tool reads from
// <config dir>/contexts/<name>.md.
package contexts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"fabric-desk/internal/apperr"
	"fabric-desk/internal/logging"
	"fabric-desk/internal/store"
)

const (
	// DirName is the contexts subdirectory of the tool config directory.
	DirName = "contexts"
	// Extension is appended to a context name to form its file name.
	Extension = ".md"
)

// Manager provides create/read/update/delete access to context files.
// Operations are serialized within the process.
type Manager struct {
	mu     sync.RWMutex
	dir    string
	store  *store.Store
	logger *zap.Logger
}

// NewManager creates a Manager for the contexts directory under configDir.
// st receives CURRENT_CONTEXT on SetCurrent and may be nil if that is not
// needed.
func NewManager(configDir string, st *store.Store, logger *zap.Logger) *Manager {
	return &Manager{
		dir:    filepath.Join(configDir, DirName),
		store:  st,
		logger: logging.OrNop(logger),
	}
}

// Dir returns the contexts directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Path returns the file path for name.
func (m *Manager) Path(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	return filepath.Join(m.dir, name+Extension), nil
}

// Create makes an empty context file. It fails if the file already exists.
func (m *Manager) Create(name string) (string, error) {
	path, err := m.Path(name)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", apperr.IO(fmt.Sprintf("could not create %s", m.dir), err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", apperr.AlreadyExists("context", name)
		}
		return "", apperr.IO(fmt.Sprintf("could not create %s", path), err)
	}
	if err := f.Close(); err != nil {
		return "", apperr.IO(fmt.Sprintf("could not create %s", path), err)
	}

	m.logger.Debug("context created", zap.String("name", name), zap.String("path", path))
	return path, nil
}

// Read returns the content of an existing context.
func (m *Manager) Read(name string) (string, error) {
	path, err := m.Path(name)
	if err != nil {
		return "", err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return "", notFoundOrIO(name, path, err)
	}
	return string(data), nil
}

// Save replaces the content of an existing context.
func (m *Manager) Save(name, content string) error {
	path, err := m.Path(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireExists(name, path); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return apperr.IO(fmt.Sprintf("could not write %s", path), err)
	}

	m.logger.Debug("context saved", zap.String("name", name), zap.Int("bytes", len(content)))
	return nil
}

// Delete removes an existing context.
func (m *Manager) Delete(name string) error {
	path, err := m.Path(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireExists(name, path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return apperr.IO(fmt.Sprintf("could not delete %s", path), err)
	}

	m.logger.Debug("context deleted", zap.String("name", name))
	return nil
}

// List returns the sorted context names. A missing directory is empty.
func (m *Manager) List() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, apperr.IO(fmt.Sprintf("could not read %s", m.dir), err)
	}

	names := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Extension) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), Extension))
	}
	slices.Sort(names)
	return names, nil
}

// SetCurrent records name as CURRENT_CONTEXT in the store.
func (m *Manager) SetCurrent(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if m.store == nil {
		return apperr.Precondition("no store configured for the current context", "")
	}
	return m.store.Set(store.KeyCurrentContext, name)
}

// Current returns CURRENT_CONTEXT, or "" when unset.
func (m *Manager) Current() (string, error) {
	if m.store == nil {
		return "", nil
	}
	v, _, err := m.store.Lookup(store.KeyCurrentContext)
	return v, err
}

func (m *Manager) requireExists(name, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return notFoundOrIO(name, path, err)
	}
	if info.IsDir() {
		return apperr.NotFound("context", name, nil)
	}
	return nil
}

func notFoundOrIO(name, path string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return apperr.NotFound("context", name, err)
	}
	return apperr.IO(fmt.Sprintf("could not access %s", path), err)
}

func validateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return apperr.Precondition("context name cannot be empty", "")
	case strings.ContainsAny(name, `/\`) || name == "." || name == "..":
		return apperr.Precondition(fmt.Sprintf("invalid context name %q", name), "Context names cannot contain path separators.")
	}
	return nil
}
