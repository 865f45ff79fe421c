package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"fabric-desk/internal/apperr"
	"fabric-desk/internal/logging"
)

// FileName is the name of the key-value file inside the tool config directory.
const FileName = ".env"

// Well-known keys written by fabric-desk itself.
const (
	KeyDefaultModel       = "DEFAULT_MODEL"
	KeyDefaultVendor      = "DEFAULT_VENDOR"
	KeyDefaultPattern     = "DEFAULT_PATTERN"
	KeyCurrentContext     = "CURRENT_CONTEXT"
	KeyPatternsRepoURL    = "PATTERNS_LOADER_GIT_REPO_URL"
	KeyPatternsRepoFolder = "PATTERNS_LOADER_GIT_REPO_PATTERNS_FOLDER"
)

// Entry is a single KEY=VALUE line of the store.
type Entry struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Store reads and writes the flat KEY=VALUE file. Every read goes to disk;
// every write rewrites the whole file. Writers inside one process are
// serialized; writers in other processes are not (last writer wins).
type Store struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

// ResolvePath returns the store file path inside configDir, creating
// configDir if it does not exist yet.
func ResolvePath(configDir string) (string, error) {
	if configDir == "" {
		return "", apperr.IO("configuration directory is not set", nil)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", apperr.IO(fmt.Sprintf("could not create config directory %s", configDir), err)
	}
	return filepath.Join(configDir, FileName), nil
}

// New creates a Store backed by <configDir>/.env.
func New(configDir string, logger *zap.Logger) (*Store, error) {
	path, err := ResolvePath(configDir)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, logger: logging.OrNop(logger)}, nil
}

// Path returns the full path of the backing file.
func (s *Store) Path() string {
	return s.path
}

// Get returns the value of key. The first matching line wins.
func (s *Store) Get(key string) (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", apperr.NotFound("key", key, err)
		}
		return "", apperr.IO(fmt.Sprintf("could not read %s", s.path), err)
	}

	prefix := key + "="
	for _, line := range splitLines(string(data)) {
		if strings.HasPrefix(line, prefix) {
			return line[len(prefix):], nil
		}
	}
	return "", apperr.NotFound("key", key, nil)
}

// GetMany returns the entries for the requested keys that exist, in the
// order the keys were given. Missing keys are skipped.
func (s *Store) GetMany(keys []string) ([]Entry, error) {
	all, err := s.List("")
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, key := range keys {
		for _, e := range all {
			if e.Name == key {
				entries = append(entries, e)
				break
			}
		}
	}
	return entries, nil
}

// Set inserts or updates key. An existing key keeps its position; a new key
// is appended. Duplicate lines for the same key are collapsed into the first.
func (s *Store) Set(key, value string) error {
	if err := validate(key, value); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.readLines()
	if err != nil {
		return err
	}

	lines = upsert(lines, key, value)
	if err := s.writeLines(lines); err != nil {
		return err
	}

	s.logger.Debug("store key written", zap.String("key", key), zap.String("path", s.path))
	return nil
}

// Reset blanks the value of key while keeping the key in the file.
func (s *Store) Reset(key string) error {
	return s.Set(key, "")
}

// List returns every entry whose key contains substr, in file order.
// A missing file yields an empty list.
func (s *Store) List(substr string) ([]Entry, error) {
	lines, err := s.readLines()
	if err != nil {
		return nil, err
	}

	entries := []Entry{}
	for _, line := range lines {
		name, value, ok := strings.Cut(line, "=")
		if line == "" || !ok {
			continue
		}
		if strings.Contains(name, substr) {
			entries = append(entries, Entry{Name: name, Value: value})
		}
	}
	return entries, nil
}

// readLines loads the raw lines of the file. A missing file is an empty store.
func (s *Store) readLines() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, apperr.IO(fmt.Sprintf("could not read %s", s.path), err)
	}
	return splitLines(string(data)), nil
}

func (s *Store) writeLines(lines []string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return apperr.IO("could not create config directory", err)
	}

	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(s.path, []byte(content), 0o600); err != nil {
		return apperr.IO(fmt.Sprintf("could not write %s", s.path), err)
	}
	return nil
}

// upsert replaces the first line for key, drops any later duplicates and
// appends the key when absent. Trailing blank lines are dropped so the file
// ends in exactly one newline; other lines are kept verbatim.
func upsert(lines []string, key, value string) []string {
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	prefix := key + "="
	out := make([]string, 0, len(lines)+1)
	found := false

	for _, line := range lines {
		if !strings.HasPrefix(line, prefix) {
			out = append(out, line)
			continue
		}
		if found {
			continue
		}
		out = append(out, prefix+value)
		found = true
	}

	if !found {
		out = append(out, prefix+value)
	}
	return out
}

// splitLines splits file content into lines, ignoring one trailing newline
// and stripping carriage returns.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func validate(key, value string) error {
	switch {
	case key == "":
		return apperr.Precondition("key cannot be empty", "Keys are conventionally UPPER_SNAKE_CASE, e.g. OPENAI_API_KEY.")
	case strings.ContainsAny(key, "=\r\n"):
		return apperr.Precondition(fmt.Sprintf("invalid key %q", key), "Keys cannot contain '=' or line breaks.")
	case strings.ContainsAny(value, "\r\n"):
		return apperr.Precondition(fmt.Sprintf("invalid value for %s", key), "Values cannot contain line breaks.")
	}
	return nil
}
