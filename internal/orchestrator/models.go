package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"fabric-desk/internal/apperr"
)

// ModelsFile is the model cache written into the tool config directory.
const ModelsFile = "models.md"

const modelsHeader = "# Available Models\n\n"

var modelLine = regexp.MustCompile(`^\[(\d+)\]\s+(.+)$`)

// Model is one numbered entry of the tool's model listing.
type Model struct {
	ID     int    `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Vendor string `json:"vendor" yaml:"vendor"`
}

// ParseModels turns listing lines into models. A line that is neither a
// numbered entry nor the "Available models:" banner starts a new vendor.
func ParseModels(lines []string) []Model {
	models := []Model{}
	vendor := ""
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "Available models:") {
			continue
		}
		m := modelLine.FindStringSubmatch(line)
		if m == nil {
			if !strings.HasPrefix(line, "[") {
				vendor = line
			}
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		models = append(models, Model{ID: id, Name: strings.TrimSpace(m[2]), Vendor: vendor})
	}
	return models
}

// RefreshModels lists models through the tool and rewrites the cache file in
// dir. It returns the raw listing lines.
func (o *Orchestrator) RefreshModels(ctx context.Context, dir string) ([]string, error) {
	lines, err := o.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, ModelsFile)
	content := modelsHeader + strings.Join(lines, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return nil, apperr.IO("could not write "+path, err)
	}
	o.logger.Debug("model cache refreshed", zap.String("path", path), zap.Int("lines", len(lines)))
	return lines, nil
}

// CachedModels parses the cache file in dir without running the tool.
func CachedModels(dir string) ([]Model, error) {
	path := filepath.Join(dir, ModelsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.NotFound("model cache", path, err)
		}
		return nil, apperr.IO("could not read "+path, err)
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) > 2 {
		lines = lines[2:]
	} else {
		lines = nil
	}
	return ParseModels(lines), nil
}
