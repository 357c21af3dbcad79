package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/sprintlens/pkg/domain"
	"github.com/felixgeelhaar/sprintlens/pkg/domain/normalize"
)

// Payload file naming inside a FileProvider root.
const (
	sprintFilePrefix  = "sprint-"
	itemsFilePrefix   = "items-"
	historyFilePrefix = "history-"
)

// FileProvider reads collaborator payloads from JSON files in a single
// directory: sprint-<id>.json, items-<project>.json and
// history-<project>.json. It pairs with the watch package, which
// invalidates the analytics cache when a payload file changes.
type FileProvider struct {
	root   string
	logger *slog.Logger
}

// NewFileProvider creates a provider over a payload directory.
func NewFileProvider(root string, logger *slog.Logger) *FileProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileProvider{root: root, logger: logger}
}

// Root returns the payload directory.
func (p *FileProvider) Root() string {
	return p.root
}

// FetchSprint reads and validates sprint-<id>.json.
func (p *FileProvider) FetchSprint(ctx context.Context, sprintID string) (*normalize.SprintPayload, error) {
	data, err := p.read(ctx, sprintFilePrefix+sprintID+".json")
	if err != nil {
		return nil, err
	}
	if err := normalize.ValidatePayload(data); err != nil {
		return nil, fmt.Errorf("sprint %s: %w", sprintID, err)
	}

	var payload normalize.SprintPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode sprint %s: %w", sprintID, err)
	}
	return &payload, nil
}

// FetchSprintHistory reads history-<project>.json, truncated to limit.
func (p *FileProvider) FetchSprintHistory(ctx context.Context, projectID string, limit int) ([]domain.SprintSummary, error) {
	data, err := p.read(ctx, historyFilePrefix+projectID+".json")
	if err != nil {
		return nil, err
	}

	var history []domain.SprintSummary
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("decode history for %s: %w", projectID, err)
	}
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history, nil
}

// FetchWorkItems reads items-<project>.json.
func (p *FileProvider) FetchWorkItems(ctx context.Context, projectID string) ([]map[string]any, error) {
	data, err := p.read(ctx, itemsFilePrefix+projectID+".json")
	if err != nil {
		return nil, err
	}

	var items []map[string]any
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode items for %s: %w", projectID, err)
	}
	return items, nil
}

// read loads a payload file, rejecting names that escape the root.
func (p *FileProvider) read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full := filepath.Join(p.root, filepath.Clean(name))
	if !strings.HasPrefix(full, filepath.Clean(p.root)+string(filepath.Separator)) {
		return nil, fmt.Errorf("invalid payload file name: %s", name)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("payload %s not found in %s", name, p.root)
		}
		return nil, fmt.Errorf("read payload %s: %w", name, err)
	}
	return data, nil
}
