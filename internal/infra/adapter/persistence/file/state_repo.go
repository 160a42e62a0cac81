// Package file stores the seen-state as a JSON document on the local disk.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"rss-monitor/internal/domain/entity"
	"rss-monitor/internal/infra/adapter/persistence/statejson"
	"rss-monitor/internal/repository"
)

// StateRepo keeps the seen-state in a local JSON file.
type StateRepo struct{ path string }

// NewStateRepo returns a repository backed by the file at path.
func NewStateRepo(path string) repository.StateRepository {
	return &StateRepo{path: path}
}

// Load reads the state file. A missing file is an empty state.
func (repo *StateRepo) Load(ctx context.Context) (entity.SeenState, error) {
	data, err := os.ReadFile(repo.path)
	if errors.Is(err, fs.ErrNotExist) {
		return entity.SeenState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Load: ReadFile: %w", err)
	}
	state, err := statejson.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("Load: %s: %w", repo.path, err)
	}
	return state, nil
}

// Save writes the state to a temporary file in the same directory, syncs it
// and renames it over the previous file, so readers see either the old or
// the new document.
func (repo *StateRepo) Save(ctx context.Context, state entity.SeenState) error {
	data, err := statejson.Marshal(state)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}

	dir := filepath.Dir(repo.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("Save: MkdirAll: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(repo.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("Save: CreateTemp: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("Save: Write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("Save: Sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("Save: Close: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("Save: Chmod: %w", err)
	}
	if err := os.Rename(tmpName, repo.path); err != nil {
		return fmt.Errorf("Save: Rename: %w", err)
	}
	committed = true
	return nil
}
