package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/benvon/daily-agent/internal/models"
)

// FilePersister stores each state collection as a JSON file in a directory
type FilePersister struct {
	dir string
}

// NewFilePersister creates the directory if needed and returns a persister rooted there
func NewFilePersister(dir string) (*FilePersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &FilePersister{dir: dir}, nil
}

func (p *FilePersister) path(name string) string {
	return filepath.Join(p.dir, name+".json")
}

// Load implements Persister
func (p *FilePersister) Load(ctx context.Context) (*models.State, error) {
	collections := make(map[string][]byte)
	for _, name := range models.StateKeys {
		data, err := os.ReadFile(p.path(name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		collections[name] = data
	}
	return decodeState(collections)
}

// Save implements Persister. Each file is replaced atomically via rename.
func (p *FilePersister) Save(ctx context.Context, state *models.State) error {
	collections, err := encodeState(state)
	if err != nil {
		return err
	}

	for _, name := range models.StateKeys {
		tmp := p.path(name) + ".tmp"
		if err := os.WriteFile(tmp, collections[name], 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		if err := os.Rename(tmp, p.path(name)); err != nil {
			return fmt.Errorf("failed to replace %s: %w", name, err)
		}
	}
	return nil
}

// Close implements Persister
func (p *FilePersister) Close() error {
	return nil
}
