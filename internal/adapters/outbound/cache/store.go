package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdidvp/detectlint/internal/domain"
)

// Store keeps the batch baseline of a rules repository on disk.
type Store struct{}

// New creates a new file-based baseline store.
func New() *Store {
	return &Store{}
}

// Load reads the baseline of projectPath. Returns (nil, nil) if none exists.
func (s *Store) Load(projectPath string) (*domain.Baseline, error) {
	data, err := os.ReadFile(baselinePath(projectPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // no baseline is not an error
		}
		return nil, fmt.Errorf("reading baseline: %w", err)
	}

	var b domain.Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decoding baseline: %w", err)
	}
	return &b, nil
}

// Save writes b as the baseline of projectPath, creating directories as needed.
func (s *Store) Save(projectPath string, b *domain.Baseline) error {
	if err := os.MkdirAll(baselineDir(projectPath), 0o755); err != nil {
		return fmt.Errorf("creating baseline dir: %w", err)
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding baseline: %w", err)
	}

	return os.WriteFile(baselinePath(projectPath), data, 0o644)
}

// Invalidate removes the baseline of projectPath.
func (s *Store) Invalidate(projectPath string) error {
	if err := os.Remove(baselinePath(projectPath)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func baselineDir(projectPath string) string {
	return filepath.Join(projectPath, ".detectlint", "cache")
}

func baselinePath(projectPath string) string {
	return filepath.Join(baselineDir(projectPath), "baseline.json")
}
