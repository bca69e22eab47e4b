package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdidvp/detectlint/internal/domain"
)

// File is where batch runs are recorded, relative to the rules repository.
const File = ".detectlint/history/runs.json"

// FileHistory implements domain.RunHistory on a JSON file.
type FileHistory struct{}

func New() *FileHistory {
	return &FileHistory{}
}

// Save appends entry to the run log of projectPath.
func (h *FileHistory) Save(projectPath string, entry domain.RunEntry) error {
	entries, err := h.Load(projectPath)
	if err != nil {
		return err
	}
	entries = append(entries, entry)

	fp := filepath.Join(projectPath, File)
	if err := os.MkdirAll(filepath.Dir(fp), 0o755); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding run history: %w", err)
	}

	// Write-then-rename keeps a crash from truncating the log.
	tmp := fp + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing run history: %w", err)
	}
	return os.Rename(tmp, fp)
}

// Load returns recorded runs oldest first, or nil when none exist.
func (h *FileHistory) Load(projectPath string) ([]domain.RunEntry, error) {
	data, err := os.ReadFile(filepath.Join(projectPath, File))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading run history: %w", err)
	}

	var entries []domain.RunEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", File, err)
	}
	return entries, nil
}

// Tail returns at most n of the most recent entries, oldest first.
func Tail(entries []domain.RunEntry, n int) []domain.RunEntry {
	if n <= 0 || len(entries) <= n {
		return entries
	}
	return entries[len(entries)-n:]
}
