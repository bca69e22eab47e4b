package scanner

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/abdidvp/detectlint/internal/domain"
)

// Manifest lists the detections of one batch.
//
//	detections:
//	  - id: brute-force
//	    format: splunk
//	    content: index=auth action=failure | stats count by user
//	  - id: lsass
//	    format: sigma
//	    path: rules/lsass.yml
type Manifest struct {
	Detections []ManifestEntry `yaml:"detections"`
}

// ManifestEntry is one detection. Exactly one of Content or Path is set;
// Path is relative to the manifest file.
type ManifestEntry struct {
	ID       string            `yaml:"id"`
	Format   domain.Format     `yaml:"format"`
	Content  string            `yaml:"content,omitempty"`
	Path     string            `yaml:"path,omitempty"`
	Metadata map[string]string `yaml:"metadata,omitempty"`
}

// LoadManifest reads a YAML manifest and resolves it into detections.
// Entries without a format take it from the extension of their path.
func (s *FileScanner) LoadManifest(path string) ([]domain.Detection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	base := filepath.Dir(path)
	out := make([]domain.Detection, 0, len(m.Detections))
	for i, e := range m.Detections {
		d, err := s.resolveEntry(base, e)
		if err != nil {
			return nil, fmt.Errorf("manifest entry %d: %w", i+1, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *FileScanner) resolveEntry(base string, e ManifestEntry) (domain.Detection, error) {
	switch {
	case e.Content != "" && e.Path != "":
		return domain.Detection{}, fmt.Errorf("content and path are mutually exclusive")
	case e.Path != "":
		full := e.Path
		if !filepath.IsAbs(full) {
			full = filepath.Join(base, full)
		}
		format, ok := s.resolve(full, e.Format)
		if !ok {
			return domain.Detection{}, fmt.Errorf("cannot infer format of %s", e.Path)
		}
		id := e.ID
		if id == "" {
			id = filepath.ToSlash(e.Path)
		}
		d, err := readDetection(full, id, format)
		if err != nil {
			return domain.Detection{}, err
		}
		for k, v := range e.Metadata {
			d.Metadata[k] = v
		}
		return d, nil
	default:
		// Empty content is passed through; the engine reports it.
		return domain.Detection{ID: e.ID, Content: e.Content, Format: e.Format, Metadata: e.Metadata}, nil
	}
}
