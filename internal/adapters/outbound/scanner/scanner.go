package scanner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/abdidvp/detectlint/internal/domain"
)

var skipDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	".git":         true,
	".detectlint":  true,
}

// FormatResolver maps a file extension to the dialect stored in such files.
type FormatResolver interface {
	ForExtension(ext string) (domain.Format, bool)
}

// FileScanner turns rule files on disk into detections.
type FileScanner struct {
	resolver FormatResolver
}

func New(resolver FormatResolver) *FileScanner {
	return &FileScanner{resolver: resolver}
}

// Scan loads a detection from every rule file under paths. Each path may be a
// file or a directory. Inside directories, files whose extension maps to no
// format are ignored; a file named explicitly must resolve or format must be
// given. A non-empty format overrides extension lookup everywhere.
func (s *FileScanner) Scan(paths []string, format domain.Format, excludePaths ...string) ([]domain.Detection, error) {
	extraSkip := make(map[string]bool, len(excludePaths))
	for _, p := range excludePaths {
		extraSkip[strings.TrimSuffix(p, "/")] = true
	}

	var out []domain.Detection
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", p, err)
		}

		if !info.IsDir() {
			f, ok := s.resolve(p, format)
			if !ok {
				return nil, fmt.Errorf("cannot infer format of %s from its extension, pass a format explicitly", p)
			}
			d, err := readDetection(p, filepath.ToSlash(filepath.Clean(p)), f)
			if err != nil {
				return nil, err
			}
			out = append(out, d)
			continue
		}

		found, err := s.walk(p, format, extraSkip)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	return out, nil
}

func (s *FileScanner) walk(root string, format domain.Format, extraSkip map[string]bool) ([]domain.Detection, error) {
	var out []domain.Detection
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && (skipDirs[d.Name()] || extraSkip[d.Name()]) {
				return filepath.SkipDir
			}
			return nil
		}

		f, ok := s.resolve(path, format)
		if !ok {
			return nil
		}

		relPath, _ := filepath.Rel(root, path)
		det, err := readDetection(path, filepath.ToSlash(relPath), f)
		if err != nil {
			return err
		}
		out = append(out, det)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *FileScanner) resolve(path string, format domain.Format) (domain.Format, bool) {
	if format != "" {
		return format, true
	}
	if s.resolver == nil {
		return "", false
	}
	return s.resolver.ForExtension(filepath.Ext(path))
}

func readDetection(path, id string, format domain.Format) (domain.Detection, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Detection{}, err
	}
	defer f.Close()

	content, err := ReadContent(f)
	if err != nil {
		return domain.Detection{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return domain.Detection{
		ID:       id,
		Content:  content,
		Format:   format,
		Metadata: map[string]string{"path": path},
	}, nil
}

// ReadContent reads rule text from r. Reading stops one byte past the content
// limit so oversized input is still rejected by the size check without being
// held in memory in full.
func ReadContent(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, domain.MaxContentBytes+1))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
