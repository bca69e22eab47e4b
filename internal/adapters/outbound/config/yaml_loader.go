package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdidvp/detectlint/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileName is the per-repository configuration file.
const FileName = ".detectlint.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .detectlint.yaml and
// overlaying DETECTLINT_* environment variables.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .detectlint.yaml from projectPath.
// Returns DefaultConfig plus environment overrides if the file does not exist.
func (l *YAMLLoader) Load(projectPath string) (domain.EngineConfig, error) {
	cfg, err := l.loadFile(projectPath)
	if err != nil {
		return domain.EngineConfig{}, err
	}

	cfg, err = applyEnv(cfg)
	if err != nil {
		return domain.EngineConfig{}, fmt.Errorf("reading environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return domain.EngineConfig{}, fmt.Errorf("invalid environment override: %w", err)
	}
	return cfg, nil
}

func (l *YAMLLoader) loadFile(projectPath string) (domain.EngineConfig, error) {
	data, err := os.ReadFile(filepath.Join(projectPath, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return domain.EngineConfig{}, err
	}

	var cfg domain.EngineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.EngineConfig{}, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	// Validate before merging so typos in the raw file are reported.
	if err := cfg.Validate(); err != nil {
		return domain.EngineConfig{}, fmt.Errorf("invalid %s: %w", FileName, err)
	}

	return mergeConfig(domain.DefaultConfig(), cfg), nil
}

// mergeConfig overlays explicit values on top of defaults.
// Explicit (non-zero) values always win.
func mergeConfig(base, override domain.EngineConfig) domain.EngineConfig {
	result := base

	if override.Concurrency > 0 {
		result.Concurrency = override.Concurrency
	}
	if len(override.Formats) > 0 {
		result.Formats = override.Formats
	}
	result.Strict = override.Strict
	if override.LogLevel != "" {
		result.LogLevel = override.LogLevel
	}
	if override.LogFormat != "" {
		result.LogFormat = override.LogFormat
	}
	if override.CacheTTL > 0 {
		result.CacheTTL = override.CacheTTL
	}
	if override.Profile.MaxPipelineDepth > 0 {
		result.Profile.MaxPipelineDepth = override.Profile.MaxPipelineDepth
	}
	if override.Profile.RequireSigmaSections != nil {
		result.Profile.RequireSigmaSections = override.Profile.RequireSigmaSections
	}

	return result
}
