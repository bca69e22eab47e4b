package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// EngineConfig holds engine configuration loaded from .detectlint.yaml.
type EngineConfig struct {
	Concurrency int            `yaml:"concurrency"         json:"concurrency,omitempty"`
	Formats     []Format       `yaml:"formats"             json:"formats,omitempty"`
	Strict      bool           `yaml:"strict"              json:"strict,omitempty"`
	LogLevel    string         `yaml:"log_level"           json:"log_level,omitempty"`
	LogFormat   string         `yaml:"log_format"          json:"log_format,omitempty"`
	CacheTTL    time.Duration  `yaml:"cache_ttl"           json:"cache_ttl,omitempty"`
	Profile     DialectProfile `yaml:"profile,omitempty"   json:"profile,omitempty"`
}

// DialectProfile tunes the non-fatal inspections that run after a detection
// passes its structural checks. Pointer types distinguish "not specified" from
// zero values.
type DialectProfile struct {
	MaxPipelineDepth     int   `yaml:"max_pipeline_depth,omitempty"     json:"max_pipeline_depth,omitempty"`
	RequireSigmaSections *bool `yaml:"require_sigma_sections,omitempty" json:"require_sigma_sections,omitempty"`
}

// DefaultMaxPipelineDepth bounds the number of pipe stages before a search is
// flagged as overly complex.
const DefaultMaxPipelineDepth = 10

var validLogLevels = []string{"debug", "info", "warn", "error"}

var validLogFormats = []string{"text", "json"}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() EngineConfig {
	return EngineConfig{
		Concurrency: DefaultConcurrency,
		LogLevel:    "info",
		LogFormat:   "text",
		Profile:     DefaultProfile(),
	}
}

// DefaultProfile returns the inspection profile with every knob at its default.
func DefaultProfile() DialectProfile {
	require := true
	return DialectProfile{
		MaxPipelineDepth:     DefaultMaxPipelineDepth,
		RequireSigmaSections: &require,
	}
}

// SigmaSectionsRequired reports whether Sigma rules must carry detection and
// logsource sections.
func (p DialectProfile) SigmaSectionsRequired() bool {
	return p.RequireSigmaSections == nil || *p.RequireSigmaSections
}

// PipelineDepthLimit returns MaxPipelineDepth or its default when unset.
func (p DialectProfile) PipelineDepthLimit() int {
	if p.MaxPipelineDepth <= 0 {
		return DefaultMaxPipelineDepth
	}
	return p.MaxPipelineDepth
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c EngineConfig) Validate() error {
	// 1. concurrency must fit a batch
	if c.Concurrency < 0 || c.Concurrency > MaxBatchSize {
		return fmt.Errorf("concurrency %d out of range (must be 1-%d)", c.Concurrency, MaxBatchSize)
	}

	// 2. formats must be known dialects
	seen := make(map[Format]bool, len(c.Formats))
	for _, f := range c.Formats {
		if !IsKnownFormat(f) {
			return fmt.Errorf("unknown format %q in formats", f)
		}
		if seen[f] {
			return fmt.Errorf("duplicate format %q in formats", f)
		}
		seen[f] = true
	}

	// 3. log settings
	if c.LogLevel != "" && !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel)
	}
	if c.LogFormat != "" && !contains(validLogFormats, c.LogFormat) {
		return fmt.Errorf("unknown log_format %q (valid: text, json)", c.LogFormat)
	}

	// 4. cache_ttl cannot be negative
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl %s cannot be negative", c.CacheTTL)
	}

	// 5. pipeline depth cannot be negative
	if c.Profile.MaxPipelineDepth < 0 {
		return fmt.Errorf("profile.max_pipeline_depth %d cannot be negative", c.Profile.MaxPipelineDepth)
	}

	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Hash fingerprints the settings that change validation outcomes.
func (c EngineConfig) Hash() string {
	data, _ := json.Marshal(struct {
		Formats []Format       `json:"formats"`
		Profile DialectProfile `json:"profile"`
	}{c.Formats, c.Profile})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
