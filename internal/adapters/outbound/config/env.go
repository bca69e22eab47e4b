package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/abdidvp/detectlint/internal/domain"
)

// EnvPrefix prefixes every environment variable detectlint reads.
const EnvPrefix = "DETECTLINT"

var envKeys = []string{
	"concurrency",
	"formats",
	"strict",
	"log_level",
	"log_format",
	"cache_ttl",
	"profile.max_pipeline_depth",
}

// applyEnv overlays DETECTLINT_* variables, for example DETECTLINT_CONCURRENCY
// or DETECTLINT_PROFILE_MAX_PIPELINE_DEPTH, on top of cfg.
func applyEnv(cfg domain.EngineConfig) (domain.EngineConfig, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return cfg, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if v.IsSet("concurrency") {
		cfg.Concurrency = v.GetInt("concurrency")
	}
	if v.IsSet("formats") {
		cfg.Formats = parseFormats(v.GetString("formats"))
	}
	if v.IsSet("strict") {
		cfg.Strict = v.GetBool("strict")
	}
	if v.IsSet("log_level") {
		cfg.LogLevel = strings.ToLower(v.GetString("log_level"))
	}
	if v.IsSet("log_format") {
		cfg.LogFormat = strings.ToLower(v.GetString("log_format"))
	}
	if v.IsSet("cache_ttl") {
		cfg.CacheTTL = v.GetDuration("cache_ttl")
	}
	if v.IsSet("profile.max_pipeline_depth") {
		cfg.Profile.MaxPipelineDepth = v.GetInt("profile.max_pipeline_depth")
	}
	return cfg, nil
}

func parseFormats(s string) []domain.Format {
	var out []domain.Format
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		out = append(out, domain.Format(strings.ToLower(f)))
	}
	return out
}
