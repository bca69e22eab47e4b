package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdidvp/detectlint/internal/adapters/outbound/config"
	"github.com/abdidvp/detectlint/internal/adapters/outbound/metrics"
	"github.com/abdidvp/detectlint/internal/adapters/outbound/scanner"
	"github.com/abdidvp/detectlint/internal/application"
	"github.com/abdidvp/detectlint/internal/domain"
	"github.com/abdidvp/detectlint/internal/domain/dialect"
	"github.com/abdidvp/detectlint/internal/logging"
)

// engine is the wiring shared by the commands: configuration, logger, the
// validation service and, when requested, a metrics collector.
type engine struct {
	projectPath string
	cfg         domain.EngineConfig
	logger      *slog.Logger
	registry    *dialect.Registry
	service     *application.ValidationService
	collector   *metrics.Collector
}

// newEngine loads configuration and builds the validation service. When
// withMetrics is set every validation is also recorded in a Prometheus
// collector.
func newEngine(cmd *cobra.Command, opts *rootOptions, withMetrics bool) (*engine, error) {
	// 1. Load config
	absPath, err := filepath.Abs(opts.projectPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.New().Load(absPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.LogFormat = opts.logFormat
	}

	// 2. Logger on stderr so JSON output stays clean
	logger := logging.New(cmd.ErrOrStderr(), logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	// 3. Dialects allowed by config
	registry, err := dialect.Default().Restrict(cfg.Formats...)
	if err != nil {
		return nil, fmt.Errorf("restricting formats: %w", err)
	}

	e := &engine{projectPath: absPath, cfg: cfg, logger: logger, registry: registry}

	// 4. Service
	svcOpts := []application.Option{
		application.WithRegistry(registry),
		application.WithProfile(cfg.Profile),
		application.WithLogger(logger),
	}
	if cfg.Concurrency > 0 {
		svcOpts = append(svcOpts, application.WithConcurrency(cfg.Concurrency))
	}
	if withMetrics {
		collector, err := metrics.New()
		if err != nil {
			return nil, err
		}
		e.collector = collector
		svcOpts = append(svcOpts, application.WithObserver(collector))
	}
	e.service = application.NewValidationService(svcOpts...)
	return e, nil
}

// validator returns the service, memoized when the config sets a cache TTL.
func (e *engine) validator() application.Validator {
	if e.cfg.CacheTTL > 0 {
		return application.NewCachedValidator(e.service, e.cfg.CacheTTL, e.observer())
	}
	return e.service
}

// observer returns the metrics collector as a port, or nil without metrics.
func (e *engine) observer() domain.ValidationObserver {
	if e.collector == nil {
		return nil
	}
	return e.collector
}

// loadDetections reads the rule files named by args. "-" reads one detection
// from stdin, which requires format.
func (e *engine) loadDetections(cmd *cobra.Command, args []string, format domain.Format) ([]domain.Detection, error) {
	var (
		ds    []domain.Detection
		paths []string
	)
	for _, a := range args {
		if a != "-" {
			paths = append(paths, a)
			continue
		}
		if format == "" {
			return nil, fmt.Errorf("reading stdin requires --format")
		}
		content, err := scanner.ReadContent(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		ds = append(ds, domain.Detection{ID: "stdin", Content: content, Format: format})
	}

	if len(paths) > 0 {
		found, err := scanner.New(e.registry).Scan(paths, format)
		if err != nil {
			return nil, err
		}
		ds = append(ds, found...)
	}
	if len(ds) == 0 {
		return nil, fmt.Errorf("no detection rules found")
	}
	return ds, nil
}

func parseFormat(s string) domain.Format {
	return domain.Format(strings.ToLower(strings.TrimSpace(s)))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
