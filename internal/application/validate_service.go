package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abdidvp/detectlint/internal/domain"
	"github.com/abdidvp/detectlint/internal/domain/dialect"
)

// Validator validates a single detection in collect mode.
type Validator interface {
	ValidateOne(d domain.Detection) (*domain.ValidationResult, error)
}

// ValidationService runs detections through the dialect pipeline:
// precondition checks → sanitize → signature → format → inspect → result.
type ValidationService struct {
	registry    *dialect.Registry
	profile     domain.DialectProfile
	observer    domain.ValidationObserver
	logger      *slog.Logger
	concurrency int
}

// Option configures a ValidationService.
type Option func(*ValidationService)

func WithRegistry(r *dialect.Registry) Option {
	return func(s *ValidationService) { s.registry = r }
}

func WithProfile(p domain.DialectProfile) Option {
	return func(s *ValidationService) { s.profile = p }
}

func WithObserver(o domain.ValidationObserver) Option {
	return func(s *ValidationService) { s.observer = o }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *ValidationService) { s.logger = l }
}

// WithConcurrency sets the default batch worker count.
func WithConcurrency(n int) Option {
	return func(s *ValidationService) { s.concurrency = n }
}

// Concurrency returns the batch worker count used when a caller sets none.
func (s *ValidationService) Concurrency() int {
	if s.concurrency <= 0 {
		return domain.DefaultConcurrency
	}
	return s.concurrency
}

// NewValidationService creates a service over the built-in dialects unless
// WithRegistry says otherwise.
func NewValidationService(opts ...Option) *ValidationService {
	s := &ValidationService{
		registry:    dialect.Default(),
		profile:     domain.DefaultProfile(),
		concurrency: domain.DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// Registry returns the dialect registry the service validates against.
func (s *ValidationService) Registry() *dialect.Registry { return s.registry }

// ValidateOne validates d and folds every structural problem into the
// returned result. Only an unsupported format or oversized content is
// returned as an error.
func (s *ValidationService) ValidateOne(d domain.Detection) (*domain.ValidationResult, error) {
	start := time.Now()

	// 1. Preconditions
	entry, err := s.registry.Lookup(d.Format)
	if err != nil {
		s.logger.Warn("detection rejected", "detection_id", d.ID, "format", d.Format, "error", err)
		return nil, err
	}
	if err := dialect.CheckSize(d.Content); err != nil {
		s.logger.Warn("detection rejected", "detection_id", d.ID, "format", d.Format, "error", err)
		return nil, err
	}

	r := domain.NewResult(d)

	// 2. Structural validation; a failure becomes a high severity issue
	n, err := s.registry.Validate(d.Content, d.Format)
	checks := n.Checks
	if err != nil {
		r.AddIssue(domain.FailureIssue(err))
	} else {
		// 3. Non-fatal dialect inspection
		r.NormalizedContent = n.Content
		in := s.registry.Inspect(n, s.profile)
		in.Apply(r)
		checks = append(checks, in.Checks...)
	}

	// 4. Close the result
	r.RecordChecks(entry.KnownChecks(), checks)
	r.Complete()

	elapsed := time.Since(start)
	s.logger.Debug("validation completed",
		"detection_id", d.ID,
		"format", d.Format,
		"status", r.Status,
		"confidence", r.ConfidenceScore,
		"issues", len(r.Issues),
		"elapsed", elapsed)
	if s.observer != nil {
		s.observer.ObserveValidation(r, elapsed)
	}
	return r, nil
}

// Normalize validates d in fail-fast mode and returns its canonical content.
// Structural problems come back as *domain.StructuralError.
func (s *ValidationService) Normalize(d domain.Detection) (string, error) {
	n, err := s.registry.Validate(d.Content, d.Format)
	if err != nil {
		return "", fmt.Errorf("detection %q: %w", d.ID, err)
	}
	return n.Content, nil
}

// ValidateBatch validates ds concurrently. See BatchOrchestrator.Run.
func (s *ValidationService) ValidateBatch(ctx context.Context, ds []domain.Detection, opts BatchOptions) (*domain.BatchResult, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = s.concurrency
	}
	return NewBatchOrchestrator(s, s.logger, s.observer).Run(ctx, ds, opts)
}

// BuildReport derives the report for a completed result.
func (s *ValidationService) BuildReport(r *domain.ValidationResult) domain.ValidationReport {
	return domain.BuildReport(r)
}

// FormatInfo describes one registered dialect.
type FormatInfo struct {
	Format     domain.Format `json:"format"`
	Name       string        `json:"name"`
	Extensions []string      `json:"extensions"`
	Checks     []string      `json:"checks"`
}

// Formats describes the dialects the service accepts, in registry order.
func (s *ValidationService) Formats() []FormatInfo {
	entries := s.registry.Entries()
	out := make([]FormatInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, FormatInfo{
			Format:     e.Format,
			Name:       e.Name,
			Extensions: e.Extensions,
			Checks:     e.KnownChecks(),
		})
	}
	return out
}
