package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/abdidvp/detectlint/internal/domain"
)

// BatchOptions tune one batch run.
type BatchOptions struct {
	Concurrency int
}

// BatchOrchestrator fans a batch of detections out to a bounded worker pool.
// Each worker owns the result of the detection it validates; results are
// combined only after every worker has finished.
type BatchOrchestrator struct {
	validator Validator
	logger    *slog.Logger
	observer  domain.ValidationObserver
}

// NewBatchOrchestrator creates an orchestrator. logger and observer may be nil.
func NewBatchOrchestrator(v Validator, logger *slog.Logger, observer domain.ValidationObserver) *BatchOrchestrator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BatchOrchestrator{validator: v, logger: logger, observer: observer}
}

// Run validates ds with at most opts.Concurrency detections in flight.
//
// A batch larger than domain.MaxBatchSize is rejected before any detection is
// touched. Per-item failures, including precondition errors and panics, are
// folded into that item's result. Detections without an id get a generated
// one; when two detections share an id the later one wins the map entry.
// If ctx is cancelled no new detections are started and the completed
// results are returned together with ctx.Err().
func (o *BatchOrchestrator) Run(ctx context.Context, ds []domain.Detection, opts BatchOptions) (*domain.BatchResult, error) {
	// 1. Reject oversized batches up front
	if len(ds) > domain.MaxBatchSize {
		o.logger.Warn("batch rejected", "size", len(ds), "limit", domain.MaxBatchSize)
		return nil, &domain.BatchTooLargeError{Size: len(ds), Limit: domain.MaxBatchSize}
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = domain.DefaultConcurrency
	}
	start := time.Now()

	// 2. Give every detection an id without touching the caller's slice
	items := make([]domain.Detection, len(ds))
	for i, d := range ds {
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		items[i] = d
	}

	// 3. Fan out; each worker writes only its own slot
	results := make([]*domain.ValidationResult, len(items))
	var g errgroup.Group
	g.SetLimit(limit)
	for i := range items {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			results[i] = o.validateItem(items[i])
			return nil
		})
	}
	_ = g.Wait()

	// 4. Reduce
	out := &domain.BatchResult{
		Results: make(map[string]*domain.ValidationResult, len(items)),
		Summary: domain.Summarize(len(items), results),
	}
	for i, r := range results {
		if r == nil {
			continue
		}
		id := items[i].ID
		if _, seen := out.Results[id]; !seen {
			out.Order = append(out.Order, id)
		}
		out.Results[id] = r
	}

	elapsed := time.Since(start)
	o.logger.Info("batch completed",
		"total", out.Summary.Total,
		"valid", out.Summary.Valid,
		"invalid", out.Summary.Invalid,
		"concurrency", limit,
		"elapsed", elapsed)
	if o.observer != nil {
		o.observer.ObserveBatch(out.Summary, elapsed)
	}
	if err := ctx.Err(); err != nil {
		return out, fmt.Errorf("batch interrupted after %d of %d detections: %w", len(out.Results), len(items), err)
	}
	return out, nil
}

func (o *BatchOrchestrator) validateItem(d domain.Detection) (r *domain.ValidationResult) {
	defer func() {
		if p := recover(); p != nil {
			o.logger.Error("validation panicked", "detection_id", d.ID, "panic", p)
			r = failedResult(d, domain.ValidationIssue{
				Message:  fmt.Sprintf("validation panicked: %v", p),
				Severity: domain.SeverityHigh,
				Code:     domain.CodeUnknown,
			})
		}
	}()

	res, err := o.validator.ValidateOne(d)
	if err != nil {
		return failedResult(d, domain.FailureIssue(err))
	}
	return res
}

func failedResult(d domain.Detection, issue domain.ValidationIssue) *domain.ValidationResult {
	r := domain.NewResult(d)
	r.AddIssue(issue)
	r.Complete()
	return r
}
