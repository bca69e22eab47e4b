package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdidvp/detectlint/internal/adapters/outbound/cache"
	"github.com/abdidvp/detectlint/internal/adapters/outbound/gitinfo"
	"github.com/abdidvp/detectlint/internal/adapters/outbound/history"
	"github.com/abdidvp/detectlint/internal/adapters/outbound/scanner"
	"github.com/abdidvp/detectlint/internal/adapters/outbound/tui"
	"github.com/abdidvp/detectlint/internal/application"
	"github.com/abdidvp/detectlint/internal/domain"
)

func newBatchCmd(opts *rootOptions) *cobra.Command {
	var (
		manifest    string
		formatFlag  string
		concurrency int
		jsonOutput  bool
		ciMode      bool
		record      bool
		baseline    bool
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "batch [rule|dir] ...",
		Short: "Validate many rules concurrently",
		Long: fmt.Sprintf("Validate up to %d rules at once from paths and/or a YAML manifest. "+
			"Rules are validated in parallel; a rule that fails never affects the others.", domain.MaxBatchSize),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine(cmd, opts, metricsFile != "")
			if err != nil {
				return err
			}

			// 1. Collect detections
			var ds []domain.Detection
			if manifest != "" {
				ds, err = scanner.New(e.registry).LoadManifest(manifest)
				if err != nil {
					return err
				}
			}
			if len(args) > 0 {
				found, err := e.loadDetections(cmd, args, parseFormat(formatFlag))
				if err != nil {
					return err
				}
				ds = append(ds, found...)
			}
			if len(ds) == 0 {
				return errors.New("nothing to validate: pass rule paths or --manifest")
			}

			// 2. Run
			if concurrency <= 0 {
				concurrency = e.cfg.Concurrency
			}
			if concurrency <= 0 {
				concurrency = domain.DefaultConcurrency
			}
			orch := application.NewBatchOrchestrator(e.validator(), e.logger, e.observer())
			res, runErr := orch.Run(cmd.Context(), ds, application.BatchOptions{Concurrency: concurrency})
			if res == nil {
				return runErr
			}

			// 3. Side outputs
			if record && runErr == nil {
				if err := recordRun(e, res); err != nil {
					return err
				}
			}
			if e.collector != nil {
				if err := e.collector.WriteTextfile(metricsFile); err != nil {
					return err
				}
			}
			var regs []domain.Regression
			if baseline && runErr == nil {
				regs, err = compareBaseline(e, res)
				if err != nil {
					return err
				}
			}

			// 4. Render
			if jsonOutput {
				if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderBatch(res))
				if baseline {
					fmt.Fprint(cmd.OutOrStdout(), tui.RenderRegressions(regs))
				}
			}

			if runErr != nil {
				return runErr
			}
			if ciMode && res.Summary.Invalid > 0 {
				return fmt.Errorf("%d of %d detection(s) invalid", res.Summary.Invalid, res.Summary.Total)
			}
			if ciMode && len(regs) > 0 {
				return fmt.Errorf("%d detection(s) regressed against baseline", len(regs))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifest, "manifest", "m", "", "YAML manifest listing detections")
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Rule dialect for path arguments (overrides file extension)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "Concurrent validations (default from config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output batch result as JSON")
	cmd.Flags().BoolVar(&ciMode, "ci", false, "CI mode: exit 1 if any detection is invalid")
	cmd.Flags().BoolVar(&record, "record", false, "Append this run to the run history")
	cmd.Flags().BoolVar(&baseline, "baseline", false, "Compare against the stored baseline, then replace it with this run")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics for this run to a textfile")

	return cmd
}

// recordRun appends a summary of res to the run history, stamped with the
// commit the rules are at when they live in a git repository.
func recordRun(e *engine, res *domain.BatchResult) error {
	entry := domain.RunEntry{
		Timestamp:      time.Now().UTC(),
		Total:          res.Summary.Total,
		Valid:          res.Summary.Valid,
		Invalid:        res.Summary.Invalid,
		MeanConfidence: res.MeanConfidence(),
	}
	if g := gitinfo.New(); g.IsGitRepo(e.projectPath) {
		hash, err := g.CommitHash(e.projectPath)
		if err != nil {
			e.logger.Warn("recording run without commit hash", "error", err)
		}
		entry.CommitHash = hash
	}
	if err := history.New().Save(e.projectPath, entry); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// compareBaseline diffs res against the stored baseline and stores res as the
// new one. A baseline that cannot be read, or that was taken under a
// different config, is removed without comparing.
func compareBaseline(e *engine, res *domain.BatchResult) ([]domain.Regression, error) {
	store := cache.New()
	hash := e.cfg.Hash()

	prev, err := store.Load(e.projectPath)
	if err != nil {
		e.logger.Warn("discarding unreadable baseline", "error", err)
		if err := store.Invalidate(e.projectPath); err != nil {
			return nil, fmt.Errorf("removing baseline: %w", err)
		}
		prev = nil
	}

	var regs []domain.Regression
	switch {
	case prev == nil:
		e.logger.Info("no baseline found, recording one")
	case prev.IsInvalidated(hash):
		e.logger.Info("config changed since baseline, recording a new one")
		if err := store.Invalidate(e.projectPath); err != nil {
			return nil, fmt.Errorf("removing baseline: %w", err)
		}
	default:
		regs = prev.Regressions(res)
		for _, r := range regs {
			e.logger.Warn("detection regressed",
				"detection_id", r.DetectionID,
				"before", r.Before.Status,
				"after", r.After.Status,
				"confidence", r.After.ConfidenceScore)
		}
	}

	if err := store.Save(e.projectPath, domain.NewBaseline(res, hash)); err != nil {
		return nil, fmt.Errorf("saving baseline: %w", err)
	}
	return regs, nil
}
