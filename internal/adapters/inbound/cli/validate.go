package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdidvp/detectlint/internal/adapters/outbound/tui"
	"github.com/abdidvp/detectlint/internal/domain"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var (
		formatFlag string
		jsonOutput bool
		strict     bool
		report     bool
	)

	cmd := &cobra.Command{
		Use:   "validate <rule|dir|-> ...",
		Short: "Validate detection rules",
		Long: "Validate rule files, directories of rule files, or a rule on stdin (\"-\", requires --format). " +
			"The format is taken from the file extension unless --format is set. " +
			"Exits non-zero when any rule fails; with --strict warnings fail too and validation stops at the first failing rule.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine(cmd, opts, false)
			if err != nil {
				return err
			}
			strict = strict || e.cfg.Strict

			ds, err := e.loadDetections(cmd, args, parseFormat(formatFlag))
			if err != nil {
				return err
			}

			v := e.validator()
			results := make([]*domain.ValidationResult, 0, len(ds))
			failed := 0
			for _, d := range ds {
				r, err := v.ValidateOne(d)
				if err != nil {
					return fmt.Errorf("validating %s: %w", d.ID, err)
				}
				results = append(results, r)
				if !passes(r, strict) {
					failed++
					if strict {
						break
					}
				}
			}

			if err := renderResults(cmd, results, jsonOutput, report); err != nil {
				return err
			}

			if failed > 0 {
				if strict {
					return fmt.Errorf("validation failed (strict): %s is %s", results[len(results)-1].DetectionID, results[len(results)-1].Status)
				}
				return fmt.Errorf("validation failed: %d of %d detection(s) invalid", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Rule dialect (overrides file extension)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on warnings and stop at the first failing rule")
	cmd.Flags().BoolVar(&report, "report", false, "Show the full report for each rule")

	return cmd
}

// passes reports whether r is acceptable. Strict mode only accepts success.
func passes(r *domain.ValidationResult, strict bool) bool {
	if strict {
		return r.Status == domain.StatusSuccess
	}
	return r.Status != domain.StatusError
}

func renderResults(cmd *cobra.Command, results []*domain.ValidationResult, jsonOutput, report bool) error {
	out := cmd.OutOrStdout()
	if jsonOutput {
		var v any = results
		if report {
			reports := make([]domain.ValidationReport, len(results))
			for i, r := range results {
				reports[i] = domain.BuildReport(r)
			}
			v = reports
		}
		return writeJSON(out, v)
	}

	for _, r := range results {
		if report {
			fmt.Fprint(out, tui.RenderReport(domain.BuildReport(r)))
		} else {
			fmt.Fprint(out, tui.RenderResult(r))
		}
	}
	return nil
}
