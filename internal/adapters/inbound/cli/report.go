package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdidvp/detectlint/internal/adapters/outbound/tui"
)

func newReportCmd(opts *rootOptions) *cobra.Command {
	var (
		formatFlag string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "report <rule|->",
		Short: "Show the validation report for one rule",
		Long:  "Validate a single rule and print its report: severity summary, confidence, check coverage, dialect details and recommendations.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine(cmd, opts, false)
			if err != nil {
				return err
			}

			ds, err := e.loadDetections(cmd, args, parseFormat(formatFlag))
			if err != nil {
				return err
			}
			if len(ds) != 1 {
				return fmt.Errorf("report takes exactly one rule, found %d", len(ds))
			}

			r, err := e.service.ValidateOne(ds[0])
			if err != nil {
				return fmt.Errorf("validating %s: %w", ds[0].ID, err)
			}

			rep := e.service.BuildReport(r)
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), rep)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderReport(rep))
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Rule dialect (overrides file extension)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output report as JSON")

	return cmd
}
