package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdidvp/detectlint/internal/adapters/outbound/history"
	"github.com/abdidvp/detectlint/internal/adapters/outbound/tui"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		jsonOutput bool
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded batch runs",
		Long:  "Show the batch runs recorded with `detectlint batch --record`, oldest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(opts.projectPath)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			entries, err := history.New().Load(absPath)
			if err != nil {
				return fmt.Errorf("loading history: %w", err)
			}
			entries = history.Tail(entries, limit)

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderHistory(entries))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output history as JSON")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show only the last n runs")
	return cmd
}
