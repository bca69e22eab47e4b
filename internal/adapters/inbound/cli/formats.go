package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdidvp/detectlint/internal/adapters/outbound/tui"
)

func newFormatsCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List supported rule dialects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine(cmd, opts, false)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), e.service.Formats())
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderFormats(e.registry.Entries()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output formats as JSON")
	return cmd
}
