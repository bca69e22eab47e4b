package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	projectPath string
	logLevel    string
	logFormat   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "detectlint",
		Short: "Validate detection rules before they ship",
		Long: "detectlint checks detection rules written in Splunk SPL, Sigma, KQL, YARA, YARA-L, " +
			"QRadar AQL, Cortex XQL and CrowdStrike Falcon query language, normalizes them and " +
			"scores how confident you can be that they are well formed.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.projectPath, "config", ".", "Directory holding .detectlint.yaml and run history")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format: text or json (overrides config)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newValidateCmd(opts))
	cmd.AddCommand(newBatchCmd(opts))
	cmd.AddCommand(newReportCmd(opts))
	cmd.AddCommand(newFormatsCmd(opts))
	cmd.AddCommand(newHistoryCmd(opts))
	cmd.AddCommand(newMCPCmd(opts))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}
