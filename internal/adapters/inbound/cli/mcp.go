package cli

import (
	mcpadapter "github.com/abdidvp/detectlint/internal/adapters/inbound/mcp"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func newMCPCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the detectlint MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(opts))
	return cmd
}

func newMCPServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start detectlint MCP server (stdio)",
		Long:  "Start the detectlint MCP server using stdio transport so assistants can validate, normalize and report on detection rules.",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine(cmd, opts, false)
			if err != nil {
				return err
			}
			s := mcpadapter.NewDetectlintMCPServer(mcpadapter.Engine{
				Service:   e.service,
				Validator: e.validator(),
				Logger:    e.logger,
			})
			e.logger.Info("mcp server starting", "formats", len(e.registry.Formats()))
			return server.ServeStdio(s)
		},
	}
}
