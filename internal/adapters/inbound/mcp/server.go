package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/abdidvp/detectlint/internal/application"
)

// Engine is what the MCP tools validate with.
type Engine struct {
	Service *application.ValidationService
	// Validator answers single-detection calls; defaults to Service. Set it to
	// a CachedValidator to memoize repeated submissions.
	Validator application.Validator
	Logger    *slog.Logger
}

// NewDetectlintMCPServer creates an MCP server with all detectlint tools and
// resources registered.
func NewDetectlintMCPServer(e Engine) *server.MCPServer {
	if e.Service == nil {
		e.Service = application.NewValidationService()
	}
	if e.Validator == nil {
		e.Validator = e.Service
	}
	if e.Logger == nil {
		e.Logger = slog.New(slog.DiscardHandler)
	}

	s := server.NewMCPServer(
		"detectlint",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, e)
	registerResources(s, e)

	return s
}
