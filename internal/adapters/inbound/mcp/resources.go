package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/abdidvp/detectlint/internal/domain"
)

// registerResources registers all detectlint MCP resources on the given server.
func registerResources(s *server.MCPServer, e Engine) {
	// 1. detectlint://formats - supported dialects
	s.AddResource(
		mcplib.NewResource(
			"detectlint://formats",
			"Supported Formats",
			mcplib.WithResourceDescription("Rule dialects detectlint validates, with extensions and checks"),
			mcplib.WithMIMEType("application/json"),
		),
		handleFormatsResource(e),
	)

	// 2. detectlint://formats/{format} - one dialect (resource template)
	s.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			"detectlint://formats/{format}",
			"Format",
			mcplib.WithTemplateDescription("Extensions, checks and report guidance for one dialect"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		handleFormatResource(e),
	)
}

func handleFormatsResource(e Engine) server.ResourceHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		return jsonContents(request.Params.URI, e.Service.Formats())
	}
}

func handleFormatResource(e Engine) server.ResourceTemplateHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		// Template matching populates arguments as []string.
		var name string
		switch v := request.Params.Arguments["format"].(type) {
		case string:
			name = v
		case []string:
			if len(v) > 0 {
				name = v[0]
			}
		}
		if name == "" {
			return nil, fmt.Errorf("format is required")
		}

		for _, f := range e.Service.Formats() {
			if string(f.Format) != name {
				continue
			}
			return jsonContents(request.Params.URI, struct {
				Format         domain.Format `json:"format"`
				Name           string        `json:"name"`
				Extensions     []string      `json:"extensions"`
				Checks         []string      `json:"checks"`
				Recommendation string        `json:"recommendation"`
			}{f.Format, f.Name, f.Extensions, f.Checks, domain.DialectRecommendation(f.Format)})
		}
		return nil, &domain.UnsupportedFormatError{Format: domain.Format(name)}
	}
}

func jsonContents(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling resource: %w", err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
