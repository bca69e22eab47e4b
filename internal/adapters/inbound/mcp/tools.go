package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/abdidvp/detectlint/internal/application"
	"github.com/abdidvp/detectlint/internal/domain"
)

var detectionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":      map[string]any{"type": "string"},
		"format":  map[string]any{"type": "string"},
		"content": map[string]any{"type": "string"},
	},
	"required": []string{"format", "content"},
}

// registerTools registers all detectlint MCP tools on the given server.
func registerTools(s *server.MCPServer, e Engine) {
	formats := formatList(e.Service)

	// 1. detectlint_validate
	s.AddTool(
		mcplib.NewTool("detectlint_validate",
			mcplib.WithDescription("Validate one detection rule and return its result: status, confidence score, issues and history"),
			mcplib.WithString("content", mcplib.Required(), mcplib.Description("Rule text")),
			mcplib.WithString("format", mcplib.Required(), mcplib.Description("Rule dialect, one of: "+formats)),
			mcplib.WithString("id", mcplib.Description("Detection id (defaults to \"detection\")")),
		),
		handleValidate(e),
	)

	// 2. detectlint_normalize
	s.AddTool(
		mcplib.NewTool("detectlint_normalize",
			mcplib.WithDescription("Return the canonical form of a rule, or the first structural failure"),
			mcplib.WithString("content", mcplib.Required(), mcplib.Description("Rule text")),
			mcplib.WithString("format", mcplib.Required(), mcplib.Description("Rule dialect, one of: "+formats)),
		),
		handleNormalize(e),
	)

	// 3. detectlint_validate_batch
	s.AddTool(
		mcplib.NewTool("detectlint_validate_batch",
			mcplib.WithDescription(fmt.Sprintf("Validate up to %d detections concurrently and return per-id results with a summary", domain.MaxBatchSize)),
			mcplib.WithArray("detections", mcplib.Required(), mcplib.Items(detectionSchema),
				mcplib.Description("Detections as objects with id, format and content")),
			mcplib.WithNumber("concurrency", mcplib.Description("Worker count (default from configuration)")),
		),
		handleValidateBatch(e),
	)

	// 4. detectlint_report
	s.AddTool(
		mcplib.NewTool("detectlint_report",
			mcplib.WithDescription("Validate one detection rule and return the derived report with metrics and recommendations"),
			mcplib.WithString("content", mcplib.Required(), mcplib.Description("Rule text")),
			mcplib.WithString("format", mcplib.Required(), mcplib.Description("Rule dialect, one of: "+formats)),
			mcplib.WithString("id", mcplib.Description("Detection id")),
		),
		handleReport(e),
	)

	// 5. detectlint_formats
	s.AddTool(
		mcplib.NewTool("detectlint_formats",
			mcplib.WithDescription("List the supported rule dialects with their file extensions and checks"),
		),
		handleFormats(e),
	)
}

func detectionFromRequest(request mcplib.CallToolRequest) (domain.Detection, error) {
	content, err := request.RequireString("content")
	if err != nil {
		return domain.Detection{}, err
	}
	format, err := request.RequireString("format")
	if err != nil {
		return domain.Detection{}, err
	}
	return domain.Detection{
		ID:      request.GetString("id", "detection"),
		Content: content,
		Format:  domain.Format(strings.ToLower(format)),
	}, nil
}

func handleValidate(e Engine) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		d, err := detectionFromRequest(request)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		r, err := e.Validator.ValidateOne(d)
		if err != nil {
			return failureResult(err), nil
		}
		return jsonResult(r)
	}
}

func handleNormalize(e Engine) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		d, err := detectionFromRequest(request)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		out, err := e.Service.Normalize(d)
		if err != nil {
			return failureResult(err), nil
		}
		return textResult(out), nil
	}
}

func handleValidateBatch(e Engine) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		raw, ok := request.GetArguments()["detections"]
		if !ok {
			return errorResult("required argument \"detections\" not found"), nil
		}
		ds, err := decodeDetections(raw)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		opts := application.BatchOptions{Concurrency: int(request.GetFloat("concurrency", 0))}
		if opts.Concurrency <= 0 {
			opts.Concurrency = e.Service.Concurrency()
		}

		// Cached single validations feed the same orchestrator the service uses.
		orch := application.NewBatchOrchestrator(e.Validator, e.Logger, nil)
		res, err := orch.Run(ctx, ds, opts)
		if err != nil {
			return failureResult(err), nil
		}
		return jsonResult(res)
	}
}

func handleReport(e Engine) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		d, err := detectionFromRequest(request)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		r, err := e.Validator.ValidateOne(d)
		if err != nil {
			return failureResult(err), nil
		}
		return jsonResult(e.Service.BuildReport(r))
	}
}

func handleFormats(e Engine) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		return jsonResult(e.Service.Formats())
	}
}

// decodeDetections converts the loosely typed tool argument into detections.
func decodeDetections(raw any) ([]domain.Detection, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encoding detections: %w", err)
	}
	var ds []domain.Detection
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("detections must be an array of {id, format, content} objects: %w", err)
	}
	for i := range ds {
		ds[i].Format = domain.Format(strings.ToLower(string(ds[i].Format)))
	}
	return ds, nil
}

func formatList(svc *application.ValidationService) string {
	var names []string
	for _, f := range svc.Formats() {
		names = append(names, string(f.Format))
	}
	return strings.Join(names, ", ")
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// textResult returns a plain text content result.
func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(text)},
	}
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}

// failureResult reports a validation error together with its issue code.
func failureResult(err error) *mcplib.CallToolResult {
	return errorResult(fmt.Sprintf("[%d] %v", domain.FailureCode(err), err))
}
