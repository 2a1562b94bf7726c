package mcpsrv

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/CognitionAI/metabase-mcp-server/internal/dashboard"
)

func (s *Server) registerTools() {
	// metabase_dashboard_queries — what does every card on this dashboard ask?
	s.mcpServer.AddTool(
		mcp.NewTool("metabase_dashboard_queries",
			mcp.WithDescription(`Summarize every card on a Metabase dashboard.

Returns one entry per placed card: text cards carry their markdown (raw and
flattened to plain text), native cards carry the SQL verbatim plus template
tag names, and structured (query builder) cards carry their query with table
and field IDs resolved to human-readable names. Also returns the sorted list
of tables the dashboard touches.`),
			mcp.WithNumber("dashboard_id",
				mcp.Description("Numeric ID of the dashboard"),
				mcp.Required(),
			),
		),
		s.handleDashboardQueries,
	)

	// metabase_audit_dashboard_filters — which cards ignore which filters?
	s.mcpServer.AddTool(
		mcp.NewTool("metabase_audit_dashboard_filters",
			mcp.WithDescription(`Audit a dashboard's filter wiring.

Cross-references the dashboard's filter parameters against each card's
parameter mappings. Reports, per card, which filters are connected, which are
missing, and any structurally broken mappings (no target, or a dimension
target without a stage-number entry). cards_with_issues is the subset that
needs attention.`),
			mcp.WithNumber("dashboard_id",
				mcp.Description("Numeric ID of the dashboard"),
				mcp.Required(),
			),
		),
		s.handleAuditFilters,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("metabase_get_dashboard",
			mcp.WithDescription("Fetch a dashboard as the raw Metabase API response."),
			mcp.WithNumber("dashboard_id",
				mcp.Description("Numeric ID of the dashboard"),
				mcp.Required(),
			),
		),
		s.handleGetDashboard,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("metabase_get_card",
			mcp.WithDescription("Fetch a saved question (card) as the raw Metabase API response."),
			mcp.WithNumber("card_id",
				mcp.Description("Numeric ID of the card"),
				mcp.Required(),
			),
		),
		s.handleGetCard,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("metabase_get_table_metadata",
			mcp.WithDescription("Fetch a table's query metadata (schema, fields) as the raw Metabase API response."),
			mcp.WithNumber("table_id",
				mcp.Description("Numeric ID of the table"),
				mcp.Required(),
			),
		),
		s.handleGetTableMetadata,
	)
}

func (s *Server) handleDashboardQueries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, result := requireID(request, "dashboard_id")
	if result != nil {
		return result, nil
	}

	dash, err := s.backend.Dashboard(ctx, id)
	if err != nil {
		return errorResult(fmt.Sprintf("fetch dashboard %d: %v", id, err)), nil
	}

	ext := dashboard.Extract(ctx, dash, dash.TabLookup(), s.backend, s.concurrency)
	s.logger.Debug("extracted dashboard queries",
		zap.Int64("dashboard_id", id),
		zap.Int("cards", len(ext.Cards)),
		zap.Int("tables", len(ext.TablesUsed)))
	return jsonResult(ext)
}

func (s *Server) handleAuditFilters(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, result := requireID(request, "dashboard_id")
	if result != nil {
		return result, nil
	}

	dash, err := s.backend.Dashboard(ctx, id)
	if err != nil {
		return errorResult(fmt.Sprintf("fetch dashboard %d: %v", id, err)), nil
	}

	report := dashboard.Audit(dash)
	s.logger.Debug("audited dashboard filters",
		zap.Int64("dashboard_id", id),
		zap.Int("cards_with_issues", len(report.CardsWithIssues)))
	return jsonResult(report)
}

func (s *Server) handleGetDashboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, result := requireID(request, "dashboard_id")
	if result != nil {
		return result, nil
	}

	raw, err := s.backend.DashboardRaw(ctx, id)
	if err != nil {
		return errorResult(fmt.Sprintf("fetch dashboard %d: %v", id, err)), nil
	}
	return jsonResult(raw)
}

func (s *Server) handleGetCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, result := requireID(request, "card_id")
	if result != nil {
		return result, nil
	}

	raw, err := s.backend.CardRaw(ctx, id)
	if err != nil {
		return errorResult(fmt.Sprintf("fetch card %d: %v", id, err)), nil
	}
	return jsonResult(raw)
}

func (s *Server) handleGetTableMetadata(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, result := requireID(request, "table_id")
	if result != nil {
		return result, nil
	}

	raw, err := s.backend.TableMetadataRaw(ctx, id)
	if err != nil {
		return errorResult(fmt.Sprintf("fetch table %d: %v", id, err)), nil
	}
	return jsonResult(raw)
}

func requireID(request mcp.CallToolRequest, key string) (int64, *mcp.CallToolResult) {
	id := request.GetInt(key, 0)
	if id <= 0 {
		return 0, errorResult(fmt.Sprintf("%s must be a positive integer", key))
	}
	return int64(id), nil
}

// jsonResult marshals data to indented JSON and returns it as text content.
func jsonResult(data any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("serialize result: %v", err)), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: string(b)},
		},
	}, nil
}

// errorResult returns a tool-level error (not a protocol error) so the model
// sees the message and can adjust its call.
func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
