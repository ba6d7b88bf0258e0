package api

import (
	"context"
	"fmt"

	"github.com/hazyhaar/mesa/pkg/kit"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterMCPTools registers the four seating chart MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, eps Endpoints) {
	registerFindTable(srv, eps.FindTable)
	registerListTables(srv, eps.ListTables)
	registerImportList(srv, eps.ImportList)
	registerExportList(srv, eps.ExportList)
}

func withTransport(ctx context.Context) context.Context {
	return kit.WithTransport(ctx, "mcp_stdio")
}

func registerFindTable(srv *server.MCPServer, ep kit.Endpoint) {
	tool := mcp.NewTool("find_table",
		mcp.WithDescription("Find a guest's table by name. Matching ignores case and accents and may hit part of a name."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Full or partial guest name")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of matches to return (0 = all)")),
	)
	kit.RegisterMCPTool(srv, tool, ep, decodeFindTable)
}

func decodeFindTable(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	args := req.GetArguments()
	query, _ := args["query"].(string)
	limit := 0
	switch v := args["limit"].(type) {
	case nil:
	case float64:
		limit = int(v)
	case int:
		limit = v
	default:
		return nil, fmt.Errorf("limit must be a number")
	}
	return &kit.MCPDecodeResult{
		Request:   &FindTableRequest{Query: query, Limit: limit},
		EnrichCtx: withTransport,
	}, nil
}

func registerListTables(srv *server.MCPServer, ep kit.Endpoint) {
	tool := mcp.NewTool("list_tables",
		mcp.WithDescription("List the seating chart grouped by table, tables in numeric order, guests by name."),
	)
	kit.RegisterMCPTool(srv, tool, ep, func(_ mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{EnrichCtx: withTransport}, nil
	})
}

func registerImportList(srv *server.MCPServer, ep kit.Endpoint) {
	tool := mcp.NewTool("import_list",
		mcp.WithDescription("Replace the guest list with comma-separated text. The first line is a header with a name column (nombre/invitado/guest) and a table column (mesa/table). If no row is usable the current list is kept."),
		mcp.WithString("csv", mcp.Required(), mcp.Description("Header line followed by one guest per line")),
	)
	kit.RegisterMCPTool(srv, tool, ep, decodeImportList)
}

func decodeImportList(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	raw, ok := req.GetArguments()["csv"].(string)
	if !ok {
		return nil, fmt.Errorf("csv is required")
	}
	return &kit.MCPDecodeResult{Request: &ImportListRequest{CSV: raw}, EnrichCtx: withTransport}, nil
}

func registerExportList(srv *server.MCPServer, ep kit.Endpoint) {
	tool := mcp.NewTool("export_list",
		mcp.WithDescription("Export the current guest list as comma-separated text (header nombre,mesa)."),
	)
	kit.RegisterMCPTool(srv, tool, ep, func(_ mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{EnrichCtx: withTransport}, nil
	})
}
