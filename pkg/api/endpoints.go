// Package api exposes the seating chart as transport-agnostic endpoints and
// registers them as MCP tools.
package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/mesa/pkg/guest"
	"github.com/hazyhaar/mesa/pkg/kit"
)

// Shared request/response types used by both CLI and MCP transports.

type FindTableRequest struct {
	Query string
	Limit int
}

type FindTableResponse struct {
	Query     string     `json:"query"`
	Matches   guest.List `json:"matches"`
	Total     int        `json:"total"`
	Truncated bool       `json:"truncated,omitempty"`
}

type TablesResponse struct {
	Tables []guest.Group `json:"tables"`
	Guests int           `json:"guests"`
}

type ImportListRequest struct {
	CSV string
}

type ImportListResponse struct {
	Replaced bool `json:"replaced"`
	Guests   int  `json:"guests"`
}

type ExportListResponse struct {
	FileName string `json:"file_name"`
	CSV      string `json:"csv"`
}

// Endpoints are the four seating chart actions.
type Endpoints struct {
	FindTable  kit.Endpoint
	ListTables kit.Endpoint
	ImportList kit.Endpoint
	ExportList kit.Endpoint
}

// NewEndpoints builds the endpoints over book, each wrapped with logging and
// panic recovery.
func NewEndpoints(book *guest.Book, logger *slog.Logger) Endpoints {
	if logger == nil {
		logger = slog.Default()
	}
	wrap := func(name string) kit.Middleware {
		return kit.Chain(kit.Logging(logger, name), kit.Recovery(logger, name))
	}
	return Endpoints{
		FindTable:  wrap("find_table")(findTableEndpoint(book)),
		ListTables: wrap("list_tables")(listTablesEndpoint(book)),
		ImportList: wrap("import_list")(importListEndpoint(book)),
		ExportList: wrap("export_list")(exportListEndpoint(book)),
	}
}

func findTableEndpoint(book *guest.Book) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*FindTableRequest)
		if req.Limit < 0 {
			return nil, fmt.Errorf("limit must not be negative (got %d)", req.Limit)
		}
		matches := book.Search(req.Query)
		resp := FindTableResponse{Query: req.Query, Matches: matches, Total: len(matches)}
		if req.Limit > 0 && len(matches) > req.Limit {
			resp.Matches = matches[:req.Limit]
			resp.Truncated = true
		}
		return resp, nil
	}
}

func listTablesEndpoint(book *guest.Book) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		return TablesResponse{Tables: book.Tables(), Guests: book.Len()}, nil
	}
}

func importListEndpoint(book *guest.Book) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*ImportListRequest)
		replaced := book.Import(req.CSV)
		return ImportListResponse{Replaced: replaced, Guests: book.Len()}, nil
	}
}

func exportListEndpoint(book *guest.Book) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		return ExportListResponse{FileName: guest.ExportFileName, CSV: book.Export()}, nil
	}
}
