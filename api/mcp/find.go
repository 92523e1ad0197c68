package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cielhaidir/mcp-server-qdrant/pkg/memory"
)

var findToolName = "qdrant-find"

// FindInput represents the input arguments for the qdrant-find tool.
type FindInput struct {
	Query          string         `json:"query" jsonschema:"what to search for"`
	CollectionName string         `json:"collection_name,omitempty" jsonschema:"the collection to search in (optional when a default collection is configured)"`
	Filter         map[string]any `json:"filter,omitempty" jsonschema:"metadata conditions keyed by filterable field name (see the tool description for the accepted fields)"`
}

// FindOutput represents the structured output of a find.
type FindOutput struct {
	Query  string         `json:"query"`
	Points []memory.Point `json:"points"`
	Count  int            `json:"count"`
}

// handleFind processes a semantic search request.
func (s *Server) handleFind(ctx context.Context, _ *mcp.CallToolRequest, input FindInput) (*mcp.CallToolResult, FindOutput, error) {
	logger := s.config.Logger

	if input.Query == "" {
		return errResult("query is required"), FindOutput{}, nil
	}

	collection, err := s.resolveCollection(input.CollectionName)
	if err != nil {
		return errResult("%v", err), FindOutput{}, nil
	}

	filter, err := memory.BuildFilter(s.config.FilterableFields, input.Filter)
	if err != nil {
		return errResult("invalid filter: %v", err), FindOutput{}, nil
	}

	logger.Debug("MCP find request",
		"query", input.Query,
		"collection", collection,
		"filter_conditions", len(filter),
	)

	points, err := s.config.Driver.Find(ctx, collection, input.Query, s.config.SearchLimit, filter)
	if err != nil {
		logger.Error("find failed", "collection", collection, "error", err)
		return errResult("Find failed: %v", err), FindOutput{}, nil
	}

	if points == nil {
		points = []memory.Point{}
	}

	output := FindOutput{
		Query:  input.Query,
		Points: points,
		Count:  len(points),
	}

	result, err := jsonResult(output)
	if err != nil {
		return result, FindOutput{}, nil
	}
	return result, output, nil
}
