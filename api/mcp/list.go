package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cielhaidir/mcp-server-qdrant/pkg/memory"
)

var listToolName = "qdrant-list"

const (
	// defaultListLimit is the page size when the caller omits limit.
	defaultListLimit = 100

	// maxListLimit caps the page size.
	maxListLimit = 1000
)

// ListInput represents the input arguments for the qdrant-list tool.
type ListInput struct {
	CollectionName string `json:"collection_name,omitempty" jsonschema:"the collection to list points from (optional when a default collection is configured)"`
	Limit          int    `json:"limit,omitempty" jsonschema:"maximum number of points to return (1-1000, default 100)"`
	Offset         int    `json:"offset,omitempty" jsonschema:"number of points to skip for pagination (default 0)"`
}

// ListOutput represents the structured output of a list.
type ListOutput struct {
	Collection string         `json:"collection"`
	Points     []memory.Point `json:"points"`
	Count      int            `json:"count"`
	Offset     int            `json:"offset"`
}

// handleList pages through a collection's points.
func (s *Server) handleList(ctx context.Context, _ *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, ListOutput, error) {
	logger := s.config.Logger

	collection, err := s.resolveCollection(input.CollectionName)
	if err != nil {
		return errResult("%v", err), ListOutput{}, nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	logger.Debug("MCP list request",
		"collection", collection,
		"limit", limit,
		"offset", offset,
	)

	points, err := s.config.Driver.List(ctx, collection, limit, offset)
	if err != nil {
		logger.Error("list failed", "collection", collection, "error", err)
		return errResult("List failed: %v", err), ListOutput{}, nil
	}

	if points == nil {
		points = []memory.Point{}
	}

	output := ListOutput{
		Collection: collection,
		Points:     points,
		Count:      len(points),
		Offset:     offset,
	}

	result, err := jsonResult(output)
	if err != nil {
		return result, ListOutput{}, nil
	}
	return result, output, nil
}
