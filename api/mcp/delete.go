package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cielhaidir/mcp-server-qdrant/pkg/eventstream"
)

var deleteToolName = "qdrant-delete"

// DeleteInput represents the input arguments for the qdrant-delete tool.
type DeleteInput struct {
	PointID        string `json:"point_id" jsonschema:"the id of the point to delete"`
	CollectionName string `json:"collection_name,omitempty" jsonschema:"the collection containing the point (optional when a default collection is configured)"`
}

// DeleteOutput represents the structured output of a delete.
type DeleteOutput struct {
	ID         string `json:"id"`
	Collection string `json:"collection"`
	Message    string `json:"message"`
}

// handleDelete removes a memory point by id. A missing point is an error.
func (s *Server) handleDelete(ctx context.Context, _ *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	logger := s.config.Logger

	if input.PointID == "" {
		return errResult("point_id is required"), DeleteOutput{}, nil
	}

	collection, err := s.resolveCollection(input.CollectionName)
	if err != nil {
		return errResult("%v", err), DeleteOutput{}, nil
	}

	logger.Debug("MCP delete request", "collection", collection, "point_id", input.PointID)

	if err := s.config.Driver.Delete(ctx, collection, input.PointID); err != nil {
		logger.Error("delete failed",
			"collection", collection,
			"point_id", input.PointID,
			"error", err,
		)
		return errResult("Delete failed: %v", err), DeleteOutput{}, nil
	}

	s.publish(ctx, eventstream.EventTypePointDeleted, collection, input.PointID)

	output := DeleteOutput{
		ID:         input.PointID,
		Collection: collection,
		Message:    "Deleted point " + input.PointID + " from collection " + collection,
	}

	result, err := jsonResult(output)
	if err != nil {
		return result, DeleteOutput{}, nil
	}
	return result, output, nil
}
