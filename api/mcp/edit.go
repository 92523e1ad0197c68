package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cielhaidir/mcp-server-qdrant/pkg/eventstream"
	"github.com/cielhaidir/mcp-server-qdrant/pkg/memory"
)

var editToolName = "qdrant-edit"

// EditInput represents the input arguments for the qdrant-edit tool.
type EditInput struct {
	PointID        string         `json:"point_id" jsonschema:"the id of the point to edit"`
	Information    string         `json:"information" jsonschema:"new text content for the point"`
	CollectionName string         `json:"collection_name,omitempty" jsonschema:"the collection containing the point (optional when a default collection is configured)"`
	Metadata       map[string]any `json:"metadata,omitempty" jsonschema:"new metadata for the point, any json is accepted"`
}

// EditOutput represents the structured output of an edit.
type EditOutput struct {
	ID         string `json:"id"`
	Collection string `json:"collection"`
	Message    string `json:"message"`
}

// handleEdit overwrites an existing memory point. A missing point fails
// without creating one.
func (s *Server) handleEdit(ctx context.Context, _ *mcp.CallToolRequest, input EditInput) (*mcp.CallToolResult, EditOutput, error) {
	logger := s.config.Logger

	if input.PointID == "" {
		return errResult("point_id is required"), EditOutput{}, nil
	}
	if input.Information == "" {
		return errResult("information is required"), EditOutput{}, nil
	}

	collection, err := s.resolveCollection(input.CollectionName)
	if err != nil {
		return errResult("%v", err), EditOutput{}, nil
	}

	logger.Debug("MCP edit request", "collection", collection, "point_id", input.PointID)

	entry := memory.Entry{
		Content:  input.Information,
		Metadata: input.Metadata,
	}

	if err := s.config.Driver.Update(ctx, collection, input.PointID, entry); err != nil {
		logger.Error("edit failed",
			"collection", collection,
			"point_id", input.PointID,
			"error", err,
		)
		return errResult("Edit failed: %v", err), EditOutput{}, nil
	}

	s.publish(ctx, eventstream.EventTypePointUpdated, collection, input.PointID)

	output := EditOutput{
		ID:         input.PointID,
		Collection: collection,
		Message:    "Updated point " + input.PointID + " in collection " + collection,
	}

	result, err := jsonResult(output)
	if err != nil {
		return result, EditOutput{}, nil
	}
	return result, output, nil
}
