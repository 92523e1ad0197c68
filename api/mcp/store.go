package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cielhaidir/mcp-server-qdrant/pkg/eventstream"
	"github.com/cielhaidir/mcp-server-qdrant/pkg/memory"
)

var storeToolName = "qdrant-store"

// StoreInput represents the input arguments for the qdrant-store tool.
type StoreInput struct {
	Information    string         `json:"information" jsonschema:"text to store"`
	CollectionName string         `json:"collection_name,omitempty" jsonschema:"the collection to store the information in (optional when a default collection is configured)"`
	Metadata       map[string]any `json:"metadata,omitempty" jsonschema:"extra metadata stored along with the memorised information, any json is accepted"`
}

// StoreOutput represents the structured output of a store.
type StoreOutput struct {
	ID         string `json:"id"`
	Collection string `json:"collection"`
	Message    string `json:"message"`
}

// handleStore persists a new memory point.
func (s *Server) handleStore(ctx context.Context, _ *mcp.CallToolRequest, input StoreInput) (*mcp.CallToolResult, StoreOutput, error) {
	logger := s.config.Logger

	if input.Information == "" {
		return errResult("information is required"), StoreOutput{}, nil
	}

	collection, err := s.resolveCollection(input.CollectionName)
	if err != nil {
		return errResult("%v", err), StoreOutput{}, nil
	}

	logger.Debug("MCP store request", "collection", collection)

	entry := memory.Entry{
		Content:  input.Information,
		Metadata: input.Metadata,
	}

	id, err := s.config.Driver.Store(ctx, collection, entry)
	if err != nil {
		logger.Error("store failed", "collection", collection, "error", err)
		return errResult("Store failed: %v", err), StoreOutput{}, nil
	}

	s.publish(ctx, eventstream.EventTypePointStored, collection, id)

	output := StoreOutput{
		ID:         id,
		Collection: collection,
		Message:    "Remembered: " + input.Information,
	}

	result, err := jsonResult(output)
	if err != nil {
		return result, StoreOutput{}, nil
	}
	return result, output, nil
}
