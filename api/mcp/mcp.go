// Package mcp provides the MCP (Model Context Protocol) server exposing
// memory tools over a vector store.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cielhaidir/mcp-server-qdrant/pkg/config"
	"github.com/cielhaidir/mcp-server-qdrant/pkg/eventstream"
	"github.com/cielhaidir/mcp-server-qdrant/pkg/eventstream/nop"
	"github.com/cielhaidir/mcp-server-qdrant/pkg/memory"
	"github.com/cielhaidir/mcp-server-qdrant/pkg/utils"
)

const defaultSearchLimit = 10

// ToolDescriptions holds the per-tool descriptions shown to agent runtimes.
// NewServer fills empty fields from the pkg/config defaults.
type ToolDescriptions struct {
	Find   string
	Store  string
	List   string
	Edit   string
	Delete string
}

type Config struct {
	// Driver is the memory store all tools forward to.
	Driver memory.Driver

	// Publisher receives mutation events after successful writes
	// (optional; a no-op publisher is used when nil).
	Publisher eventstream.Publisher

	// DefaultCollection is used when a tool call omits collection_name.
	// When empty, every call must name a collection.
	DefaultCollection string

	// SearchLimit caps the number of results qdrant-find returns.
	SearchLimit int

	// ReadOnly disables registration of the mutating tools
	// (qdrant-store, qdrant-edit, qdrant-delete).
	ReadOnly bool

	// FilterableFields declares the metadata fields qdrant-find accepts
	// in its filter argument. Filter calls are rejected when empty.
	FilterableFields []memory.FilterableField

	// ToolDescriptions overrides the tool descriptions.
	ToolDescriptions ToolDescriptions

	// Logger is the configured slog logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
	tools     []string
}

// NewServer creates a new MCP server with the memory tools. In read-only
// mode only qdrant-find and qdrant-list are registered.
func NewServer(c Config) (*Server, error) {
	if c.Driver == nil {
		return nil, errors.New("memory driver is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if c.Publisher == nil {
		c.Publisher = nop.NewPublisher()
	}
	if c.SearchLimit <= 0 {
		c.SearchLimit = defaultSearchLimit
	}
	if err := memory.ValidateFilterableFields(c.FilterableFields); err != nil {
		return nil, err
	}
	fillToolDescriptions(&c.ToolDescriptions)

	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "mcp-server-qdrant",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)
	s.mcpServer = mcpServer

	// Read-only tools are always available. The find description carries
	// the declared filter fields so agents know what they can constrain.
	addTool(s, findToolName, c.ToolDescriptions.Find+filterFieldsHelp(c.FilterableFields), s.handleFind)
	addTool(s, listToolName, c.ToolDescriptions.List, s.handleList)

	// Mutating tools are withheld in read-only mode.
	if !c.ReadOnly {
		addTool(s, storeToolName, c.ToolDescriptions.Store, s.handleStore)
		addTool(s, editToolName, c.ToolDescriptions.Edit, s.handleEdit)
		addTool(s, deleteToolName, c.ToolDescriptions.Delete, s.handleDelete)
	}

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// fillToolDescriptions replaces empty descriptions with the pkg/config
// defaults so library consumers get usable tools without wiring viper.
func fillToolDescriptions(d *ToolDescriptions) {
	defaults := config.NewDefaultConfig().Tools

	if d.Find == "" {
		d.Find = defaults.FindDescription
	}
	if d.Store == "" {
		d.Store = defaults.StoreDescription
	}
	if d.List == "" {
		d.List = defaults.ListDescription
	}
	if d.Edit == "" {
		d.Edit = defaults.EditDescription
	}
	if d.Delete == "" {
		d.Delete = defaults.DeleteDescription
	}
}

// filterFieldsHelp renders the queryable filter fields for the find tool
// description. Index-only fields are omitted.
func filterFieldsHelp(fields []memory.FilterableField) string {
	var b strings.Builder
	for _, f := range fields {
		if !f.Queryable() {
			continue
		}
		if b.Len() == 0 {
			b.WriteString("\n\nThe filter argument accepts these fields:")
		}
		fmt.Fprintf(&b, "\n  - %s (%s, %s)", f.Name, f.Type, f.Condition)
		if f.Required {
			b.WriteString(" [required]")
		}
		if f.Description != "" {
			b.WriteString(": " + f.Description)
		}
	}
	return b.String()
}

// addTool registers a typed tool handler and records its name.
// A free function because methods cannot carry type parameters.
func addTool[In, Out any](s *Server, name, description string, handler mcp.ToolHandlerFor[In, Out]) {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        name,
		Description: description,
	}, handler)
	s.tools = append(s.tools, name)
}

// Tools returns the names of the registered tools, in registration order.
func (s *Server) Tools() []string {
	tools := make([]string, len(s.tools))
	copy(tools, s.tools)
	return tools
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves the MCP server over the stdio transport until ctx is done.
// Logging must be routed to stderr by the caller; stdout carries the protocol.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// resolveCollection applies the default-collection fallback. The explicit
// argument wins; an empty result is an error the caller surfaces.
func (s *Server) resolveCollection(name string) (string, error) {
	if name != "" {
		return name, nil
	}
	if s.config.DefaultCollection != "" {
		return s.config.DefaultCollection, nil
	}
	return "", errors.New("no collection specified and no default collection configured")
}

// publish emits a mutation event. Failures are logged, never surfaced.
func (s *Server) publish(ctx context.Context, eventType, collection, pointID string) {
	event := eventstream.NewMutationEvent(eventType, collection, pointID)
	if err := s.config.Publisher.PublishMutation(ctx, event); err != nil {
		s.config.Logger.Warn("failed to publish mutation event",
			"event_type", eventType,
			"collection", collection,
			"point_id", pointID,
			"error", err,
		)
	}
}

// errResult wraps a user-visible failure message as a tool error result.
func errResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

// jsonResult serializes the structured output as JSON for the text field.
// Per MCP spec: tools returning structured content should also return
// serialized JSON in a TextContent block for backwards compatibility.
func jsonResult(output any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return errResult("Failed to serialize results: %v", err), err
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, nil
}
