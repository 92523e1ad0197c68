// Package qdrantmcpcmder
package qdrantmcpcmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/cielhaidir/mcp-server-qdrant/cmd/qdrantmcp/config"
	servecmder "github.com/cielhaidir/mcp-server-qdrant/cmd/qdrantmcp/serve"
)

const qdrantMCPLongDesc string = `qdrantmcp is an MCP server exposing agent memory tools backed by Qdrant.

Run the server using:
  qdrantmcp serve               Serve over stdio (default)
  qdrantmcp serve -t http       Serve over streamable HTTP

Manage persistent configuration using:
  qdrantmcp config list         List all configuration values`

const qdrantMCPShortDesc string = "qdrantmcp - Qdrant memory over MCP"

func NewQdrantMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qdrantmcp",
		Short: qdrantMCPShortDesc,
		Long:  qdrantMCPLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .qdrantmcp/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())

	return cmd
}
