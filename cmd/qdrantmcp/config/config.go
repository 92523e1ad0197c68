// Package configcmder provides the config command for managing persistent
// configuration stored in the .qdrantmcp/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent configuration.

Configuration is stored as config.toml in the .qdrantmcp/ directory and
provides default values for command flags. CLI flags and environment
variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  qdrant.url, qdrant.api_key, qdrant.collection,
  qdrant.search_limit, qdrant.read_only,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  server.transport, server.listen,
  eventstream.enabled, eventstream.brokers, eventstream.topic,
  tools.find_description, tools.store_description, tools.list_description,
  tools.edit_description, tools.delete_description

Use subcommands to get, set, or list configuration values:
  qdrantmcp config set <key> <value>    Set a configuration value
  qdrantmcp config get <key>            Get a configuration value
  qdrantmcp config list                 List all configuration values

Examples:
  qdrantmcp config set qdrant.url http://localhost:6334
  qdrantmcp config set qdrant.collection memories
  qdrantmcp config get qdrant.read_only
  qdrantmcp config list`

const configShortDesc string = "Manage persistent configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
