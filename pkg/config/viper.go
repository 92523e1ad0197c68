package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/cielhaidir/mcp-server-qdrant/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (QDRANT_URL, COLLECTION_NAME, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: QDRANTMCP_QDRANT_URL, QDRANTMCP_SERVER_LISTEN, etc.
	v.SetEnvPrefix("QDRANTMCP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bare env aliases the original deployment surface documents.
	bindEnvAliases(v)

	return v, nil
}

// bindEnvAliases binds the unprefixed environment variable names used by
// existing deployments (QDRANT_URL, COLLECTION_NAME, TOOL_*_DESCRIPTION)
// alongside the prefixed forms. The prefixed form wins when both are set.
func bindEnvAliases(v *viper.Viper) {
	aliases := map[string]string{
		"qdrant.url":               "QDRANT_URL",
		"qdrant.api_key":           "QDRANT_API_KEY",
		"qdrant.collection":        "COLLECTION_NAME",
		"qdrant.search_limit":      "QDRANT_SEARCH_LIMIT",
		"qdrant.read_only":         "QDRANT_READ_ONLY",
		"embedding.provider":       "EMBEDDING_PROVIDER",
		"embedding.target":         "EMBEDDING_TARGET",
		"embedding.model":          "EMBEDDING_MODEL",
		"embedding.dimensions":     "EMBEDDING_DIMENSIONS",
		"tools.find_description":   "TOOL_FIND_DESCRIPTION",
		"tools.store_description":  "TOOL_STORE_DESCRIPTION",
		"tools.list_description":   "TOOL_LIST_DESCRIPTION",
		"tools.edit_description":   "TOOL_EDIT_DESCRIPTION",
		"tools.delete_description": "TOOL_DELETE_DESCRIPTION",
	}

	for key, env := range aliases {
		_ = v.BindEnv(key, "QDRANTMCP_"+strings.ReplaceAll(strings.ToUpper(key), ".", "_"), env)
	}
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Qdrant
	v.SetDefault("qdrant.url", d.Qdrant.URL)
	v.SetDefault("qdrant.api_key", d.Qdrant.APIKey)
	v.SetDefault("qdrant.collection", d.Qdrant.Collection)
	v.SetDefault("qdrant.search_limit", d.Qdrant.SearchLimit)
	v.SetDefault("qdrant.read_only", d.Qdrant.ReadOnly)

	// Embedding
	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.target", d.Embedding.Target)
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)

	// Server
	v.SetDefault("server.transport", d.Server.Transport)
	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("server.log_file", d.Server.LogFile)

	// Event stream
	v.SetDefault("eventstream.enabled", d.EventStream.Enabled)
	v.SetDefault("eventstream.brokers", d.EventStream.Brokers)
	v.SetDefault("eventstream.topic", d.EventStream.Topic)

	// Tool descriptions
	v.SetDefault("tools.find_description", d.Tools.FindDescription)
	v.SetDefault("tools.store_description", d.Tools.StoreDescription)
	v.SetDefault("tools.list_description", d.Tools.ListDescription)
	v.SetDefault("tools.edit_description", d.Tools.EditDescription)
	v.SetDefault("tools.delete_description", d.Tools.DeleteDescription)
}
