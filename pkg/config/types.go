package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent server configuration stored as
// config.toml in the .qdrantmcp/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Qdrant      QdrantConfig      `toml:"qdrant"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	Server      ServerConfig      `toml:"server"`
	EventStream EventStreamConfig `toml:"eventstream"`
	Tools       ToolsConfig       `toml:"tools"`
}

// QdrantConfig holds connection and behavior settings for the Qdrant store.
type QdrantConfig struct {
	URL              string            `toml:"url,omitempty" mapstructure:"url"`
	APIKey           string            `toml:"api_key,omitempty" mapstructure:"api_key"`
	Collection       string            `toml:"collection,omitempty" mapstructure:"collection"`
	SearchLimit      uint              `toml:"search_limit,omitempty" mapstructure:"search_limit"`
	ReadOnly         bool              `toml:"read_only,omitempty" mapstructure:"read_only"`
	FilterableFields []FilterableField `toml:"filterable_fields,omitempty" mapstructure:"filterable_fields"`
}

// FilterableField declares a metadata field the driver payload-indexes
// and, when condition is set, exposes as a qdrant-find filter. Structured
// config like this is file-only; it has no flag or env form and is edited
// in config.toml directly:
//
//	[[qdrant.filterable_fields]]
//	name = "color"
//	description = "The color of the object"
//	type = "keyword"
//	condition = "=="
type FilterableField struct {
	Name        string `toml:"name" mapstructure:"name"`
	Description string `toml:"description,omitempty" mapstructure:"description"`
	Type        string `toml:"type" mapstructure:"type"`
	Condition   string `toml:"condition,omitempty" mapstructure:"condition"`
	Required    bool   `toml:"required,omitempty" mapstructure:"required"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
}

// ServerConfig holds MCP server transport settings. LogFile, when set,
// receives a JSON copy of every log record alongside the console output.
type ServerConfig struct {
	Transport string `toml:"transport,omitempty" mapstructure:"transport"`
	Listen    string `toml:"listen,omitempty" mapstructure:"listen"`
	LogFile   string `toml:"log_file,omitempty" mapstructure:"log_file"`
}

// EventStreamConfig holds mutation event publishing settings.
// Brokers is a comma-separated list of Kafka broker addresses.
type EventStreamConfig struct {
	Enabled bool   `toml:"enabled,omitempty"`
	Brokers string `toml:"brokers,omitempty"`
	Topic   string `toml:"topic,omitempty"`
}

// ToolsConfig holds the MCP tool descriptions shown to agent runtimes.
// Overriding these tunes how eagerly a model reaches for each tool.
type ToolsConfig struct {
	FindDescription   string `toml:"find_description,omitempty"`
	StoreDescription  string `toml:"store_description,omitempty"`
	ListDescription   string `toml:"list_description,omitempty"`
	EditDescription   string `toml:"edit_description,omitempty"`
	DeleteDescription string `toml:"delete_description,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"qdrant.url": {
		get: func(c *Config) string { return c.Qdrant.URL },
		set: func(c *Config, v string) error { c.Qdrant.URL = v; return nil },
	},
	"qdrant.api_key": {
		get: func(c *Config) string { return c.Qdrant.APIKey },
		set: func(c *Config, v string) error { c.Qdrant.APIKey = v; return nil },
	},
	"qdrant.collection": {
		get: func(c *Config) string { return c.Qdrant.Collection },
		set: func(c *Config, v string) error { c.Qdrant.Collection = v; return nil },
	},
	"qdrant.search_limit": {
		get: func(c *Config) string {
			if c.Qdrant.SearchLimit == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Qdrant.SearchLimit), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for qdrant.search_limit: %w", err)
			}
			c.Qdrant.SearchLimit = uint(n)
			return nil
		},
	},
	"qdrant.read_only": {
		get: func(c *Config) string { return strconv.FormatBool(c.Qdrant.ReadOnly) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for qdrant.read_only: %w", err)
			}
			c.Qdrant.ReadOnly = b
			return nil
		},
	},
	"embedding.provider": {
		get: func(c *Config) string { return c.Embedding.Provider },
		set: func(c *Config, v string) error { c.Embedding.Provider = v; return nil },
	},
	"embedding.target": {
		get: func(c *Config) string { return c.Embedding.Target },
		set: func(c *Config, v string) error { c.Embedding.Target = v; return nil },
	},
	"embedding.model": {
		get: func(c *Config) string { return c.Embedding.Model },
		set: func(c *Config, v string) error { c.Embedding.Model = v; return nil },
	},
	"embedding.dimensions": {
		get: func(c *Config) string {
			if c.Embedding.Dimensions == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Embedding.Dimensions), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for embedding.dimensions: %w", err)
			}
			c.Embedding.Dimensions = uint(n)
			return nil
		},
	},
	"server.transport": {
		get: func(c *Config) string { return c.Server.Transport },
		set: func(c *Config, v string) error {
			if v != "stdio" && v != "http" {
				return fmt.Errorf("invalid value for server.transport: %q (expected stdio or http)", v)
			}
			c.Server.Transport = v
			return nil
		},
	},
	"server.listen": {
		get: func(c *Config) string { return c.Server.Listen },
		set: func(c *Config, v string) error { c.Server.Listen = v; return nil },
	},
	"server.log_file": {
		get: func(c *Config) string { return c.Server.LogFile },
		set: func(c *Config, v string) error { c.Server.LogFile = v; return nil },
	},
	"eventstream.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.EventStream.Enabled) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for eventstream.enabled: %w", err)
			}
			c.EventStream.Enabled = b
			return nil
		},
	},
	"eventstream.brokers": {
		get: func(c *Config) string { return c.EventStream.Brokers },
		set: func(c *Config, v string) error { c.EventStream.Brokers = v; return nil },
	},
	"eventstream.topic": {
		get: func(c *Config) string { return c.EventStream.Topic },
		set: func(c *Config, v string) error { c.EventStream.Topic = v; return nil },
	},
	"tools.find_description": {
		get: func(c *Config) string { return c.Tools.FindDescription },
		set: func(c *Config, v string) error { c.Tools.FindDescription = v; return nil },
	},
	"tools.store_description": {
		get: func(c *Config) string { return c.Tools.StoreDescription },
		set: func(c *Config, v string) error { c.Tools.StoreDescription = v; return nil },
	},
	"tools.list_description": {
		get: func(c *Config) string { return c.Tools.ListDescription },
		set: func(c *Config, v string) error { c.Tools.ListDescription = v; return nil },
	},
	"tools.edit_description": {
		get: func(c *Config) string { return c.Tools.EditDescription },
		set: func(c *Config, v string) error { c.Tools.EditDescription = v; return nil },
	},
	"tools.delete_description": {
		get: func(c *Config) string { return c.Tools.DeleteDescription },
		set: func(c *Config, v string) error { c.Tools.DeleteDescription = v; return nil },
	},
}
