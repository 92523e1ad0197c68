// Package servecmder provides the serve command running the MCP server.
package servecmder

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cielhaidir/mcp-server-qdrant/api/mcp"
	"github.com/cielhaidir/mcp-server-qdrant/pkg/config"
	"github.com/cielhaidir/mcp-server-qdrant/pkg/embeddings"
	embeddingutils "github.com/cielhaidir/mcp-server-qdrant/pkg/embeddings/utils"
	"github.com/cielhaidir/mcp-server-qdrant/pkg/eventstream"
	kafkastream "github.com/cielhaidir/mcp-server-qdrant/pkg/eventstream/kafka"
	"github.com/cielhaidir/mcp-server-qdrant/pkg/eventstream/nop"
	"github.com/cielhaidir/mcp-server-qdrant/pkg/logger"
	"github.com/cielhaidir/mcp-server-qdrant/pkg/memory"
	memoryutils "github.com/cielhaidir/mcp-server-qdrant/pkg/memory/utils"
)

// serveFlags registers the serve command's flags against their config keys.
var serveFlags = config.FlagSet{
	config.FlagTransport: {
		Name:        "transport",
		Shorthand:   "t",
		ViperKey:    "server.transport",
		Description: "MCP transport (stdio or http)",
	},
	config.FlagListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "server.listen",
		Description: "Address to listen on for the http transport",
	},
	config.FlagLogFile: {
		Name:        "log-file",
		ViperKey:    "server.log_file",
		Description: "Append a JSON copy of all logs to this file",
	},
	config.FlagQdrantURL: {
		Name:        "qdrant-url",
		Shorthand:   "u",
		ViperKey:    "qdrant.url",
		Description: "Qdrant server URL",
	},
	config.FlagQdrantAPIKey: {
		Name:        "qdrant-api-key",
		ViperKey:    "qdrant.api_key",
		Description: "Qdrant API key",
	},
	config.FlagCollection: {
		Name:        "collection",
		Shorthand:   "c",
		ViperKey:    "qdrant.collection",
		Description: "Default collection used when tool calls omit collection_name",
	},
	config.FlagSearchLimit: {
		Name:        "search-limit",
		ViperKey:    "qdrant.search_limit",
		Description: "Maximum number of results qdrant-find returns",
	},
	config.FlagReadOnly: {
		Name:        "read-only",
		ViperKey:    "qdrant.read_only",
		Description: "Disable the mutating tools (store, edit, delete)",
	},
	config.FlagEmbeddingProv: {
		Name:        "embedding-provider",
		ViperKey:    "embedding.provider",
		Description: "Embedding provider type",
	},
	config.FlagEmbeddingTgt: {
		Name:        "embedding-target",
		ViperKey:    "embedding.target",
		Description: "Embedding provider URL",
	},
	config.FlagEmbeddingModel: {
		Name:        "embedding-model",
		Shorthand:   "m",
		ViperKey:    "embedding.model",
		Description: "Embedding model",
	},
	config.FlagEmbeddingDims: {
		Name:        "embedding-dimensions",
		ViperKey:    "embedding.dimensions",
		Description: "Embedding vector size",
	},
}

// serveFlagKeys lists the registry keys bound to viper for this command.
var serveFlagKeys = []string{
	config.FlagTransport,
	config.FlagListen,
	config.FlagLogFile,
	config.FlagQdrantURL,
	config.FlagQdrantAPIKey,
	config.FlagCollection,
	config.FlagSearchLimit,
	config.FlagReadOnly,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
}

type ServeCommander struct {
	transport      string
	listen         string
	logFile        string
	qdrantURL      string
	qdrantAPIKey   string
	collection     string
	searchLimit    uint
	readOnly       bool
	embeddingProv  string
	embeddingTgt   string
	embeddingModel string
	embeddingDims  uint
	debug          bool

	viper  *viper.Viper
	logger *slog.Logger
}

const serveLongDesc string = `Run the MCP server.

The stdio transport (the default) speaks MCP on stdin/stdout and routes all
logging to stderr. The http transport serves stateless streamable HTTP on
the configured listen address.

Examples:
  qdrantmcp serve
  qdrantmcp serve --transport http --listen :8000
  qdrantmcp serve --collection memories --read-only`

const serveShortDesc string = "Run the MCP server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}

			config.BindRegisteredFlags(v, cmd, serveFlags, serveFlagKeys)
			cmder.viper = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			cmder.resolve()
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, serveFlags, config.FlagTransport, &cmder.transport)
	config.AddStringFlag(cmd, serveFlags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, serveFlags, config.FlagLogFile, &cmder.logFile)
	config.AddStringFlag(cmd, serveFlags, config.FlagQdrantURL, &cmder.qdrantURL)
	config.AddStringFlag(cmd, serveFlags, config.FlagQdrantAPIKey, &cmder.qdrantAPIKey)
	config.AddStringFlag(cmd, serveFlags, config.FlagCollection, &cmder.collection)
	config.AddUintFlag(cmd, serveFlags, config.FlagSearchLimit, &cmder.searchLimit)
	config.AddBoolFlag(cmd, serveFlags, config.FlagReadOnly, &cmder.readOnly)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingProv, &cmder.embeddingProv)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingTgt, &cmder.embeddingTgt)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingModel, &cmder.embeddingModel)
	config.AddUintFlag(cmd, serveFlags, config.FlagEmbeddingDims, &cmder.embeddingDims)

	return cmd
}

// resolve reads the final values out of the viper precedence chain
// (flag > env > config file > default).
func (c *ServeCommander) resolve() {
	v := c.viper

	c.transport = v.GetString("server.transport")
	c.listen = v.GetString("server.listen")
	c.logFile = v.GetString("server.log_file")
	c.qdrantURL = v.GetString("qdrant.url")
	c.qdrantAPIKey = v.GetString("qdrant.api_key")
	c.collection = v.GetString("qdrant.collection")
	c.searchLimit = v.GetUint("qdrant.search_limit")
	c.readOnly = v.GetBool("qdrant.read_only")
	c.embeddingProv = v.GetString("embedding.provider")
	c.embeddingTgt = v.GetString("embedding.target")
	c.embeddingModel = v.GetString("embedding.model")
	c.embeddingDims = v.GetUint("embedding.dimensions")
}

func (c *ServeCommander) run(ctx context.Context) error {
	if c.transport != "stdio" && c.transport != "http" {
		return fmt.Errorf("unknown transport %q (expected stdio or http)", c.transport)
	}

	log, closeLogs, err := newLogger(c.transport, c.debug, c.logFile)
	if err != nil {
		return err
	}
	c.logger = log
	defer closeLogs()

	filterFields, err := c.filterableFields()
	if err != nil {
		return err
	}

	embedder, err := c.newEmbedder()
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	defer embedder.Close()

	driver, err := memoryutils.NewDriver(&memoryutils.NewDriverOpts{
		ProviderType:     "qdrant",
		TargetURL:        c.qdrantURL,
		APIKey:           c.qdrantAPIKey,
		Embedder:         embedder,
		FilterableFields: filterFields,
		Logger:           c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating memory driver: %w", err)
	}
	defer driver.Close()

	publisher, err := c.newPublisher()
	if err != nil {
		return fmt.Errorf("creating event publisher: %w", err)
	}
	defer publisher.Close()

	server, err := mcp.NewServer(mcp.Config{
		Driver:            driver,
		Publisher:         publisher,
		DefaultCollection: c.collection,
		SearchLimit:       int(c.searchLimit),
		ReadOnly:          c.readOnly,
		FilterableFields:  filterFields,
		ToolDescriptions: mcp.ToolDescriptions{
			Find:   c.viper.GetString("tools.find_description"),
			Store:  c.viper.GetString("tools.store_description"),
			List:   c.viper.GetString("tools.list_description"),
			Edit:   c.viper.GetString("tools.edit_description"),
			Delete: c.viper.GetString("tools.delete_description"),
		},
		Logger: c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	c.logger.Info("starting MCP server",
		"transport", c.transport,
		"collection", c.collection,
		"read_only", c.readOnly,
		"tools", server.Tools(),
	)

	if c.transport == "stdio" {
		return c.runStdio(ctx, server)
	}
	return c.runHTTP(server)
}

// runStdio serves MCP on stdin/stdout until EOF or a signal.
func (c *ServeCommander) runStdio(ctx context.Context, server *mcp.Server) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx)
}

// runHTTP serves the streamable HTTP handler with graceful shutdown.
func (c *ServeCommander) runHTTP(server *mcp.Server) error {
	httpServer := &http.Server{
		Addr:    c.listen,
		Handler: server.Handler(),
	}

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	c.logger.Info("listening", "addr", c.listen)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

// newLogger builds the transport-appropriate logger. The stdio transport
// keeps stdout clean for the protocol and writes pretty logs to stderr;
// http writes JSON to stdout. A configured log file receives a JSON copy
// of every record via logger.Multi. Debug mode includes source locations.
func newLogger(transport string, debug bool, logFile string) (*slog.Logger, func() error, error) {
	var console *slog.Logger
	if transport == "stdio" {
		console = logger.New(
			logger.WithDebug(debug),
			logger.WithPretty(true),
			logger.WithSource(debug),
			logger.WithWriter(os.Stderr),
		)
	} else {
		console = logger.New(
			logger.WithDebug(debug),
			logger.WithJSON(true),
			logger.WithSource(debug),
		)
	}

	if logFile == "" {
		return console, func() error { return nil }, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	file := logger.New(
		logger.WithDebug(debug),
		logger.WithJSON(true),
		logger.WithSource(debug),
		logger.WithWriter(f),
	)

	return logger.Multi(console, file), f.Close, nil
}

// filterableFields decodes the structured qdrant.filterable_fields config
// into the domain declaration the driver and tool layer share.
func (c *ServeCommander) filterableFields() ([]memory.FilterableField, error) {
	var raw []config.FilterableField
	if err := c.viper.UnmarshalKey("qdrant.filterable_fields", &raw); err != nil {
		return nil, fmt.Errorf("parsing qdrant.filterable_fields: %w", err)
	}

	fields := make([]memory.FilterableField, 0, len(raw))
	for _, f := range raw {
		fields = append(fields, memory.FilterableField{
			Name:        f.Name,
			Description: f.Description,
			Type:        memory.FieldType(f.Type),
			Condition:   memory.ConditionOp(f.Condition),
			Required:    f.Required,
		})
	}

	if err := memory.ValidateFilterableFields(fields); err != nil {
		return nil, fmt.Errorf("qdrant.filterable_fields: %w", err)
	}
	return fields, nil
}

func (c *ServeCommander) newEmbedder() (embeddings.Embedder, error) {
	return embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: c.embeddingProv,
		TargetURL:    c.embeddingTgt,
		Model:        c.embeddingModel,
		Dimensions:   uint64(c.embeddingDims),
	})
}

func (c *ServeCommander) newPublisher() (eventstream.Publisher, error) {
	if !c.viper.GetBool("eventstream.enabled") {
		return nop.NewPublisher(), nil
	}

	var brokers []string
	for _, b := range strings.Split(c.viper.GetString("eventstream.brokers"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	c.logger.Info("publishing mutation events",
		"brokers", brokers,
		"topic", c.viper.GetString("eventstream.topic"),
	)

	return kafkastream.NewPublisher(kafkastream.Config{
		Brokers: brokers,
		Topic:   c.viper.GetString("eventstream.topic"),
	})
}
