// Package memoryutils is the memory driver utility package
package memoryutils

import (
	"fmt"
	"log/slog"

	"github.com/cielhaidir/mcp-server-qdrant/pkg/embeddings"
	"github.com/cielhaidir/mcp-server-qdrant/pkg/memory"
	"github.com/cielhaidir/mcp-server-qdrant/pkg/memory/qdrant"
)

type NewDriverOpts struct {
	ProviderType     string
	TargetURL        string
	APIKey           string
	Embedder         embeddings.Embedder
	FilterableFields []memory.FilterableField
	Logger           *slog.Logger
}

func NewDriver(o *NewDriverOpts) (memory.Driver, error) {
	switch o.ProviderType {
	case "qdrant":
		return qdrant.NewDriver(qdrant.Config{
			URL:              o.TargetURL,
			APIKey:           o.APIKey,
			Embedder:         o.Embedder,
			FilterableFields: o.FilterableFields,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported memory provider: %s", o.ProviderType)
	}
}
