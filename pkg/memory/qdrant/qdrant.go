// Package qdrant provides a Qdrant vector database driver implementation.
package qdrant

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	qdrantgo "github.com/qdrant/go-client/qdrant"

	"github.com/cielhaidir/mcp-server-qdrant/pkg/embeddings"
	qmlogger "github.com/cielhaidir/mcp-server-qdrant/pkg/logger"
	"github.com/cielhaidir/mcp-server-qdrant/pkg/memory"
)

const (
	// DefaultPort is Qdrant's gRPC port.
	DefaultPort = 6334

	// documentKey is the payload field holding the memorised text.
	documentKey = "document"

	// metadataKey is the payload field holding free-form metadata.
	metadataKey = "metadata"
)

// Driver implements memory.Driver on Qdrant's gRPC API. Each entry is
// stored as a point whose payload carries the document text and metadata,
// under a named vector owned by the configured embedder.
type Driver struct {
	client   *qdrantgo.Client
	embedder embeddings.Embedder
	fields   []memory.FilterableField
	logger   *slog.Logger
}

// Config holds configuration for the Qdrant driver.
type Config struct {
	// URL is the Qdrant server URL (e.g., "http://localhost:6334").
	// An https scheme enables TLS; a missing port defaults to DefaultPort.
	URL string

	// APIKey authenticates against Qdrant Cloud. Empty for local instances.
	APIKey string

	// Embedder converts entry text to vectors and names the vector space.
	Embedder embeddings.Embedder

	// FilterableFields are payload-indexed on collection creation and
	// accepted as find filters.
	FilterableFields []memory.FilterableField
}

// NewDriver creates a new Qdrant memory driver.
func NewDriver(c Config, logger *slog.Logger) (*Driver, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("qdrant URL is required")
	}
	if c.Embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if err := memory.ValidateFilterableFields(c.FilterableFields); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = qmlogger.Nop()
	}

	host, port, useTLS, err := parseURL(c.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing qdrant URL %q: %w", c.URL, err)
	}

	client, err := qdrantgo.NewClient(&qdrantgo.Config{
		Host:   host,
		Port:   port,
		APIKey: c.APIKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating client: %v", memory.ErrConnection, err)
	}

	logger.Info("connected to Qdrant",
		"host", host,
		"port", port,
		"tls", useTLS,
		"vector_name", c.Embedder.VectorName(),
	)

	return &Driver{
		client:   client,
		embedder: c.Embedder,
		fields:   c.FilterableFields,
		logger:   logger,
	}, nil
}

// parseURL splits a Qdrant URL into gRPC connection parameters.
// Bare host names are accepted alongside full URLs.
func parseURL(raw string) (host string, port int, useTLS bool, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", 0, false, err
	}

	// url.Parse treats "localhost:6334" as scheme "localhost"; re-parse
	// bare host[:port] forms with an explicit scheme.
	if u.Host == "" {
		u, err = url.Parse("http://" + raw)
		if err != nil {
			return "", 0, false, err
		}
	}

	host = u.Hostname()
	if host == "" {
		return "", 0, false, fmt.Errorf("no host in URL")
	}

	port = DefaultPort
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return "", 0, false, fmt.Errorf("invalid port %q", p)
		}
	}

	return host, port, u.Scheme == "https", nil
}

// Store persists a new entry and returns the generated point id.
// The collection is created when it does not exist.
func (d *Driver) Store(ctx context.Context, collection string, entry memory.Entry) (string, error) {
	if err := d.ensureCollection(ctx, collection); err != nil {
		return "", err
	}

	vec, err := d.embedder.Embed(ctx, entry.Content)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	if err := d.upsert(ctx, collection, qdrantgo.NewID(id), entry, vec); err != nil {
		return "", err
	}

	d.logger.Debug("stored point", "collection", collection, "id", id)
	return id, nil
}

// Find returns the entries most similar to the query, best match first.
// A non-empty filter narrows the search to points whose metadata matches
// every condition.
func (d *Driver) Find(ctx context.Context, collection, query string, limit int, filter memory.Filter) ([]memory.Point, error) {
	if err := d.checkCollection(ctx, collection); err != nil {
		return nil, err
	}

	qf, err := queryFilter(filter)
	if err != nil {
		return nil, err
	}

	vec, err := d.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	results, err := d.client.Query(ctx, &qdrantgo.QueryPoints{
		CollectionName: collection,
		Query:          qdrantgo.NewQuery(vec...),
		Using:          qdrantgo.PtrOf(d.embedder.VectorName()),
		Filter:         qf,
		Limit:          qdrantgo.PtrOf(uint64(limit)),
		WithPayload:    qdrantgo.NewWithPayload(true),
	})
	if err != nil {
		return nil, translateError(err)
	}

	points := make([]memory.Point, 0, len(results))
	for _, r := range results {
		points = append(points, memory.Point{
			ID:    formatPointID(r.Id),
			Entry: entryFromPayload(r.Payload),
		})
	}

	return points, nil
}

// Get fetches a single point by id. Returns ErrPointNotFound when the id
// does not resolve.
func (d *Driver) Get(ctx context.Context, collection, id string) (*memory.Point, error) {
	if err := d.checkCollection(ctx, collection); err != nil {
		return nil, err
	}

	pointID, err := parsePointID(id)
	if err != nil {
		return nil, err
	}

	retrieved, err := d.client.Get(ctx, &qdrantgo.GetPoints{
		CollectionName: collection,
		Ids:            []*qdrantgo.PointId{pointID},
		WithPayload:    qdrantgo.NewWithPayload(true),
	})
	if err != nil {
		return nil, translateError(err)
	}

	if len(retrieved) == 0 {
		return nil, fmt.Errorf("%w: %s", memory.ErrPointNotFound, id)
	}

	return &memory.Point{
		ID:    formatPointID(retrieved[0].Id),
		Entry: entryFromPayload(retrieved[0].Payload),
	}, nil
}

// Update re-embeds and overwrites the point at an existing id. The point
// must already exist; a missing point fails without creating one.
func (d *Driver) Update(ctx context.Context, collection, id string, entry memory.Entry) error {
	// Existence check first so a failed edit cannot create a point.
	if _, err := d.Get(ctx, collection, id); err != nil {
		return err
	}

	vec, err := d.embedder.Embed(ctx, entry.Content)
	if err != nil {
		return err
	}

	pointID, err := parsePointID(id)
	if err != nil {
		return err
	}

	if err := d.upsert(ctx, collection, pointID, entry, vec); err != nil {
		return err
	}

	d.logger.Debug("updated point", "collection", collection, "id", id)
	return nil
}

// Delete removes the point with the given id. The point must exist.
func (d *Driver) Delete(ctx context.Context, collection, id string) error {
	if _, err := d.Get(ctx, collection, id); err != nil {
		return err
	}

	pointID, err := parsePointID(id)
	if err != nil {
		return err
	}

	_, err = d.client.Delete(ctx, &qdrantgo.DeletePoints{
		CollectionName: collection,
		Points:         qdrantgo.NewPointsSelector(pointID),
		Wait:           qdrantgo.PtrOf(true),
	})
	if err != nil {
		return translateError(err)
	}

	d.logger.Debug("deleted point", "collection", collection, "id", id)
	return nil
}

// List pages through the collection's points. An empty query against the
// Query API scrolls in stable id order and supports numeric offsets.
func (d *Driver) List(ctx context.Context, collection string, limit, offset int) ([]memory.Point, error) {
	if err := d.checkCollection(ctx, collection); err != nil {
		return nil, err
	}

	results, err := d.client.Query(ctx, &qdrantgo.QueryPoints{
		CollectionName: collection,
		Limit:          qdrantgo.PtrOf(uint64(limit)),
		Offset:         qdrantgo.PtrOf(uint64(offset)),
		WithPayload:    qdrantgo.NewWithPayload(true),
	})
	if err != nil {
		return nil, translateError(err)
	}

	points := make([]memory.Point, 0, len(results))
	for _, r := range results {
		points = append(points, memory.Point{
			ID:    formatPointID(r.Id),
			Entry: entryFromPayload(r.Payload),
		})
	}

	return points, nil
}

// Collections returns the names of all collections in the store.
func (d *Driver) Collections(ctx context.Context) ([]string, error) {
	names, err := d.client.ListCollections(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	return names, nil
}

// Close releases the underlying gRPC connection.
func (d *Driver) Close() error {
	return d.client.Close()
}

// upsert writes a point under the embedder's named vector.
func (d *Driver) upsert(ctx context.Context, collection string, id *qdrantgo.PointId, entry memory.Entry, vec []float32) error {
	_, err := d.client.Upsert(ctx, &qdrantgo.UpsertPoints{
		CollectionName: collection,
		Points: []*qdrantgo.PointStruct{{
			Id: id,
			Vectors: qdrantgo.NewVectorsMap(map[string]*qdrantgo.Vector{
				d.embedder.VectorName(): qdrantgo.NewVector(vec...),
			}),
			Payload: payloadFromEntry(entry),
		}},
		Wait: qdrantgo.PtrOf(true),
	})
	if err != nil {
		return translateError(err)
	}
	return nil
}

// checkCollection verifies the collection exists before a read or a
// point-addressed operation proceeds.
func (d *Driver) checkCollection(ctx context.Context, collection string) error {
	exists, err := d.client.CollectionExists(ctx, collection)
	if err != nil {
		return translateError(err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", memory.ErrCollectionNotFound, collection)
	}
	return nil
}

// ensureCollection creates the collection when missing, sized to the
// embedder's vector space with cosine distance.
func (d *Driver) ensureCollection(ctx context.Context, collection string) error {
	exists, err := d.client.CollectionExists(ctx, collection)
	if err != nil {
		return translateError(err)
	}
	if exists {
		return nil
	}

	err = d.client.CreateCollection(ctx, &qdrantgo.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrantgo.NewVectorsConfigMap(map[string]*qdrantgo.VectorParams{
			d.embedder.VectorName(): {
				Size:     d.embedder.Dimensions(),
				Distance: qdrantgo.Distance_Cosine,
			},
		}),
	})
	if err != nil {
		return translateError(err)
	}

	if err := d.createFieldIndexes(ctx, collection); err != nil {
		return err
	}

	d.logger.Info("created collection",
		"collection", collection,
		"vector_name", d.embedder.VectorName(),
		"dimensions", d.embedder.Dimensions(),
	)
	return nil
}

// createFieldIndexes adds a payload index for every filterable field so
// filtered finds stay fast on large collections.
func (d *Driver) createFieldIndexes(ctx context.Context, collection string) error {
	for _, f := range d.fields {
		fieldType, err := indexFieldType(f.Type)
		if err != nil {
			return err
		}

		_, err = d.client.CreateFieldIndex(ctx, &qdrantgo.CreateFieldIndexCollection{
			CollectionName: collection,
			FieldName:      metadataFieldKey(f.Name),
			FieldType:      &fieldType,
			Wait:           qdrantgo.PtrOf(true),
		})
		if err != nil {
			return translateError(err)
		}

		d.logger.Debug("created payload index",
			"collection", collection,
			"field", metadataFieldKey(f.Name),
			"type", f.Type,
		)
	}
	return nil
}

// parsePointID validates and converts an id string into Qdrant's id domain:
// UUIDs or unsigned integers. Anything else fails locally before any RPC.
func parsePointID(id string) (*qdrantgo.PointId, error) {
	if n, err := strconv.ParseUint(id, 10, 64); err == nil {
		return qdrantgo.NewIDNum(n), nil
	}
	if _, err := uuid.Parse(id); err == nil {
		return qdrantgo.NewID(id), nil
	}
	return nil, fmt.Errorf("%w: %q is neither a UUID nor an unsigned integer", memory.ErrInvalidPointID, id)
}

// Ensure Driver implements memory.Driver
var _ memory.Driver = (*Driver)(nil)
