// Package memory provides a pluggable memory layer backed by a vector store.
//
// A memory is a free-form text entry with optional metadata, stored as a
// point in a named collection. Drivers own embedding and persistence; the
// MCP layer deals only in text entries and opaque point ids.
//
// The [Driver] interface is intentionally minimal: Store writes a new
// point, Find runs semantic search, Get/Update/Delete address a point by
// its id, List paginates through a collection, and Close releases
// resources. Update and Delete never create points; both fail with
// [ErrPointNotFound] when the id does not resolve.
//
// Drivers are pluggable via configuration:
//
//	[qdrant]
//	url = "http://localhost:6334"
package memory

import "context"

// Entry is a single memory payload: free-form text content plus optional
// free-form metadata.
type Entry struct {
	// Content is the memorised text.
	Content string `json:"content"`

	// Metadata is arbitrary JSON stored alongside the content.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Point is a stored entry together with its identifier. Ids are opaque to
// this layer; the backing store decides what shapes are valid.
type Point struct {
	// ID identifies the point within its collection.
	ID string `json:"id"`

	Entry
}

// Driver handles storage and recall of memory entries in a vector store.
type Driver interface {
	// Store persists a new entry into the collection and returns the id of
	// the created point. The collection is created when it does not exist.
	Store(ctx context.Context, collection string, entry Entry) (string, error)

	// Find returns the entries most relevant to the query, best match
	// first. A non-empty filter restricts results to points whose
	// metadata satisfies every condition. A missing collection yields
	// ErrCollectionNotFound.
	Find(ctx context.Context, collection, query string, limit int, filter Filter) ([]Point, error)

	// Get fetches a single point by id.
	Get(ctx context.Context, collection, id string) (*Point, error)

	// Update re-embeds and overwrites the point at an existing id.
	// The point must already exist; Update never creates one.
	Update(ctx context.Context, collection, id string, entry Entry) error

	// Delete removes the point with the given id. The point must exist.
	Delete(ctx context.Context, collection, id string) error

	// List pages through the collection's points in stable id order.
	List(ctx context.Context, collection string, limit, offset int) ([]Point, error)

	// Collections returns the names of all collections in the store.
	Collections(ctx context.Context) ([]string, error)

	// Close releases driver resources.
	Close() error
}
