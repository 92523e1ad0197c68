// Package embeddings
package embeddings

import "context"

// Embedder provides text embedding capabilities.
type Embedder interface {
	// Embed converts text into a vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// VectorName is the named-vector key the embeddings are stored under.
	// Derived from the model so that collections created with one model are
	// not silently queried with another.
	VectorName() string

	// Dimensions is the embedding vector size.
	Dimensions() uint64

	// Close releases any resources held by the embedder.
	Close() error
}
