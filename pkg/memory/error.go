package memory

import "errors"

var (
	// ErrPointNotFound is returned when a point id does not resolve to a
	// stored point in the collection.
	ErrPointNotFound = errors.New("point not found")

	// ErrCollectionNotFound is returned when the named collection does not
	// exist in the vector store.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrInvalidPointID is returned when a point id is neither a UUID nor
	// an unsigned integer.
	ErrInvalidPointID = errors.New("invalid point id")

	// ErrConnection is returned when the vector store cannot be reached.
	ErrConnection = errors.New("vector store connection failed")

	// ErrEmbedding is returned when embedding generation fails.
	ErrEmbedding = errors.New("embedding failed")
)
