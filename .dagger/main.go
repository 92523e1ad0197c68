// QdrantMCP CI/CD
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
// It is the main harness for handling nearly all dev operations.
package main

import (
	"context"

	"dagger/qdrantmcp/internal/dagger"
)

// QdrantMCP is the main module for the qdrantmcp CI/CD pipeline
type QdrantMCP struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new QdrantMCP CI/CD module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".direnv", ".devenv", "build", "tmp"]
	source *dagger.Directory,
) *QdrantMCP {
	return &QdrantMCP{
		Source: source,
	}
}

// goContainer returns a Debian Bookworm-based Go container with the project
// source mounted and module/build caches attached.
//
// It is the shared foundation for tests, builds, and linting.
func (q *QdrantMCP) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-bookworm").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", q.Source)
}

// Test runs the qdrantmcp unit tests via "go test"
func (q *QdrantMCP) Test(ctx context.Context) (string, error) {
	return q.goContainer().
		WithExec([]string{"go", "test", "-v", "./..."}).
		Stdout(ctx)
}
