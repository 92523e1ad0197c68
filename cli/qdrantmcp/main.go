package main

import (
	"os"

	qdrantmcpcmder "github.com/cielhaidir/mcp-server-qdrant/cmd/qdrantmcp"
)

func main() {
	cmd := qdrantmcpcmder.NewQdrantMCPCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
