package config

const (
	defaultQdrantURL   = "http://localhost:6334"
	defaultSearchLimit = 10

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingTarget     = "http://localhost:11434"
	defaultEmbeddingModel      = "nomic-embed-text"
	defaultEmbeddingDimensions = 768

	defaultTransport = "stdio"
	defaultListen    = ":8000"

	defaultEventStreamTopic = "memory-mutations"

	defaultFindDescription = "Look up memories in Qdrant. Use this tool when you need to " +
		"find memories by their content, access memories for further analysis, " +
		"or get some personal information about the user."
	defaultStoreDescription = "Keep the memory for later use, when you are asked to remember something."
	defaultListDescription  = "List stored memories with their point ids. Supports limit and offset " +
		"for paginating through large collections."
	defaultEditDescription = "Replace the content and metadata of an existing memory point by its id. " +
		"The point must already exist."
	defaultDeleteDescription = "Delete a memory point by its id."
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Qdrant: QdrantConfig{
			URL:         defaultQdrantURL,
			SearchLimit: defaultSearchLimit,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultEmbeddingTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		Server: ServerConfig{
			Transport: defaultTransport,
			Listen:    defaultListen,
		},
		EventStream: EventStreamConfig{
			Topic: defaultEventStreamTopic,
		},
		Tools: ToolsConfig{
			FindDescription:   defaultFindDescription,
			StoreDescription:  defaultStoreDescription,
			ListDescription:   defaultListDescription,
			EditDescription:   defaultEditDescription,
			DeleteDescription: defaultDeleteDescription,
		},
	}
}
