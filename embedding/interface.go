package embedding

import "context"

// EmbeddingModel generates text embeddings for indexing and search.
type EmbeddingModel interface {
	// GetTextEmbedding generates an embedding for a document chunk.
	GetTextEmbedding(ctx context.Context, text string) ([]float64, error)
	// GetQueryEmbedding generates an embedding for a search query. Some
	// models treat queries and documents asymmetrically; most don't.
	GetQueryEmbedding(ctx context.Context, query string) ([]float64, error)
}

// EmbeddingModelWithInfo extends EmbeddingModel with model identity, used
// to pin an Index to the model it was built with.
type EmbeddingModelWithInfo interface {
	EmbeddingModel
	Info() EmbeddingInfo
}
