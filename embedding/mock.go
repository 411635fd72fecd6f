package embedding

import "context"

// MockEmbeddingModel is a fixed-vector stand-in for ONNXModel in tests.
type MockEmbeddingModel struct {
	// Embedding is returned for every call unless Embeddings has an entry
	// for the given text.
	Embedding []float64
	// Embeddings, when set, maps input text to a specific vector so tests
	// can assert on distinguishable results.
	Embeddings map[string][]float64
	Err        error
	ModelInfo  EmbeddingInfo
}

// NewMockEmbeddingModel creates a MockEmbeddingModel returning a fixed vector.
func NewMockEmbeddingModel(embedding []float64) *MockEmbeddingModel {
	return &MockEmbeddingModel{
		Embedding: embedding,
		ModelInfo: EmbeddingInfo{ModelName: "mock", Dimensions: len(embedding)},
	}
}

func (m *MockEmbeddingModel) GetTextEmbedding(ctx context.Context, text string) ([]float64, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if v, ok := m.Embeddings[text]; ok {
		return v, nil
	}
	return m.Embedding, nil
}

func (m *MockEmbeddingModel) GetQueryEmbedding(ctx context.Context, query string) ([]float64, error) {
	return m.GetTextEmbedding(ctx, query)
}

func (m *MockEmbeddingModel) Info() EmbeddingInfo {
	return m.ModelInfo
}
