package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storymind/embedding"
	"storymind/llm"
	"storymind/visual"
)

func TestSetAndGetLLMOverride(t *testing.T) {
	mock := llm.NewMockLLM("hello")
	SetLLM(mock)
	got := LLM()
	assert.Same(t, mock, got)
}

func TestSetAndGetEmbeddingModelOverride(t *testing.T) {
	mock := embedding.NewMockEmbeddingModel([]float64{1, 0, 0})
	SetEmbeddingModel(mock)
	got, err := EmbeddingModel()
	require.NoError(t, err)
	assert.Same(t, mock, got)

	vec, err := got.GetTextEmbedding(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 0}, vec)
}

func TestSetAndGetImageGeneratorOverride(t *testing.T) {
	client := visual.NewImageClient("key", "http://localhost:0")
	gen := visual.NewGenerator(client, t.TempDir())
	SetImageGenerator(gen)
	assert.Same(t, gen, ImageGenerator())
}

func TestEmbeddingModelDirDefaultsWhenUnset(t *testing.T) {
	t.Setenv("STORYMIND_EMBEDDING_MODEL_DIR", "")
	assert.Equal(t, "models/bge-small-en-v1.5", embeddingModelDir())
}

func TestEmbeddingModelDirHonorsEnv(t *testing.T) {
	t.Setenv("STORYMIND_EMBEDDING_MODEL_DIR", "/custom/path")
	assert.Equal(t, "/custom/path", embeddingModelDir())
}
