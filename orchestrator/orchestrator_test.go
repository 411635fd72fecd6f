package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storymind/embedding"
	"storymind/llm"
	"storymind/schema"
	"storymind/store"
)

const shortNovelText = "Harry Potter had untidy black hair. Ron Weasley loved playing chess."

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestOrchestrator(t *testing.T, responses []string) (*Orchestrator, *store.MetadataStore) {
	t.Helper()
	dir := t.TempDir()

	st, err := store.NewMetadataStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	model := &embedding.MockEmbeddingModel{
		Embedding: []float64{0.5, 0.5},
		Embeddings: map[string][]float64{
			shortNovelText: {1, 0},
		},
		ModelInfo: embedding.EmbeddingInfo{ModelName: "mock-384", Dimensions: 2},
	}

	mockLLM := &llm.MockLLM{Responses: responses}

	o := New(st, model, mockLLM, nil, filepath.Join(dir, "index"))
	return o, st
}

func TestIngestFullSequence(t *testing.T) {
	responses := []string{
		`["Harry Potter", "Ron Weasley"]`,
		"Harry has untidy black hair.",
		`[{"other_name": "Ron Weasley", "relation": "best friend"}]`,
		"Ron has red hair and loves chess.",
		`[{"other_name": "Harry Potter", "relation": "best friend"}]`,
	}
	o, st := newTestOrchestrator(t, responses)
	o.ExtractRelationships = true

	dir := t.TempDir()
	path := writeTestFile(t, dir, "HP-PS.txt", shortNovelText)

	sourceID, err := o.Ingest(context.Background(), path)
	require.NoError(t, err)
	require.NotEmpty(t, sourceID)

	src, err := st.GetSource(sourceID)
	require.NoError(t, err)
	require.NotNil(t, src)
	assert.Equal(t, schema.StateCompleted, src.State)
	assert.Equal(t, "HP-PS", src.Title)
	assert.Equal(t, 2, src.CharacterCount)

	chars, err := st.GetCharactersBySource(sourceID)
	require.NoError(t, err)
	require.Len(t, chars, 2)
	for _, c := range chars {
		assert.NotZero(t, c.Seed)
		assert.NotEmpty(t, c.Description)
	}
}

func TestIngestSupersedesSameNormalizedTitle(t *testing.T) {
	// The relationship pass is off by default, so each ingest only
	// consumes two responses (names, profile).
	responses := []string{
		`["Harry Potter"]`, "desc one",
		`["Harry Potter"]`, "desc two",
	}
	o, st := newTestOrchestrator(t, responses)

	dir := t.TempDir()
	path := writeTestFile(t, dir, "HP-PS.txt", shortNovelText)

	firstID, err := o.Ingest(context.Background(), path)
	require.NoError(t, err)

	secondID, err := o.Ingest(context.Background(), path)
	require.NoError(t, err)
	assert.NotEqual(t, firstID, secondID)

	gone, err := st.GetSource(firstID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	sources, err := st.ListSources()
	require.NoError(t, err)
	assert.Len(t, sources, 1)
}

func TestIngestUnsupportedFormatFails(t *testing.T) {
	o, _ := newTestOrchestrator(t, nil)
	dir := t.TempDir()
	path := writeTestFile(t, dir, "book.docx", "irrelevant")

	_, err := o.Ingest(context.Background(), path)
	require.Error(t, err)
}

func TestDeleteSourceCascades(t *testing.T) {
	responses := []string{`["Harry Potter"]`, "desc"}
	o, st := newTestOrchestrator(t, responses)

	dir := t.TempDir()
	path := writeTestFile(t, dir, "HP-PS.txt", shortNovelText)
	sourceID, err := o.Ingest(context.Background(), path)
	require.NoError(t, err)

	require.NoError(t, o.DeleteSource(context.Background(), sourceID))

	gone, err := st.GetSource(sourceID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	chars, err := st.GetCharactersBySource(sourceID)
	require.NoError(t, err)
	assert.Empty(t, chars)
}

func TestDeleteSourceMissingIsError(t *testing.T) {
	o, _ := newTestOrchestrator(t, nil)
	err := o.DeleteSource(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestOtherNamesExcludesSelf(t *testing.T) {
	names := otherNames([]string{"Harry", "Ron", "Hermione"}, "Ron")
	assert.Equal(t, []string{"Harry", "Hermione"}, names)
}
