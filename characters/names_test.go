package characters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storymind/llm"
)

func TestExtractNamesParsesJSONArray(t *testing.T) {
	mock := llm.NewMockLLM(`["Harry Potter", "Hermione Granger", "Ron Weasley"]`)
	names, err := ExtractNames(context.Background(), mock, "some novel text", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Harry Potter", "Hermione Granger", "Ron Weasley"}, names)
}

func TestExtractNamesStripsCodeFence(t *testing.T) {
	mock := llm.NewMockLLM("```json\n[\"Harry Potter\"]\n```")
	names, err := ExtractNames(context.Background(), mock, "text", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Harry Potter"}, names)
}

func TestExtractNamesTruncatesToLimit(t *testing.T) {
	mock := llm.NewMockLLM(`["A", "B", "C", "D"]`)
	names, err := ExtractNames(context.Background(), mock, "text", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, names)
}

func TestExtractNamesRejectsNonJSON(t *testing.T) {
	mock := llm.NewMockLLM("Harry Potter, Hermione Granger")
	_, err := ExtractNames(context.Background(), mock, "text", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtractionParse)
}

func TestExtractNamesPropagatesLLMError(t *testing.T) {
	mock := llm.NewMockLLMWithError(llm.ErrLLMQuotaExceeded)
	_, err := ExtractNames(context.Background(), mock, "text", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrLLMQuotaExceeded)
}

func TestNormalizeNameCollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "Harry Potter", normalizeName("  Harry   Potter  "))
}

func TestStripCodeFencePlain(t *testing.T) {
	assert.Equal(t, `["A"]`, stripCodeFence(`["A"]`))
}
