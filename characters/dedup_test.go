package characters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storymind/llm"
)

func TestDeduplicateSingleNameUnchanged(t *testing.T) {
	canon, aliases, err := Deduplicate(context.Background(), []string{"Harry Potter"}, DedupOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Harry Potter"}, canon)
	assert.Empty(t, aliases)
}

func TestDeduplicateTitleStrippingMerge(t *testing.T) {
	canon, aliases, err := Deduplicate(context.Background(), []string{"Mrs Smith", "Professor Smith"}, DedupOptions{})
	require.NoError(t, err)
	require.Len(t, canon, 1)
	assert.Equal(t, "Professor Smith", canon[0]) // longer form wins
	assert.Len(t, aliases, 1)
}

func TestDeduplicateSubstringMerge(t *testing.T) {
	canon, aliases, err := Deduplicate(context.Background(), []string{"Harry", "Harry Potter"}, DedupOptions{})
	require.NoError(t, err)
	require.Len(t, canon, 1)
	assert.Equal(t, "Harry Potter", canon[0])
	assert.Equal(t, "Harry Potter", aliases["Harry"])
}

func TestDeduplicateFuzzyMatchMisspelling(t *testing.T) {
	// Single-character edit on a long name clears the 0.85 similarity bar;
	// "Hermoine" vs "Hermione" (a transposition, distance 2 under plain
	// Levenshtein) would not, so a true single-edit typo is used instead.
	canon, _, err := Deduplicate(context.Background(), []string{"Dumbledore", "Dumbledor"}, DedupOptions{})
	require.NoError(t, err)
	assert.Len(t, canon, 1)
}

func TestDeduplicateNoDuplicatesZeroLLMCalls(t *testing.T) {
	// The mock answers "yes" to every question, so a single semantic call
	// would merge two of these names and break the length assertion below.
	mock := llm.NewMockLLM("yes")
	canon, aliases, err := Deduplicate(context.Background(), []string{"Harry Potter", "Dumbledore", "Hagrid"}, DedupOptions{
		SemanticEnabled: false,
		SemanticModel:   mock,
	})
	require.NoError(t, err)
	assert.Len(t, canon, 3)
	assert.Empty(t, aliases)
}

func TestDeduplicateSemanticDegradesSilentlyOnQuotaFailure(t *testing.T) {
	mock := llm.NewMockLLMWithError(llm.ErrLLMQuotaExceeded)
	canon, _, err := Deduplicate(context.Background(), []string{"Mrs Dursley", "Petunia"}, DedupOptions{
		SemanticEnabled: true,
		SemanticModel:   mock,
	})
	require.NoError(t, err)
	// No string-level signal merges these, and the semantic pass fails
	// silently, so both survive as distinct canonical names.
	assert.Len(t, canon, 2)
}

func TestDeduplicateSemanticMergeOnYes(t *testing.T) {
	mock := llm.NewMockLLM("yes")
	canon, aliases, err := Deduplicate(context.Background(), []string{"Mrs Dursley", "Petunia"}, DedupOptions{
		SemanticEnabled: true,
		SemanticModel:   mock,
	})
	require.NoError(t, err)
	assert.Len(t, canon, 1)
	assert.Len(t, aliases, 1)
}

func TestStripTitle(t *testing.T) {
	stripped, had := stripTitle("Professor Dumbledore")
	assert.True(t, had)
	assert.Equal(t, "Dumbledore", stripped)

	stripped, had = stripTitle("Harry Potter")
	assert.False(t, had)
	assert.Equal(t, "Harry Potter", stripped)
}
