package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockLLMFixedResponse(t *testing.T) {
	m := NewMockLLM("hello")
	got, err := m.Chat(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	got, err = m.Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestMockLLMError(t *testing.T) {
	wantErr := errors.New("boom")
	m := NewMockLLMWithError(wantErr)
	_, err := m.Chat(context.Background(), nil)
	assert.ErrorIs(t, err, wantErr)
}

func TestMockLLMSequencedResponses(t *testing.T) {
	m := &MockLLM{Responses: []string{"first", "second"}}
	got1, err := m.Chat(context.Background(), nil)
	require.NoError(t, err)
	got2, err := m.Chat(context.Background(), nil)
	require.NoError(t, err)
	got3, err := m.Chat(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "first", got1)
	assert.Equal(t, "second", got2)
	assert.Equal(t, "second", got3) // holds the last response once exhausted
}
