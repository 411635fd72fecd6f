package visual

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storymind/characters"
	"storymind/schema"
)

func TestAssemblePrompt(t *testing.T) {
	prompt := assemblePrompt("a tall wizard with round glasses", DefaultStyle, 42)
	assert.Equal(t, "a tall wizard with round glasses, "+DefaultStyle+" [ID: 42]", prompt)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "harry-potter", slug("Harry Potter"))
	assert.Equal(t, "mrs-dursley", slug("Mrs. Dursley"))
}

func TestImagePathDeterministic(t *testing.T) {
	p1 := ImagePath("/images", "Harry Potter", 42)
	p2 := ImagePath("/images", "Harry Potter", 42)
	assert.Equal(t, p1, p2)
	assert.Equal(t, filepath.Join("/images", "harry-potter_42.png"), p1)
}

func TestGenerateSuccessWritesRealImage(t *testing.T) {
	pixel := []byte{0x89, 0x50, 0x4e, 0x47} // stand-in bytes, content not validated by the client
	b64 := base64.StdEncoding.EncodeToString(pixel)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"b64_json":"` + b64 + `"}]}`))
	}))
	defer server.Close()

	dir := t.TempDir()
	client := NewImageClient("test-key", server.URL)
	gen := NewGenerator(client, dir)

	profile := characters.Profile{Name: "Harry Potter", Description: "a boy with round glasses"}
	img, err := gen.Generate(context.Background(), profile, 42, "", "")
	require.NoError(t, err)
	assert.Equal(t, schema.OutcomeReal, img.Outcome)

	written, err := os.ReadFile(img.Path)
	require.NoError(t, err)
	assert.Equal(t, pixel, written)
}

func TestGenerateProviderErrorFallsBackToPlaceholder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": "quota exceeded"}`))
	}))
	defer server.Close()

	dir := t.TempDir()
	client := NewImageClient("test-key", server.URL)
	gen := NewGenerator(client, dir)

	profile := characters.Profile{Name: "Harry Potter", Description: "a boy with round glasses"}
	img, err := gen.Generate(context.Background(), profile, 42, "", "")
	require.NoError(t, err)
	assert.Equal(t, schema.OutcomePlaceholder, img.Outcome)

	info, err := os.Stat(img.Path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestGenerateRegenerationOverwritesSamePath(t *testing.T) {
	dir := t.TempDir()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewImageClient("test-key", server.URL)
	gen := NewGenerator(client, dir)
	profile := characters.Profile{Name: "Harry Potter", Description: "description one"}

	first, err := gen.Generate(context.Background(), profile, 42, "", "")
	require.NoError(t, err)

	profile.Description = "description two, updated"
	second, err := gen.Generate(context.Background(), profile, 42, "", "")
	require.NoError(t, err)

	assert.Equal(t, first.Path, second.Path)
}
