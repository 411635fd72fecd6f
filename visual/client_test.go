package visual

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateImageDecodesBase64(t *testing.T) {
	want := []byte("fake-png-bytes")
	b64 := base64.StdEncoding.EncodeToString(want)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":[{"b64_json":"` + b64 + `"}]}`))
	}))
	defer server.Close()

	client := NewImageClient("test-key", server.URL)
	got, err := client.GenerateImage(context.Background(), "a wizard", "1:1", 42)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGenerateImageNonOKStatusIsProviderUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewImageClient("test-key", server.URL)
	_, err := client.GenerateImage(context.Background(), "a wizard", "1:1", 42)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestGenerateImageEmptyDataIsProviderUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client := NewImageClient("test-key", server.URL)
	_, err := client.GenerateImage(context.Background(), "a wizard", "1:1", 42)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestGenerationSizeMapping(t *testing.T) {
	assert.Equal(t, "1024x1024", generationSize("1:1"))
	assert.Equal(t, "1792x1024", generationSize("16:9"))
	assert.Equal(t, "1024x1792", generationSize("9:16"))
	assert.Equal(t, "1024x1024", generationSize(""))
}
