package visual

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ImageClient talks to an OpenAI-compatible image generation endpoint.
// Directly grounded on the teacher pack's DALLEClient: same request/
// response shape, base64 decode, and http.Client-with-timeout style.
type ImageClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewImageClient builds an ImageClient against the given base URL (an
// OpenAI-compatible /v1 root) authenticating with apiKey.
func NewImageClient(apiKey, baseURL string) *ImageClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &ImageClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
	}
}

// imageRequest is the wire request for one image generation call: one
// image, a size chosen from the aspect ratio, a permissive moderation setting, and the
// character's seed sent two ways — as Seed, for providers that honor a
// numeric seed parameter, and embedded in Prompt as a textual anchor for
// those that don't.
type imageRequest struct {
	Model      string `json:"model"`
	Prompt     string `json:"prompt"`
	N          int    `json:"n"`
	Size       string `json:"size"`
	Seed       uint32 `json:"seed,omitempty"`
	Moderation string `json:"moderation,omitempty"`
}

type imageResponse struct {
	Data []imageResult `json:"data"`
}

type imageResult struct {
	B64JSON string `json:"b64_json"`
}

// generationSize maps the "W:H" aspect ratio string to a provider-
// supported image size, defaulting to square.
func generationSize(aspectRatio string) string {
	switch aspectRatio {
	case "16:9":
		return "1792x1024"
	case "9:16":
		return "1024x1792"
	default:
		return "1024x1024"
	}
}

// GenerateImage issues one image generation call and returns the raw,
// decoded image bytes. The caller decides the outcome tag and fallback
// behavior; this method only wraps the HTTP round trip. seed is passed
// as the provider's numeric seed parameter where supported; 0 omits it.
func (c *ImageClient) GenerateImage(ctx context.Context, prompt, aspectRatio string, seed uint32) ([]byte, error) {
	req := imageRequest{
		Model:      "gpt-image-1",
		Prompt:     prompt,
		N:          1,
		Size:       generationSize(aspectRatio),
		Seed:       seed,
		Moderation: "low",
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", ErrProviderUnavailable, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images/generations", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrProviderUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrProviderUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrProviderUnavailable, resp.StatusCode, string(respBody))
	}

	var parsed imageResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: parsing response: %v", ErrProviderUnavailable, err)
	}
	if len(parsed.Data) == 0 || parsed.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("%w: no image data in response", ErrProviderUnavailable)
	}

	imgBytes, err := base64.StdEncoding.DecodeString(parsed.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding image: %v", ErrProviderUnavailable, err)
	}
	return imgBytes, nil
}
