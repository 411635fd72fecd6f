// Package runtime holds the process-wide singletons the pipeline
// components share: the local embedding model, the LLM client, and the
// image generator. Each is built lazily on first use and cached for the
// life of the process, mirroring the teacher's settings package.
package runtime

import (
	"fmt"
	"os"
	"sync"

	"storymind/embedding"
	"storymind/llm"
	"storymind/visual"
)

var (
	mu sync.RWMutex

	embedOnce  sync.Once
	embedModel embedding.EmbeddingModel
	embedErr   error

	llmOnce   sync.Once
	llmClient llm.LLM

	imageOnce sync.Once
	imageGen  *visual.Generator
)

// embeddingModelDir returns the directory NewONNXModel loads model.onnx /
// tokenizer.json from: the STORYMIND_EMBEDDING_MODEL_DIR environment
// variable when set, else "models/bge-small-en-v1.5".
func embeddingModelDir() string {
	if dir := os.Getenv("STORYMIND_EMBEDDING_MODEL_DIR"); dir != "" {
		return dir
	}
	return "models/bge-small-en-v1.5"
}

// EmbeddingModel returns the process-wide ONNX embedding model,
// constructing it on first call. The error is cached too: a missing
// model directory is not transient, so repeated calls fail fast instead
// of re-attempting a load that cannot succeed.
func EmbeddingModel() (embedding.EmbeddingModel, error) {
	embedOnce.Do(func() {
		mu.RLock()
		override := embedModel
		mu.RUnlock()
		if override != nil {
			return
		}
		model, err := embedding.NewONNXModel(embeddingModelDir())
		if err != nil {
			embedErr = fmt.Errorf("initializing embedding model: %w", err)
			return
		}
		embedModel = model
	})
	mu.RLock()
	defer mu.RUnlock()
	return embedModel, embedErr
}

// SetEmbeddingModel overrides the process-wide embedding model, e.g. for
// tests or CLI flags that point at a different model directory. Must be
// called before the first EmbeddingModel() call takes effect.
func SetEmbeddingModel(m embedding.EmbeddingModel) {
	mu.Lock()
	defer mu.Unlock()
	embedModel = m
	embedErr = nil
}

// LLM returns the process-wide LLM client, constructing an OpenAILLM
// from environment configuration (OPENAI_API_KEY / OPENAI_URL /
// STORYMIND_LLM_MODEL) on first call.
func LLM() llm.LLM {
	llmOnce.Do(func() {
		mu.RLock()
		override := llmClient
		mu.RUnlock()
		if override != nil {
			return
		}
		model := os.Getenv("STORYMIND_LLM_MODEL")
		mu.Lock()
		llmClient = llm.NewOpenAILLM("", model, "")
		mu.Unlock()
	})
	mu.RLock()
	defer mu.RUnlock()
	return llmClient
}

// SetLLM overrides the process-wide LLM client.
func SetLLM(l llm.LLM) {
	mu.Lock()
	defer mu.Unlock()
	llmClient = l
}

// ImageGenerator returns the process-wide image Generator, constructing
// an ImageClient from environment configuration
// (STORYMIND_IMAGE_API_KEY / STORYMIND_IMAGE_BASE_URL) and an image
// directory (STORYMIND_IMAGE_DIR, default "images") on first call.
func ImageGenerator() *visual.Generator {
	imageOnce.Do(func() {
		mu.RLock()
		override := imageGen
		mu.RUnlock()
		if override != nil {
			return
		}
		apiKey := os.Getenv("STORYMIND_IMAGE_API_KEY")
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		baseURL := os.Getenv("STORYMIND_IMAGE_BASE_URL")
		imageDir := os.Getenv("STORYMIND_IMAGE_DIR")
		if imageDir == "" {
			imageDir = "images"
		}
		client := visual.NewImageClient(apiKey, baseURL)
		mu.Lock()
		imageGen = visual.NewGenerator(client, imageDir)
		mu.Unlock()
	})
	mu.RLock()
	defer mu.RUnlock()
	return imageGen
}

// SetImageGenerator overrides the process-wide image generator.
func SetImageGenerator(g *visual.Generator) {
	mu.Lock()
	defer mu.Unlock()
	imageGen = g
}
