package main

import (
	"os"
	"path/filepath"
)

const (
	StoryMind    = "storymind"
	StoryMindCli = "storymind-cli"
)

// Default configuration values.
const (
	DefaultDataDir        = "data"
	DefaultImageDir       = "images"
	DefaultNameLimit      = 50
	DefaultRetrievalK     = 7
	DefaultSemanticDedup  = false
	DefaultAspectRatio    = "1:1"
	DefaultEmbeddingModel = "models/bge-small-en-v1.5"
)

// Config keys for krait.
const (
	KeyDataDir        = "data.dir"
	KeyImageDir       = "image.dir"
	KeyEmbeddingModel = "embedding.model-dir"
	KeyLLMModel       = "llm.model"
	KeyImageAPIKey    = "image.api-key"
	KeyImageBaseURL   = "image.base-url"
	KeyNameLimit      = "ingest.name-limit"
	KeyRetrievalK     = "ingest.retrieval-k"
	KeySemanticDedup  = "ingest.semantic-dedup"
	KeyStyle          = "image.style"
	KeyAspectRatio    = "image.aspect-ratio"
	KeyVerbose        = "verbose"
)

// DefaultCacheDir returns the default data directory, under the user's
// cache directory, mirroring the teacher CLI's cache-dir convention.
func DefaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + StoryMindCli
	}
	return filepath.Join(home, ".cache", StoryMindCli)
}
