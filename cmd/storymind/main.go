package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aqua777/krait"

	"storymind/orchestrator"
	"storymind/runtime"
	"storymind/store"
)

func main() {
	ingestCmd := krait.New("ingest", "Ingest a document", "Load a novel, extract its characters, and persist their profiles").
		WithExactArgs(1).
		WithRun(runIngest)

	listCmd := krait.New("list", "List ingested sources", "List every source document and its processing state").
		WithNoArgs().
		WithRun(runList)

	getCmd := krait.New("get", "Show a source's characters", "Show the canonical characters extracted from a source document").
		WithExactArgs(1).
		WithRun(runGet)

	regenCmd := krait.New("regenerate-image", "Regenerate a character's portrait", "Generate a fresh portrait for a character, replacing the current one").
		WithExactArgs(1).
		WithStringP(KeyStyle, "Portrait style description", "style", "", "STORYMIND_IMAGE_STYLE", "").
		WithStringP(KeyAspectRatio, "Portrait aspect ratio", "aspect-ratio", "", "STORYMIND_IMAGE_ASPECT_RATIO", DefaultAspectRatio).
		WithRun(runRegenerateImage)

	deleteCmd := krait.New("delete", "Delete a source", "Delete a source document and every character and image derived from it").
		WithExactArgs(1).
		WithRun(runDelete)

	app := krait.App(StoryMind, "StoryMind CLI", "Extract and visualize the characters of a literary document").
		WithConfig("", "config", "", "STORYMIND_CONFIG").
		WithStringP(KeyDataDir, "Directory for the metadata database and embedding indexes", "data-dir", "", "STORYMIND_DATA_DIR", DefaultCacheDir()).
		WithStringP(KeyImageDir, "Directory for generated portrait images", "image-dir", "", "STORYMIND_IMAGE_DIR", DefaultImageDir).
		WithStringP(KeyEmbeddingModel, "Directory holding the ONNX embedding model", "embedding-model-dir", "", "STORYMIND_EMBEDDING_MODEL_DIR", DefaultEmbeddingModel).
		WithStringP(KeyLLMModel, "LLM model name", "model", "m", "STORYMIND_LLM_MODEL", "").
		WithStringP(KeyImageAPIKey, "Image provider API key", "image-api-key", "", "STORYMIND_IMAGE_API_KEY", "").
		WithStringP(KeyImageBaseURL, "Image provider base URL", "image-base-url", "", "STORYMIND_IMAGE_BASE_URL", "").
		WithIntP(KeyNameLimit, "Maximum character names extracted per source", "name-limit", "", "STORYMIND_NAME_LIMIT", DefaultNameLimit).
		WithIntP(KeyRetrievalK, "Number of windows retrieved per synthesis query", "retrieval-k", "k", "STORYMIND_RETRIEVAL_K", DefaultRetrievalK).
		WithBoolP(KeySemanticDedup, "Enable the LLM fallback pass in alias deduplication", "semantic-dedup", "", "STORYMIND_SEMANTIC_DEDUP", DefaultSemanticDedup).
		WithBoolP(KeyVerbose, "Enable verbose output", "verbose", "v", "STORYMIND_VERBOSE", false).
		WithCommand(ingestCmd).
		WithCommand(listCmd).
		WithCommand(getCmd).
		WithCommand(regenCmd).
		WithCommand(deleteCmd).
		WithRun(func(args []string) error {
			fmt.Println("StoryMind CLI - use 'storymind --help' for a list of commands")
			return nil
		})

	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// syncEnv propagates the resolved krait configuration into the process
// environment, since runtime's lazy constructors read it directly.
func syncEnv() {
	setenv("STORYMIND_EMBEDDING_MODEL_DIR", krait.GetString(KeyEmbeddingModel))
	setenv("STORYMIND_LLM_MODEL", krait.GetString(KeyLLMModel))
	setenv("STORYMIND_IMAGE_API_KEY", krait.GetString(KeyImageAPIKey))
	setenv("STORYMIND_IMAGE_BASE_URL", krait.GetString(KeyImageBaseURL))
	setenv("STORYMIND_IMAGE_DIR", krait.GetString(KeyImageDir))
}

func setenv(name, value string) {
	if value != "" {
		_ = os.Setenv(name, value)
	}
}

func newOrchestrator() (*orchestrator.Orchestrator, *store.MetadataStore, error) {
	syncEnv()

	dataDir := krait.GetString(KeyDataDir)
	st, err := store.NewMetadataStore(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening metadata store: %w", err)
	}

	embedModel, err := runtime.EmbeddingModel()
	if err != nil {
		_ = st.Close()
		return nil, nil, fmt.Errorf("initializing embedding model: %w", err)
	}

	o := orchestrator.New(st, embedModel, runtime.LLM(), runtime.ImageGenerator(), dataDir)
	o.NameLimit = krait.GetInt(KeyNameLimit)
	o.RetrievalK = krait.GetInt(KeyRetrievalK)
	o.SemanticDedup = krait.GetBool(KeySemanticDedup)
	return o, st, nil
}

func runIngest(args []string) error {
	o, st, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer st.Close()

	path := args[0]
	if krait.GetBool(KeyVerbose) {
		fmt.Printf("Ingesting %s\n", path)
	}

	sourceID, err := o.Ingest(context.Background(), path)
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", path, err)
	}

	src, err := st.GetSource(sourceID)
	if err != nil {
		return err
	}
	fmt.Printf("Ingested %q as source %s (%d characters)\n", src.Title, src.ID, src.CharacterCount)
	return nil
}

func runList(args []string) error {
	_, st, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer st.Close()

	sources, err := st.ListSources()
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		fmt.Println("No sources ingested yet.")
		return nil
	}
	for _, s := range sources {
		fmt.Printf("%s  %-30s  %-10s  %d characters\n", s.ID, s.Title, s.State, s.CharacterCount)
	}
	return nil
}

func runGet(args []string) error {
	_, st, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer st.Close()

	sourceID := args[0]
	src, err := st.GetSource(sourceID)
	if err != nil {
		return err
	}
	if src == nil {
		return fmt.Errorf("source %s not found", sourceID)
	}

	chars, err := st.GetCharactersBySource(sourceID)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(chars, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runRegenerateImage(args []string) error {
	o, st, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer st.Close()

	characterID := args[0]
	style := krait.GetString(KeyStyle)
	aspectRatio := krait.GetString(KeyAspectRatio)

	img, err := o.RegenerateImage(context.Background(), characterID, style, aspectRatio)
	if err != nil {
		return fmt.Errorf("regenerating image for %s: %w", characterID, err)
	}
	fmt.Printf("Generated %s image at %s\n", img.Outcome, img.Path)
	return nil
}

func runDelete(args []string) error {
	o, st, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer st.Close()

	sourceID := args[0]
	if err := o.DeleteSource(context.Background(), sourceID); err != nil {
		return fmt.Errorf("deleting source %s: %w", sourceID, err)
	}
	fmt.Printf("Deleted source %s\n", sourceID)
	return nil
}
