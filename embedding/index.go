package embedding

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"

	"storymind/schema"
)

// Result is a single window returned from a similarity search, ordered
// nearest first. Similarity is TopKSimilar's Euclidean similarity score
// (1/(1+distance)), not a raw distance: higher means closer, and it falls
// in (0, 1].
type Result struct {
	Position   int
	Text       string
	Similarity float64
}

// indexMeta is the JSON sidecar: everything needed to reconstruct an
// Index except the raw vectors.
type indexMeta struct {
	Model   EmbeddingInfo   `json:"model"`
	Windows []schema.Window `json:"windows"`
}

// Index is a flat, in-memory nearest-neighbor store over a single
// document's windows, pinned to the embedding model it was built with.
type Index struct {
	model   EmbeddingModel
	info    EmbeddingInfo
	windows []schema.Window
	vectors [][]float64
}

// Build embeds every window and assembles a searchable Index. The model
// used here is pinned into the Index and checked again on load.
func Build(ctx context.Context, model EmbeddingModel, windows []schema.Window) (*Index, error) {
	if len(windows) == 0 {
		return nil, fmt.Errorf("%w: no windows to index", ErrRetrievalEmpty)
	}

	info := EmbeddingInfo{ModelName: "unknown", Dimensions: 0}
	if withInfo, ok := model.(EmbeddingModelWithInfo); ok {
		info = withInfo.Info()
	}

	vectors := make([][]float64, len(windows))
	for i, w := range windows {
		vec, err := model.GetTextEmbedding(ctx, w.Text)
		if err != nil {
			return nil, fmt.Errorf("%w: embedding window %d: %v", ErrEmbeddingModelUnavailable, w.Position, err)
		}
		vectors[i] = vec
		if info.Dimensions == 0 {
			info.Dimensions = len(vec)
		}
	}

	return &Index{
		model:   model,
		info:    info,
		windows: windows,
		vectors: vectors,
	}, nil
}

// Search returns the k windows nearest to query, ordered closest first.
// Flat Euclidean search: TopKSimilar already clamps k to the number of
// indexed vectors, so asking for more windows than exist returns all of
// them rather than erroring.
func (idx *Index) Search(ctx context.Context, query string, k int) ([]Result, error) {
	if len(idx.vectors) == 0 {
		return nil, fmt.Errorf("%w", ErrRetrievalEmpty)
	}

	queryVec, err := idx.model.GetQueryEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", ErrEmbeddingModelUnavailable, err)
	}

	positions, distances, err := TopKSimilar(queryVec, idx.vectors, k, SimilarityTypeEuclidean)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrievalEmpty, err)
	}

	out := make([]Result, len(positions))
	for i, pos := range positions {
		out[i] = Result{
			Position:   idx.windows[pos].Position,
			Text:       idx.windows[pos].Text,
			Similarity: distances[i],
		}
	}
	return out, nil
}

// WindowCount returns the number of windows held in the index.
func (idx *Index) WindowCount() int {
	return len(idx.windows)
}

// Save writes the index to two sidecar files: path+".index" holds the
// gob-encoded vectors, path+".index.meta" holds the JSON metadata (model
// identity, dimension, ordered window texts). Both are required to
// reconstruct a working index.
func (idx *Index) Save(path string) error {
	vecFile, err := os.Create(path + ".index")
	if err != nil {
		return fmt.Errorf("creating index vectors file: %w", err)
	}
	defer vecFile.Close()
	if err := gob.NewEncoder(vecFile).Encode(idx.vectors); err != nil {
		return fmt.Errorf("encoding index vectors: %w", err)
	}

	meta := indexMeta{Model: idx.info, Windows: idx.windows}
	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding index metadata: %w", err)
	}
	if err := os.WriteFile(path+".index.meta", metaBytes, 0o644); err != nil {
		return fmt.Errorf("writing index metadata: %w", err)
	}
	return nil
}

// LoadIndex reconstructs an Index previously written by Save. model must
// match the model identity recorded at build time; a mismatch (or a
// missing sidecar file) is ErrIndexCorrupt.
func LoadIndex(path string, model EmbeddingModel) (*Index, error) {
	metaBytes, err := os.ReadFile(path + ".index.meta")
	if err != nil {
		return nil, fmt.Errorf("%w: reading metadata: %v", ErrIndexCorrupt, err)
	}
	var meta indexMeta
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, fmt.Errorf("%w: parsing metadata: %v", ErrIndexCorrupt, err)
	}

	vecFile, err := os.Open(path + ".index")
	if err != nil {
		return nil, fmt.Errorf("%w: opening vectors: %v", ErrIndexCorrupt, err)
	}
	defer vecFile.Close()
	var vectors [][]float64
	if err := gob.NewDecoder(vecFile).Decode(&vectors); err != nil {
		return nil, fmt.Errorf("%w: decoding vectors: %v", ErrIndexCorrupt, err)
	}

	if withInfo, ok := model.(EmbeddingModelWithInfo); ok {
		current := withInfo.Info()
		if current.ModelName != meta.Model.ModelName || current.Dimensions != meta.Model.Dimensions {
			return nil, fmt.Errorf("%w: index built with model %q (%d-dim), loader uses %q (%d-dim)",
				ErrIndexCorrupt, meta.Model.ModelName, meta.Model.Dimensions, current.ModelName, current.Dimensions)
		}
	}

	if len(vectors) != len(meta.Windows) {
		return nil, fmt.Errorf("%w: vector count %d does not match window count %d", ErrIndexCorrupt, len(vectors), len(meta.Windows))
	}

	return &Index{
		model:   model,
		info:    meta.Model,
		windows: meta.Windows,
		vectors: vectors,
	}, nil
}
