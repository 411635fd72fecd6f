// Package orchestrator sequences the character-extraction pipeline
// end to end: document loading, embedding index construction, name
// extraction, deduplication, profile synthesis, seeding, and on-demand
// image generation, persisting every output via the metadata store.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"storymind/characters"
	"storymind/embedding"
	"storymind/llm"
	"storymind/reader"
	"storymind/schema"
	"storymind/store"
	"storymind/visual"
)

// Orchestrator implements C8: the pipeline sequencing contract
// (ingest/regenerate_image/delete_source) over the other seven
// components.
type Orchestrator struct {
	Store          *store.MetadataStore
	EmbeddingModel embedding.EmbeddingModel
	LLM            llm.LLM
	ImageGenerator *visual.Generator
	DataDir        string

	// NameLimit and RetrievalK override the package defaults in
	// characters; zero means "use the package default".
	NameLimit  int
	RetrievalK int
	// SemanticDedup gates characters.DedupOptions.SemanticEnabled.
	SemanticDedup bool
	// ExtractRelationships enables the supplemented relationship pass: one
	// extra LLM call per synthesized character. Off by default.
	ExtractRelationships bool

	logger *slog.Logger
}

// New builds an Orchestrator wired against the given components.
func New(st *store.MetadataStore, embedModel embedding.EmbeddingModel, model llm.LLM, imageGen *visual.Generator, dataDir string) *Orchestrator {
	return &Orchestrator{
		Store:          st,
		EmbeddingModel: embedModel,
		LLM:            model,
		ImageGenerator: imageGen,
		DataDir:        dataDir,
		logger:         slog.New(slog.NewJSONHandler(os.Stdout, nil)),
	}
}

func (o *Orchestrator) indexPath(sourceID string) string {
	return filepath.Join(o.DataDir, sourceID)
}

// Ingest runs the full nine-step sequence of spec.md §4.8 for the
// document at path, returning the new source's ID.
func (o *Orchestrator) Ingest(ctx context.Context, path string) (string, error) {
	// 1. Load + window (C1).
	metadata, windows, err := reader.Load(path)
	if err != nil {
		return "", fmt.Errorf("loading document: %w", err)
	}

	// 2. Resolve display title.
	title := metadata.Title
	if title == "" {
		base := filepath.Base(path)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	// 3. Idempotent supersession.
	existing, err := o.Store.FindSourceByNormalizedTitle(title)
	if err != nil {
		return "", fmt.Errorf("checking for existing source: %w", err)
	}
	if existing != nil {
		if err := o.DeleteSource(ctx, existing.ID); err != nil {
			return "", fmt.Errorf("superseding existing source %q: %w", existing.ID, err)
		}
	}

	// 4. Persist a new Source Document record in state processing.
	sourceID := uuid.NewString()
	doc := schema.SourceDocument{
		ID:         sourceID,
		Title:      title,
		Author:     metadata.Author,
		Format:     metadata.Format,
		State:      schema.StateProcessing,
		IndexPath:  o.indexPath(sourceID),
		IngestedAt: time.Now(),
	}
	if err := o.Store.InsertSource(doc); err != nil {
		return "", fmt.Errorf("persisting source record: %w", err)
	}

	characterCount, err := o.runIngestPipeline(ctx, sourceID, title, windows)
	if err != nil {
		o.failSource(sourceID, err)
		return "", err
	}

	// 9. Transition to completed.
	if err := o.Store.UpdateSourceState(sourceID, schema.StateCompleted, characterCount, ""); err != nil {
		return "", fmt.Errorf("marking source completed: %w", err)
	}
	return sourceID, nil
}

// runIngestPipeline performs steps 5-8. Any error returned here is
// fatal: the caller rolls the source back to failed and removes
// whatever index/characters this attempt produced.
func (o *Orchestrator) runIngestPipeline(ctx context.Context, sourceID, title string, windows []schema.Window) (int, error) {
	// 5. Build and persist the Embedding Index (C2).
	idx, err := embedding.Build(ctx, o.EmbeddingModel, windows)
	if err != nil {
		return 0, fmt.Errorf("building embedding index: %w", err)
	}
	if err := idx.Save(o.indexPath(sourceID)); err != nil {
		return 0, fmt.Errorf("saving embedding index: %w", err)
	}

	// 6. Extract names from the prefix (C3).
	var fullText strings.Builder
	for _, w := range windows {
		fullText.WriteString(w.Text)
		fullText.WriteByte('\n')
	}
	limit := o.NameLimit
	if limit <= 0 {
		limit = characters.DefaultNameLimit
	}
	names, err := characters.ExtractNames(ctx, o.LLM, fullText.String(), limit)
	if err != nil {
		return 0, fmt.Errorf("extracting character names: %w", err)
	}

	// 7. Deduplicate (C4).
	canonicalNames, aliasMap, err := characters.Deduplicate(ctx, names, characters.DedupOptions{
		SemanticEnabled: o.SemanticDedup,
		SemanticModel:   o.LLM,
	})
	if err != nil {
		return 0, fmt.Errorf("deduplicating character names: %w", err)
	}
	o.logger.Info("deduplicated character names", "source_id", sourceID, "title", title, "alias_map", aliasMap)

	// 8. Per canonical name: synthesize + seed + persist. Failures are
	// isolated per character.
	k := o.RetrievalK
	if k <= 0 {
		k = characters.DefaultRetrievalK
	}

	persisted := 0
	for i, name := range canonicalNames {
		if i > 0 {
			time.Sleep(characters.ProfilePauseSeconds * time.Second)
		}

		profile, err := characters.Synthesize(ctx, o.LLM, idx, name, k)
		if err != nil {
			continue
		}

		var relationships []schema.Relationship
		if o.ExtractRelationships {
			others := otherNames(canonicalNames, name)
			rels, err := characters.ExtractRelationships(ctx, o.LLM, idx, name, others, k)
			if err == nil {
				relationships = rels
			}
		}

		c := schema.CanonicalCharacter{
			ID:            uuid.NewString(),
			SourceID:      sourceID,
			Name:          profile.Name,
			Description:   profile.Description,
			Seed:          characters.Seed(profile.Name),
			MentionCount:  profile.MentionCount,
			Relationships: relationships,
		}
		if err := o.Store.InsertCharacter(c); err != nil {
			continue
		}
		persisted++
	}

	return persisted, nil
}

func otherNames(all []string, exclude string) []string {
	out := make([]string, 0, len(all))
	for _, n := range all {
		if n != exclude {
			out = append(out, n)
		}
	}
	return out
}

// failSource transitions a source to failed with the given error's
// message and removes whatever partial index/characters this ingest
// attempt produced, per spec.md §4.8 step 9.
func (o *Orchestrator) failSource(sourceID string, cause error) {
	_ = os.Remove(o.indexPath(sourceID) + ".index")
	_ = os.Remove(o.indexPath(sourceID) + ".index.meta")
	_ = o.Store.DeleteCharactersBySource(sourceID)
	_ = o.Store.UpdateSourceState(sourceID, schema.StateFailed, 0, cause.Error())
}

// RegenerateImage invokes C7 for an existing character, replacing its
// current image record. Permitted even when the current outcome is a
// placeholder.
func (o *Orchestrator) RegenerateImage(ctx context.Context, characterID string, style, aspectRatio string) (*schema.GeneratedImage, error) {
	c, err := o.Store.GetCharacter(characterID)
	if err != nil {
		return nil, fmt.Errorf("looking up character: %w", err)
	}
	if c == nil {
		return nil, ErrCharacterNotFound
	}

	profile := characters.Profile{Name: c.Name, Description: c.Description, MentionCount: c.MentionCount}
	img, err := o.ImageGenerator.Generate(ctx, profile, c.Seed, style, aspectRatio)
	if err != nil {
		return nil, fmt.Errorf("generating image: %w", err)
	}
	img.ID = uuid.NewString()
	img.CharacterID = characterID

	if err := o.Store.InsertImage(characterID, *img); err != nil {
		return nil, fmt.Errorf("persisting image record: %w", err)
	}
	return img, nil
}

// DeleteSource cascades: image files on disk, image records, character
// records, embedding index files, then the source record itself. All
// filesystem deletions are best-effort; database deletions run in the
// order the foreign keys require.
func (o *Orchestrator) DeleteSource(ctx context.Context, sourceID string) error {
	src, err := o.Store.GetSource(sourceID)
	if err != nil {
		return fmt.Errorf("looking up source: %w", err)
	}
	if src == nil {
		return ErrSourceNotFound
	}

	chars, err := o.Store.GetCharactersBySource(sourceID)
	if err != nil {
		return fmt.Errorf("listing characters: %w", err)
	}

	characterIDs := make([]string, len(chars))
	for i, c := range chars {
		characterIDs[i] = c.ID
	}

	paths, err := o.Store.GetImagePathsByCharacterIDs(characterIDs)
	if err != nil {
		return fmt.Errorf("listing image paths: %w", err)
	}
	for _, p := range paths {
		_ = os.Remove(p)
	}

	for _, id := range characterIDs {
		_ = o.Store.DeleteImagesByCharacterID(id)
	}
	if err := o.Store.DeleteCharactersBySource(sourceID); err != nil {
		return fmt.Errorf("deleting characters: %w", err)
	}

	_ = os.Remove(o.indexPath(sourceID) + ".index")
	_ = os.Remove(o.indexPath(sourceID) + ".index.meta")

	if err := o.Store.DeleteSource(sourceID); err != nil {
		return fmt.Errorf("deleting source record: %w", err)
	}
	return nil
}
