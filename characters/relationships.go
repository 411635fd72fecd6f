package characters

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"storymind/embedding"
	"storymind/llm"
	"storymind/schema"
)

// MaxRelationshipsPerCharacter caps how many relationship edges a single
// ExtractRelationships call asks the LLM for.
const MaxRelationshipsPerCharacter = 3

const relationshipSystemPrompt = `You infer relationships between fictional characters from novel excerpts. ` +
	`Given one character and a list of other known characters, identify up to 3 relationships grounded ` +
	`in the excerpts, each as {"other_name": "...", "relation": "..."} with a short relation label ` +
	`(e.g. "best friend", "aunt", "rival"). Respond with nothing but a plain JSON array of such objects. ` +
	`If no relationship is evident from the excerpts, respond with an empty array [].`

// ExtractRelationships issues one additional LLM call, grounded in the
// same retrieved windows used for profile synthesis, asking for up to
// MaxRelationshipsPerCharacter {other_name, relation} pairs. This is an
// opt-in supplemented pass: the Orchestrator never invents synthetic
// (hub-and-spoke) relationships when this isn't run or returns nothing
// (spec.md §9).
func ExtractRelationships(ctx context.Context, model llm.LLM, idx *embedding.Index, canonicalName string, otherNames []string, k int) ([]schema.Relationship, error) {
	if k <= 0 {
		k = DefaultRetrievalK
	}
	if len(otherNames) == 0 {
		return nil, nil
	}

	results, err := idx.Search(ctx, canonicalName, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrievalEmpty, err)
	}
	if len(results) == 0 {
		return nil, ErrRetrievalEmpty
	}

	var contextParts []string
	for _, r := range results {
		contextParts = append(contextParts, trimToSentences(r.Text))
	}

	userPrompt := fmt.Sprintf(
		"Character: %s\nOther known characters: %s\n\nExcerpts:\n%s",
		canonicalName, strings.Join(otherNames, ", "), strings.Join(contextParts, "\n---\n"),
	)

	resp, err := model.Chat(ctx, []llm.ChatMessage{
		{Role: "system", Content: relationshipSystemPrompt},
		{Role: "user", Content: userPrompt},
	})
	if err != nil {
		return nil, fmt.Errorf("extracting relationships for %q: %w", canonicalName, err)
	}

	var rels []schema.Relationship
	if err := json.Unmarshal([]byte(stripCodeFence(resp)), &rels); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionParse, err)
	}

	if len(rels) > MaxRelationshipsPerCharacter {
		rels = rels[:MaxRelationshipsPerCharacter]
	}
	return rels, nil
}
