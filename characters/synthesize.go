package characters

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storymind/embedding"
	"storymind/llm"
	"storymind/textsplitter"
)

// ErrRetrievalEmpty is returned when a search against an Index yields
// zero usable windows for a character's profile.
var ErrRetrievalEmpty = errors.New("retrieval returned no windows")

// DefaultRetrievalK is the number of nearest windows retrieved per
// character profile (spec.md §4.5).
const DefaultRetrievalK = 7

// ProfilePauseSeconds is the cooperative pause between successive
// Synthesize calls, to stay under the LLM provider's per-minute quota
// (spec.md §4.5, §5).
const ProfilePauseSeconds = 4

// Profile is the result of synthesizing a canonical character's visual
// description from its retrieved context windows.
type Profile struct {
	Name         string
	Description  string
	MentionCount int
}

const synthesisSystemPrompt = `You are writing a canonical visual description of a fictional character ` +
	`for a portrait illustrator. Using only the excerpts provided, write a single paragraph (roughly ` +
	`50-300 words) describing the character's enduring physical traits: hair, build, distinguishing ` +
	`features, and habitual dress. De-emphasize plot-transient states (what they are doing, how they ` +
	`currently feel) in favor of what stays true of their appearance throughout the book.`

var sentenceSplit = textsplitter.SplitByRegex(textsplitter.DefaultSentenceTerminalRegex)

// Synthesize retrieves the k windows nearest canonicalName from idx and
// issues one LLM call to produce a canonical visual description. It
// returns ErrRetrievalEmpty if no usable windows are returned.
func Synthesize(ctx context.Context, model llm.LLM, idx *embedding.Index, canonicalName string, k int) (*Profile, error) {
	if k <= 0 {
		k = DefaultRetrievalK
	}

	results, err := idx.Search(ctx, canonicalName, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrievalEmpty, err)
	}
	if len(results) == 0 {
		return nil, ErrRetrievalEmpty
	}

	mentionCount := 0
	var contextParts []string
	for _, r := range results {
		if wholeWordSubstring(r.Text, canonicalName) {
			mentionCount++
		}
		contextParts = append(contextParts, trimToSentences(r.Text))
	}

	userPrompt := fmt.Sprintf(
		"Character: %s\n\nExcerpts:\n%s",
		canonicalName, strings.Join(contextParts, "\n---\n"),
	)

	resp, err := model.Chat(ctx, []llm.ChatMessage{
		{Role: "system", Content: synthesisSystemPrompt},
		{Role: "user", Content: userPrompt},
	})
	if err != nil {
		return nil, fmt.Errorf("synthesizing profile for %q: %w", canonicalName, err)
	}

	return &Profile{
		Name:         canonicalName,
		Description:  strings.TrimSpace(resp),
		MentionCount: mentionCount,
	}, nil
}

// trimToSentences drops a dangling partial sentence from the end of a
// retrieved window, so the LLM's context reads as complete sentences
// rather than cutting off mid-clause at the window boundary.
func trimToSentences(text string) string {
	sentences := sentenceSplit(text)
	if len(sentences) <= 1 {
		return text
	}
	last := sentences[len(sentences)-1]
	trimmedLast := strings.TrimRight(last, " \t\n")
	if !strings.HasSuffix(trimmedLast, ".") && !strings.HasSuffix(trimmedLast, "!") && !strings.HasSuffix(trimmedLast, "?") {
		sentences = sentences[:len(sentences)-1]
	}
	return strings.TrimSpace(strings.Join(sentences, ""))
}
