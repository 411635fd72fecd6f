package characters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"storymind/llm"
)

// ErrExtractionParse is returned when the LLM's name-extraction response
// cannot be parsed as a JSON array of strings.
var ErrExtractionParse = errors.New("extraction parse error")

// DefaultPrefixChars bounds the text handed to ExtractNames: main
// characters are overwhelmingly introduced early, so the prefix is kept
// small to control token cost. Minor characters introduced only in late
// chapters are an acceptable miss (spec.md §4.3, §9).
const DefaultPrefixChars = 35_000

// DefaultPrefixTokens further bounds the prefix by token count once the
// character cap has already sliced it, so the request sent to the LLM
// stays within a predictable budget regardless of how token-dense the
// underlying prose is.
const DefaultPrefixTokens = 9_000

// DefaultNameLimit is the maximum number of names ExtractNames returns.
const DefaultNameLimit = 50

const nameExtractionSystemPrompt = `You are extracting character names from a novel excerpt. ` +
	`List the character names appearing in this excerpt, most-mentioned first, up to the requested limit. ` +
	`Respond with nothing but a plain JSON array of strings, e.g. ["Harry Potter", "Hermione Granger"]. ` +
	`Do not wrap it in a code fence and do not add commentary.`

// ExtractNames issues one LLM call over a bounded prefix of the document
// and returns a candidate list of character names, most-mentioned first.
// limit caps the number of names returned; pass 0 for DefaultNameLimit.
func ExtractNames(ctx context.Context, model llm.LLM, text string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultNameLimit
	}

	prefix := text
	if len(prefix) > DefaultPrefixChars {
		prefix = prefix[:DefaultPrefixChars]
	}
	prefix = boundByTokens(prefix, DefaultPrefixTokens)

	userPrompt := fmt.Sprintf("Up to %d names.\n\nExcerpt:\n%s", limit, prefix)
	resp, err := model.Chat(ctx, []llm.ChatMessage{
		{Role: "system", Content: nameExtractionSystemPrompt},
		{Role: "user", Content: userPrompt},
	})
	if err != nil {
		return nil, fmt.Errorf("extracting names: %w", err)
	}

	names, err := parseNameArray(resp)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(names))
	for _, n := range names {
		n = normalizeName(n)
		if n == "" {
			continue
		}
		out = append(out, n)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// parseNameArray tolerantly parses the LLM's response: it strips a
// surrounding code fence if present, then requires a top-level JSON
// array of strings.
func parseNameArray(resp string) ([]string, error) {
	cleaned := stripCodeFence(resp)

	var names []string
	if err := json.Unmarshal([]byte(cleaned), &names); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionParse, err)
	}
	return names, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx != -1 && !strings.HasPrefix(s, "[") {
		// Drop an optional language tag on the fence's opening line (e.g. ```json).
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// normalizeName trims whitespace and collapses internal whitespace runs
// to a single space. Case is preserved for canonical display.
func normalizeName(name string) string {
	fields := strings.Fields(name)
	return strings.Join(fields, " ")
}
