package characters

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// tokenEncoding is the cl100k_base encoding (GPT-4 / GPT-3.5-turbo family),
// matching the teacher's default model-to-encoding mapping for chat
// completion models.
const tokenEncoding = "cl100k_base"

var (
	tokenizerOnce sync.Once
	tokenizer     *tiktoken.Tiktoken
	tokenizerErr  error
)

func getTokenizer() (*tiktoken.Tiktoken, error) {
	tokenizerOnce.Do(func() {
		tokenizer, tokenizerErr = tiktoken.GetEncoding(tokenEncoding)
	})
	return tokenizer, tokenizerErr
}

// boundByTokens truncates text to at most maxTokens tokens under the
// cl100k_base encoding, returning text unchanged if it already fits or if
// the tokenizer's vocabulary data is unavailable. A token-accurate bound
// is tighter than a character count: it avoids either wastefully
// under-filling the prefix budget or overshooting a model's context
// window on dense, multi-byte text.
func boundByTokens(text string, maxTokens int) string {
	enc, err := getTokenizer()
	if err != nil {
		return text
	}
	ids := enc.Encode(text, nil, nil)
	if len(ids) <= maxTokens {
		return text
	}
	return enc.Decode(ids[:maxTokens])
}
