package textsplitter

// CharacterTokenizer tokenizes text by rune, so that len(Encode(text))
// equals the rune count of text. WindowSplitter targets windows by
// character count rather than model tokens, so this is the Tokenizer
// implementation it is built on.
type CharacterTokenizer struct{}

func NewCharacterTokenizer() *CharacterTokenizer {
	return &CharacterTokenizer{}
}

func (t *CharacterTokenizer) Encode(text string) []string {
	runes := []rune(text)
	out := make([]string, len(runes))
	for i, r := range runes {
		out[i] = string(r)
	}
	return out
}
