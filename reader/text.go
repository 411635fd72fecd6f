package reader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// TextReader loads a UTF-8 plain text file verbatim. There is no
// embedded metadata to mine for title/author, unlike PDF/EPUB, so Load
// returns the filename stem as the title and an empty author.
type TextReader struct{}

func NewTextReader() *TextReader {
	return &TextReader{}
}

func (r *TextReader) Load(path string) (title, author, text string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: reading text file: %v", ErrDocumentLoadFailed, err)
	}
	if !utf8.Valid(data) {
		return "", "", "", fmt.Errorf("%w: file is not valid UTF-8", ErrDocumentLoadFailed)
	}

	text = strings.TrimSpace(string(data))
	if text == "" {
		return "", "", "", fmt.Errorf("%w: file has no text content", ErrDocumentLoadFailed)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return stem, "", text, nil
}
