// Package reader loads a source document (PDF, EPUB, or plain text) and
// splits it into the overlapping text windows the rest of the pipeline
// indexes and retrieves against.
package reader

import (
	"fmt"
	"path/filepath"
	"strings"

	"storymind/schema"
	"storymind/textsplitter"
)

// formatLoader is satisfied by every format-specific loader: given a
// path, it returns embedded title/author metadata (empty if absent) and
// the document's full plain text.
type formatLoader interface {
	Load(path string) (title, author, text string, err error)
}

// Load dispatches on file extension to the matching format loader, then
// windows the resulting text with textsplitter.WindowSplitter.
func Load(path string) (schema.DocumentMetadata, []schema.Window, error) {
	format, loader, err := loaderFor(path)
	if err != nil {
		return schema.DocumentMetadata{}, nil, err
	}

	title, author, text, err := loader.Load(path)
	if err != nil {
		return schema.DocumentMetadata{}, nil, err
	}

	if strings.TrimSpace(title) == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	splitter := textsplitter.NewWindowSplitter(0, 0)
	texts := splitter.SplitText(text)
	if len(texts) == 0 {
		return schema.DocumentMetadata{}, nil, fmt.Errorf("%w: document produced no windows", ErrDocumentLoadFailed)
	}

	windows := make([]schema.Window, len(texts))
	for i, t := range texts {
		windows[i] = schema.Window{Position: i, Text: t}
	}

	meta := schema.DocumentMetadata{
		Title:       title,
		Author:      author,
		Format:      format,
		WindowCount: len(windows),
	}
	return meta, windows, nil
}

func loaderFor(path string) (schema.DocumentFormat, formatLoader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return schema.FormatPDF, NewPDFReader(), nil
	case ".epub":
		return schema.FormatEPUB, NewEPUBReader(), nil
	case ".txt":
		return schema.FormatText, NewTextReader(), nil
	default:
		return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}
