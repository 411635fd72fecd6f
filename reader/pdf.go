package reader

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFReader extracts plain text and trailer metadata from a PDF file
// using ledongthuc/pdf. It has no directory-walking or paging options:
// the pipeline always loads one file at a time and always wants the
// whole document as a single text blob, which the windowing step then
// splits.
type PDFReader struct{}

func NewPDFReader() *PDFReader {
	return &PDFReader{}
}

func (r *PDFReader) Load(path string) (title, author, text string, err error) {
	f, pdfReader, err := pdf.Open(path)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: opening pdf: %v", ErrDocumentLoadFailed, err)
	}
	defer f.Close()

	numPages := pdfReader.NumPage()
	if numPages == 0 {
		return "", "", "", fmt.Errorf("%w: pdf has no pages", ErrDocumentLoadFailed)
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := pdfReader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(pageText)
	}

	text = strings.TrimSpace(sb.String())
	if text == "" {
		return "", "", "", fmt.Errorf("%w: no text content found in pdf", ErrDocumentLoadFailed)
	}

	title, author = pdfTrailerMetadata(pdfReader)
	return title, author, text, nil
}

// pdfTrailerMetadata reads the Title and Author fields out of the PDF
// trailer's Info dictionary, if present.
func pdfTrailerMetadata(pdfReader *pdf.Reader) (title, author string) {
	trailer := pdfReader.Trailer()
	if trailer.IsNull() {
		return "", ""
	}
	info := trailer.Key("Info")
	if info.IsNull() {
		return "", ""
	}
	if val := info.Key("Title"); !val.IsNull() {
		title = val.Text()
	}
	if val := info.Key("Author"); !val.IsNull() {
		author = val.Text()
	}
	return title, author
}
