package reader

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"path"
	"strings"

	"golang.org/x/net/html"
)

// EPUBReader extracts plain text and OPF metadata from an EPUB file. An
// EPUB is a zip container; the text is the concatenation, in spine
// order, of every XHTML content document with markup stripped.
type EPUBReader struct{}

func NewEPUBReader() *EPUBReader {
	return &EPUBReader{}
}

type container struct {
	XMLName   xml.Name `xml:"container"`
	Rootfiles struct {
		Rootfile struct {
			FullPath string `xml:"full-path,attr"`
		} `xml:"rootfile"`
	} `xml:"rootfiles"`
}

type opfPackage struct {
	Metadata struct {
		Title  string `xml:"title"`
		Author string `xml:"creator"`
	} `xml:"metadata"`
	Manifest struct {
		Items []opfItem `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		ItemRefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

type opfItem struct {
	ID        string `xml:"id,attr"`
	Href      string `xml:"href,attr"`
	MediaType string `xml:"media-type,attr"`
}

func (r *EPUBReader) Load(filePath string) (title, author, text string, err error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: opening epub: %v", ErrDocumentLoadFailed, err)
	}
	defer zr.Close()

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	opfPath, err := findOPFPath(files)
	if err != nil {
		return "", "", "", err
	}

	pkg, err := parseOPF(files, opfPath)
	if err != nil {
		return "", "", "", err
	}

	idToHref := make(map[string]string, len(pkg.Manifest.Items))
	for _, item := range pkg.Manifest.Items {
		idToHref[item.ID] = item.Href
	}

	opfDir := path.Dir(opfPath)
	var sb strings.Builder
	for _, ref := range pkg.Spine.ItemRefs {
		href, ok := idToHref[ref.IDRef]
		if !ok {
			continue
		}
		docPath := path.Join(opfDir, href)
		f, ok := files[docPath]
		if !ok {
			continue
		}
		docText, err := extractXHTMLText(f)
		if err != nil {
			continue
		}
		docText = strings.TrimSpace(docText)
		if docText == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(docText)
	}

	text = strings.TrimSpace(sb.String())
	if text == "" {
		return "", "", "", fmt.Errorf("%w: no text content found in epub", ErrDocumentLoadFailed)
	}

	return strings.TrimSpace(pkg.Metadata.Title), strings.TrimSpace(pkg.Metadata.Author), text, nil
}

// findOPFPath reads META-INF/container.xml to locate the package document.
func findOPFPath(files map[string]*zip.File) (string, error) {
	cf, ok := files["META-INF/container.xml"]
	if !ok {
		return "", fmt.Errorf("%w: missing META-INF/container.xml", ErrDocumentLoadFailed)
	}
	rc, err := cf.Open()
	if err != nil {
		return "", fmt.Errorf("%w: opening container.xml: %v", ErrDocumentLoadFailed, err)
	}
	defer rc.Close()

	var c container
	if err := xml.NewDecoder(rc).Decode(&c); err != nil {
		return "", fmt.Errorf("%w: parsing container.xml: %v", ErrDocumentLoadFailed, err)
	}
	if c.Rootfiles.Rootfile.FullPath == "" {
		return "", fmt.Errorf("%w: container.xml has no rootfile", ErrDocumentLoadFailed)
	}
	return c.Rootfiles.Rootfile.FullPath, nil
}

func parseOPF(files map[string]*zip.File, opfPath string) (*opfPackage, error) {
	f, ok := files[opfPath]
	if !ok {
		return nil, fmt.Errorf("%w: missing opf package document %s", ErrDocumentLoadFailed, opfPath)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: opening opf: %v", ErrDocumentLoadFailed, err)
	}
	defer rc.Close()

	var pkg opfPackage
	if err := xml.NewDecoder(rc).Decode(&pkg); err != nil {
		return nil, fmt.Errorf("%w: parsing opf: %v", ErrDocumentLoadFailed, err)
	}
	return &pkg, nil
}

// extractXHTMLText strips markup from a spine content document, keeping
// only the visible text nodes in document order.
func extractXHTMLText(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	doc, err := html.Parse(rc)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			t := strings.TrimSpace(n.Data)
			if t != "" {
				if sb.Len() > 0 {
					sb.WriteString(" ")
				}
				sb.WriteString(t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return sb.String(), nil
}
