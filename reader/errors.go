package reader

import "errors"

// ErrUnsupportedFormat is returned when a file extension doesn't match
// any known loader.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// ErrDocumentLoadFailed wraps any underlying I/O or parse failure while
// reading a source document.
var ErrDocumentLoadFailed = errors.New("document load failed")
