package embedding

import "errors"

// ErrEmbeddingModelUnavailable is returned when the embedding model
// cannot be loaded or fails to produce a vector.
var ErrEmbeddingModelUnavailable = errors.New("embedding model unavailable")

// ErrIndexCorrupt is returned when an Index's sidecar files are missing,
// unreadable, or were built with a different embedding model.
var ErrIndexCorrupt = errors.New("index corrupt")

// ErrRetrievalEmpty is returned when a search against an Index yields no
// usable windows.
var ErrRetrievalEmpty = errors.New("retrieval returned no windows")
