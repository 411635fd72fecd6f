package visual

import "errors"

// ErrProviderUnavailable wraps any image-provider failure (quota, content
// filter, transport) that causes Generate to fall back to a placeholder
// instead of failing the pipeline.
var ErrProviderUnavailable = errors.New("image provider unavailable")
