package llm

import "errors"

// ErrLLMQuotaExceeded is returned when the provider reports the caller is
// out of quota or rate-limited (HTTP 429).
var ErrLLMQuotaExceeded = errors.New("llm quota exceeded")

// ErrLLMTransient is returned for retryable failures: timeouts, 5xx
// responses, connection resets.
var ErrLLMTransient = errors.New("llm transient failure")
