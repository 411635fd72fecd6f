package llm

// LLMMetadata carries the model identity used for logging and retry budgeting.
type LLMMetadata struct {
	ModelName     string `json:"model_name"`
	ContextWindow int    `json:"context_window"`
}

// DefaultLLMMetadata returns metadata for an unrecognized model name.
func DefaultLLMMetadata(modelName string) LLMMetadata {
	return LLMMetadata{ModelName: modelName, ContextWindow: 4096}
}

// GPT4oMetadata returns metadata for gpt-4o.
func GPT4oMetadata() LLMMetadata {
	return LLMMetadata{ModelName: "gpt-4o", ContextWindow: 128000}
}
