package embedding

// EmbeddingInfo identifies the model an Index was built with. Dimensions
// and ModelName are pinned at build time and checked on load.
type EmbeddingInfo struct {
	ModelName  string `json:"model_name"`
	Dimensions int    `json:"dimensions"`
}

// LocalMiniModelInfo describes the 384-dim local sentence embedding model
// used by ONNXModel.
func LocalMiniModelInfo(modelName string) EmbeddingInfo {
	if modelName == "" {
		modelName = "bge-small-en-v1.5"
	}
	return EmbeddingInfo{
		ModelName:  modelName,
		Dimensions: 384,
	}
}
