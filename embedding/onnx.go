package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"runtime"

	"github.com/daulet/tokenizers"
	ort "github.com/yalue/onnxruntime_go"
)

const (
	// onnxMaxSeqLen caps tokenized input length. The attention matrix is
	// O(seqLen^2), so this keeps per-window inference bounded on CPU.
	onnxMaxSeqLen = 256
	// onnxEmbeddingDim is the output dimension of the bundled sentence
	// embedding model.
	onnxEmbeddingDim = 384
)

// ONNXModel is a local, in-process sentence embedding model backed by
// ONNX Runtime. It never calls out to a network API.
type ONNXModel struct {
	session   *ort.DynamicAdvancedSession
	tokenizer *tokenizers.Tokenizer
	modelName string
	logger    *slog.Logger
}

// ONNXModelOption configures an ONNXModel constructed with NewONNXModel.
type ONNXModelOption func(*onnxModelConfig)

type onnxModelConfig struct {
	ortLibPath string
	numThreads int
	modelName  string
	logger     *slog.Logger
}

// WithONNXSharedLibrary points ONNX Runtime at a specific onnxruntime.so.
// Leave unset to use the system default search path.
func WithONNXSharedLibrary(path string) ONNXModelOption {
	return func(c *onnxModelConfig) { c.ortLibPath = path }
}

// WithONNXThreads sets intra-op thread count. 0 picks min(4, NumCPU).
func WithONNXThreads(n int) ONNXModelOption {
	return func(c *onnxModelConfig) { c.numThreads = n }
}

// WithONNXModelName overrides the identity recorded in EmbeddingInfo.
func WithONNXModelName(name string) ONNXModelOption {
	return func(c *onnxModelConfig) { c.modelName = name }
}

// NewONNXModel loads model.onnx and tokenizer.json from modelDir.
func NewONNXModel(modelDir string, opts ...ONNXModelOption) (*ONNXModel, error) {
	cfg := &onnxModelConfig{
		numThreads: 0,
		modelName:  "bge-small-en-v1.5",
		logger:     slog.New(slog.NewJSONHandler(os.Stdout, nil)),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	modelPath := filepath.Join(modelDir, "model.onnx")
	tokenPath := filepath.Join(modelDir, "tokenizer.json")
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("%w: model file missing at %s", ErrEmbeddingModelUnavailable, modelPath)
	}
	if _, err := os.Stat(tokenPath); err != nil {
		return nil, fmt.Errorf("%w: tokenizer file missing at %s", ErrEmbeddingModelUnavailable, tokenPath)
	}

	if cfg.ortLibPath != "" {
		ort.SetSharedLibraryPath(cfg.ortLibPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("%w: init onnxruntime: %v", ErrEmbeddingModelUnavailable, err)
	}

	numThreads := cfg.numThreads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
		if numThreads > 4 {
			numThreads = 4
		}
	}

	sessOpts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("%w: session options: %v", ErrEmbeddingModelUnavailable, err)
	}
	defer sessOpts.Destroy()
	if err := sessOpts.SetIntraOpNumThreads(numThreads); err != nil {
		return nil, fmt.Errorf("%w: set intra threads: %v", ErrEmbeddingModelUnavailable, err)
	}
	if err := sessOpts.SetInterOpNumThreads(1); err != nil {
		return nil, fmt.Errorf("%w: set inter threads: %v", ErrEmbeddingModelUnavailable, err)
	}

	inputNames := []string{"input_ids", "attention_mask", "token_type_ids"}
	outputNames := []string{"last_hidden_state"}
	session, err := ort.NewDynamicAdvancedSession(modelPath, inputNames, outputNames, sessOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: create session: %v", ErrEmbeddingModelUnavailable, err)
	}

	tk, err := tokenizers.FromFile(tokenPath)
	if err != nil {
		session.Destroy()
		return nil, fmt.Errorf("%w: load tokenizer: %v", ErrEmbeddingModelUnavailable, err)
	}

	return &ONNXModel{
		session:   session,
		tokenizer: tk,
		modelName: cfg.modelName,
		logger:    cfg.logger,
	}, nil
}

// Close releases the ONNX session and tokenizer.
func (m *ONNXModel) Close() {
	if m.session != nil {
		m.session.Destroy()
	}
	if m.tokenizer != nil {
		m.tokenizer.Close()
	}
}

func (m *ONNXModel) Info() EmbeddingInfo {
	return LocalMiniModelInfo(m.modelName)
}

func (m *ONNXModel) GetTextEmbedding(ctx context.Context, text string) ([]float64, error) {
	return m.embed(text)
}

func (m *ONNXModel) GetQueryEmbedding(ctx context.Context, query string) ([]float64, error) {
	return m.embed(query)
}

func (m *ONNXModel) embed(text string) ([]float64, error) {
	enc := m.tokenizer.EncodeWithOptions(text, true, tokenizers.WithReturnAttentionMask())
	ids := enc.IDs
	if len(ids) > onnxMaxSeqLen {
		ids = ids[:onnxMaxSeqLen]
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: empty tokenization", ErrEmbeddingModelUnavailable)
	}

	ids64 := make([]int64, len(ids))
	mask64 := make([]int64, len(ids))
	typ64 := make([]int64, len(ids))
	for i, v := range ids {
		ids64[i] = int64(v)
		mask64[i] = 1
	}
	if len(enc.AttentionMask) >= len(ids) {
		for i := range ids64 {
			mask64[i] = int64(enc.AttentionMask[i])
		}
	}

	shape := ort.NewShape(1, int64(len(ids)))
	idsT, err := ort.NewTensor(shape, ids64)
	if err != nil {
		return nil, fmt.Errorf("%w: input_ids tensor: %v", ErrEmbeddingModelUnavailable, err)
	}
	defer idsT.Destroy()
	maskT, err := ort.NewTensor(shape, mask64)
	if err != nil {
		return nil, fmt.Errorf("%w: attention_mask tensor: %v", ErrEmbeddingModelUnavailable, err)
	}
	defer maskT.Destroy()
	typT, err := ort.NewTensor(shape, typ64)
	if err != nil {
		return nil, fmt.Errorf("%w: token_type_ids tensor: %v", ErrEmbeddingModelUnavailable, err)
	}
	defer typT.Destroy()

	outputs := []ort.Value{nil}
	if err := m.session.Run([]ort.Value{idsT, maskT, typT}, outputs); err != nil {
		m.logger.Error("onnx inference failed", "error", err)
		return nil, fmt.Errorf("%w: session run: %v", ErrEmbeddingModelUnavailable, err)
	}
	defer func() {
		if outputs[0] != nil {
			outputs[0].Destroy()
		}
	}()

	hiddenTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("%w: unexpected onnx output type", ErrEmbeddingModelUnavailable)
	}
	hidden := hiddenTensor.GetData()

	vec := make([]float64, onnxEmbeddingDim)
	for d := 0; d < onnxEmbeddingDim; d++ {
		vec[d] = float64(hidden[d])
	}
	l2Normalize(vec)
	return vec, nil
}

func l2Normalize(v []float64) {
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm < 1e-10 {
		return
	}
	for i := range v {
		v[i] /= norm
	}
}
