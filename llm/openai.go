package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

const OpenAIAPIURLv1 = "https://api.openai.com/v1"

// OpenAILLM is a chat-completion client backed by the OpenAI API. Every
// call runs at temperature 0: every caller in this pipeline wants
// deterministic, reproducible extraction and synthesis output, not
// creative variation.
type OpenAILLM struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAILLM builds a client from explicit or environment-provided
// configuration. apiKey falls back to OPENAI_API_KEY, then
// STORYMIND_LLM_KEY; baseUrl falls back to OPENAI_URL.
func NewOpenAILLM(baseUrl, model, apiKey string) *OpenAILLM {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		apiKey = os.Getenv("STORYMIND_LLM_KEY")
	}

	if baseUrl == "" {
		baseUrl = os.Getenv("OPENAI_URL")
		if baseUrl == "" {
			baseUrl = OpenAIAPIURLv1
		}
	}

	if model == "" {
		model = openai.GPT4o
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseUrl
	client := openai.NewClientWithConfig(config)

	return &OpenAILLM{
		client: client,
		model:  model,
		logger: slog.New(slog.NewJSONHandler(os.Stdout, nil)),
	}
}

// NewOpenAILLMWithClient wraps an already-configured client, used by
// tests and by callers that need custom HTTP transport.
func NewOpenAILLMWithClient(client *openai.Client, model string) *OpenAILLM {
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAILLM{
		client: client,
		model:  model,
		logger: slog.New(slog.NewJSONHandler(os.Stdout, nil)),
	}
}

func (o *OpenAILLM) Complete(ctx context.Context, prompt string) (string, error) {
	return o.Chat(ctx, []ChatMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}})
}

func (o *OpenAILLM) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	o.logger.Info("chat called", "model", o.model, "message_count", len(messages))

	openaiMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		openaiMessages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	// go-openai drops a zero Temperature from the request (omitempty),
	// which leaves the provider default in force; the smallest non-zero
	// float32 is sent instead.
	resp, err := o.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       o.model,
			Messages:    openaiMessages,
			Temperature: math.SmallestNonzeroFloat32,
		},
	)
	if err != nil {
		o.logger.Error("chat failed", "error", err)
		return "", classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", ErrLLMTransient)
	}

	return resp.Choices[0].Message.Content, nil
}

// classifyOpenAIError maps a go-openai error into the pipeline's retry
// taxonomy so callers can distinguish "give up" from "back off and retry".
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 429:
			return fmt.Errorf("%w: %v", ErrLLMQuotaExceeded, err)
		case apiErr.HTTPStatusCode >= 500:
			return fmt.Errorf("%w: %v", ErrLLMTransient, err)
		}
		return fmt.Errorf("openai chat failed: %w", err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%w: %v", ErrLLMTransient, err)
	}

	return fmt.Errorf("%w: %v", ErrLLMTransient, err)
}
