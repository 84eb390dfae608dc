package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/spherical/pdf-assistant/internal/config"
	"github.com/spherical/pdf-assistant/internal/domain"
	"github.com/spherical/pdf-assistant/internal/observability"
	"github.com/spherical/pdf-assistant/internal/prompt"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint,
// including Ollama's /v1 compatibility layer.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *observability.Logger
}

// NewOpenAIClient creates a client for cfg.BaseURL. A base URL without a /v1
// suffix gets one appended.
func NewOpenAIClient(cfg config.LLMConfig, logger *observability.Logger) *OpenAIClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/v1") {
		baseURL += "/v1"
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		// Ollama ignores the key but the client always sends one.
		apiKey = "ollama"
	}

	clientCfg := openai.DefaultConfig(apiKey)
	clientCfg.BaseURL = baseURL
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	var temperature float32
	if cfg.Temperature != nil {
		temperature = float32(*cfg.Temperature)
	}

	if logger == nil {
		logger = observability.NopLogger()
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		temperature: temperature,
		logger:      logger.WithOperation("inference"),
	}
}

// Complete implements ChatModel.
func (c *OpenAIClient) Complete(ctx context.Context, messages []prompt.Message) (string, error) {
	start := time.Now()

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
		Temperature: c.temperature,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", domain.InferenceError(fmt.Sprintf("language model returned status %d: %s",
				apiErr.HTTPStatusCode, apiErr.Message), err)
		}
		return "", domain.InferenceError("could not reach the language model", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", domain.InferenceError("language model returned an empty response", nil)
	}

	content := resp.Choices[0].Message.Content
	c.logger.Debug().
		Str("model", c.model).
		Int("chars", len(content)).
		Dur("elapsed", time.Since(start)).
		Msg("Chat completion finished")

	return content, nil
}
