// Package llm invokes chat-completion models with rendered prompts.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spherical/pdf-assistant/internal/config"
	"github.com/spherical/pdf-assistant/internal/domain"
	"github.com/spherical/pdf-assistant/internal/observability"
	"github.com/spherical/pdf-assistant/internal/prompt"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3.2:3b"
	maxErrorBody   = 1024
)

// ChatModel turns an ordered list of role-tagged messages into a completion.
type ChatModel interface {
	Complete(ctx context.Context, messages []prompt.Message) (string, error)
}

// StreamingChatModel additionally reports the completion as it is generated.
type StreamingChatModel interface {
	ChatModel
	CompleteStream(ctx context.Context, messages []prompt.Message, onChunk func(string)) (string, error)
}

// NewFromConfig builds the backend selected by cfg.Backend.
func NewFromConfig(cfg config.LLMConfig, logger *observability.Logger) (ChatModel, error) {
	switch cfg.Backend {
	case "", "ollama":
		return NewOllamaClient(cfg, logger), nil
	case "openai":
		return NewOpenAIClient(cfg, logger), nil
	default:
		return nil, domain.ConfigError(fmt.Sprintf("unknown llm backend %q", cfg.Backend), nil)
	}
}

// OllamaClient talks to Ollama's native /api/chat endpoint.
type OllamaClient struct {
	baseURL    string
	model      string
	stream     bool
	options    map[string]interface{}
	retry      *RetryConfig
	httpClient *http.Client
	logger     *observability.Logger
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Model    string                 `json:"model"`
	Messages []prompt.Message       `json:"messages"`
	Stream   bool                   `json:"stream"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

// ChatResponse is one /api/chat response object. Streaming responses send one per line.
type ChatResponse struct {
	Model      string         `json:"model"`
	CreatedAt  string         `json:"created_at"`
	Message    prompt.Message `json:"message"`
	Done       bool           `json:"done"`
	DoneReason string         `json:"done_reason,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// NewOllamaClient creates a client for the configured host and model.
func NewOllamaClient(cfg config.LLMConfig, logger *observability.Logger) *OllamaClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = observability.NopLogger()
	}

	var options map[string]interface{}
	if cfg.Temperature != nil {
		options = map[string]interface{}{"temperature": *cfg.Temperature}
	}

	retry := DefaultRetryConfig()
	retry.MaxRetries = cfg.MaxRetries

	return &OllamaClient{
		baseURL:    baseURL,
		model:      model,
		stream:     cfg.Stream,
		options:    options,
		retry:      retry,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.WithOperation("inference"),
	}
}

// Model returns the model name requests are sent to.
func (c *OllamaClient) Model() string {
	return c.model
}

// Complete returns the model's full reply.
func (c *OllamaClient) Complete(ctx context.Context, messages []prompt.Message) (string, error) {
	if c.stream {
		return c.CompleteStream(ctx, messages, nil)
	}
	return c.chat(ctx, messages, false, nil)
}

// CompleteStream requests a streamed reply and calls onChunk for every content delta.
func (c *OllamaClient) CompleteStream(ctx context.Context, messages []prompt.Message, onChunk func(string)) (string, error) {
	return c.chat(ctx, messages, true, onChunk)
}

func (c *OllamaClient) chat(ctx context.Context, messages []prompt.Message, stream bool, onChunk func(string)) (string, error) {
	start := time.Now()

	body, err := json.Marshal(ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   stream,
		Options:  c.options,
	})
	if err != nil {
		return "", domain.InferenceError("failed to encode chat request", err)
	}

	resp, err := c.retryWithBackoff(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if stream {
			req.Header.Set("Accept", "application/x-ndjson")
		}
		return c.httpClient.Do(req)
	})
	if err != nil {
		return "", domain.InferenceError(fmt.Sprintf("could not reach the language model at %s", c.baseURL), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", domain.InferenceError(fmt.Sprintf("language model returned status %d: %s",
			resp.StatusCode, readErrorBody(resp.Body)), nil)
	}

	var content string
	if stream {
		content, err = NewStreamParser(resp.Body).Collect(onChunk)
	} else {
		content, err = decodeChat(resp.Body)
	}
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(content) == "" {
		return "", domain.InferenceError("language model returned an empty response", nil)
	}

	c.logger.Debug().
		Str("model", c.model).
		Bool("stream", stream).
		Int("chars", len(content)).
		Dur("elapsed", time.Since(start)).
		Msg("Chat completion finished")

	return content, nil
}

func decodeChat(body io.Reader) (string, error) {
	var out ChatResponse
	if err := json.NewDecoder(body).Decode(&out); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", domain.InferenceError("language model timed out", err)
		}
		return "", domain.InferenceError("malformed response from language model", err)
	}
	if out.Error != "" {
		return "", domain.InferenceError("language model error: "+out.Error, nil)
	}
	return out.Message.Content, nil
}

// readErrorBody extracts Ollama's {"error": "..."} message, or the raw body prefix.
func readErrorBody(body io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
	var out ChatResponse
	if json.Unmarshal(raw, &out) == nil && out.Error != "" {
		return out.Error
	}
	return strings.TrimSpace(string(raw))
}
