package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperror "chat-shim/internal/error"
	"chat-shim/internal/storage"

	"go.uber.org/zap"
)

const tokenCountTTL = 24 * time.Hour

// OpenAIConfig configures an OpenAI-compatible chat completions backend
type OpenAIConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	MaxTokens    int
	MaxExchanges int
	Timeout      time.Duration
}

// OpenAIClient talks to an OpenAI-compatible chat completions endpoint
// (Groq by default) and keeps conversation history in memory.
type OpenAIClient struct {
	conversations

	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	timeout    time.Duration
	httpClient *http.Client
	cache      storage.CacheStore // Can be nil
}

// NewOpenAIClient creates a new client. cache may be nil.
func NewOpenAIClient(cfg OpenAIConfig, cache storage.CacheStore, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, apperror.ErrMissingAPIKey
	}

	return &OpenAIClient{
		conversations: newConversations(cfg.MaxExchanges, logger),
		apiKey:        cfg.APIKey,
		baseURL:       cfg.BaseURL,
		model:         cfg.Model,
		maxTokens:     cfg.MaxTokens,
		timeout:       cfg.Timeout,
		// No client-wide timeout: it would also cut long streams. Ask bounds
		// itself with a context deadline instead.
		httpClient: &http.Client{},
		cache:      cache,
	}, nil
}

// Message represents a chat message on the wire
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents the request to the completions API
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// ChatResponse represents a full response or a streaming chunk
type ChatResponse struct {
	ID      string    `json:"id"`
	Object  string    `json:"object"`
	Created int64     `json:"created"`
	Model   string    `json:"model"`
	Choices []Choice  `json:"choices"`
	Error   *APIError `json:"error,omitempty"`
}

// Choice represents a choice in the response
type Choice struct {
	Index        int      `json:"index"`
	Delta        *Delta   `json:"delta,omitempty"`
	Message      *Message `json:"message,omitempty"`
	FinishReason string   `json:"finish_reason,omitempty"`
}

// Delta represents incremental content in streaming
type Delta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// APIError is the error object some providers embed in a 200 response
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

// Ask performs a non-streaming chat completion
func (c *OpenAIClient) Ask(ctx context.Context, text string) (string, error) {
	conv, user, messages := c.prompt(text)
	c.recordPromptTokens(ctx, conv.ID, messages)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.doRequest(ctx, c.newRequest(messages, false))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("chat API error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message == nil {
		return "", apperror.ErrNoContent
	}

	answer := chatResp.Choices[0].Message.Content
	conv.Messages.AddExchange(user, storage.Message{Role: storage.RoleAssistant, Content: answer})
	return answer, nil
}

// AskStream streams the chat completion response chunk by chunk
func (c *OpenAIClient) AskStream(ctx context.Context, text string) (Stream, error) {
	conv, user, messages := c.prompt(text)
	c.recordPromptTokens(ctx, conv.ID, messages)
	body := c.newRequest(messages, true)

	return newChunkStream(ctx, func(ctx context.Context, emit func(string) error) error {
		resp, err := c.doRequest(ctx, body)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		var full strings.Builder
		if err := scanStream(resp.Body, func(token string) error {
			full.WriteString(token)
			return emit(token)
		}); err != nil {
			return err
		}

		conv.Messages.AddExchange(user, storage.Message{Role: storage.RoleAssistant, Content: full.String()})
		return nil
	}), nil
}

func (c *OpenAIClient) newRequest(messages []storage.Message, stream bool) ChatRequest {
	wire := make([]Message, len(messages))
	for i, msg := range messages {
		wire[i] = Message{Role: msg.Role, Content: msg.Content}
	}
	return ChatRequest{
		Model:     c.model,
		Messages:  wire,
		Stream:    stream,
		MaxTokens: c.maxTokens,
	}
}

// recordPromptTokens logs the prompt size, using the cache when available.
// Failures only cost the log line.
func (c *OpenAIClient) recordPromptTokens(ctx context.Context, conversationID string, messages []storage.Message) {
	if c.cache != nil {
		if count, found, err := c.cache.GetTokenCount(ctx, messages); err == nil && found {
			c.logger.Debug("Prompt tokens",
				zap.String("conversation_id", conversationID),
				zap.Int("tokens", count),
				zap.Bool("cached", true),
			)
			return
		}
	}

	count, err := storage.CountTokens(messages)
	if err != nil {
		c.logger.Warn("Failed to count prompt tokens", zap.Error(err))
		return
	}
	if c.cache != nil {
		if err := c.cache.SetTokenCount(ctx, messages, count, tokenCountTTL); err != nil {
			c.logger.Warn("Failed to cache token count", zap.Error(err))
		}
	}

	c.logger.Debug("Prompt tokens",
		zap.String("conversation_id", conversationID),
		zap.Int("tokens", count),
		zap.Bool("cached", false),
	)
}
