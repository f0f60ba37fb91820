package openai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultEmbeddingModel is the OpenAI-compatible model used for embeddings
	DefaultEmbeddingModel = "BAAI/bge-m3"
	// DefaultChatModel is the default completion model
	DefaultChatModel = "deepseek-chat"
	// DefaultProvider labels the default completion endpoint
	DefaultProvider = "deepseek"
)

var (
	// ErrEmptyText is returned when there is nothing to embed
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrNoMessages is returned when a completion is requested without messages
	ErrNoMessages = errors.New("messages cannot be empty")
	// ErrNoChoices is returned when the API responds without any choice
	ErrNoChoices = errors.New("no completion choices returned")
)

// Message is a single chat message handed to the completion endpoint.
type Message struct {
	Role    string
	Content string
}

// Usage reports token consumption for one completion call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Completion is the normalized result of a completion call.
type Completion struct {
	Content  string
	Usage    Usage
	Provider string
	Model    string
}

// chatAPI is the slice of the OpenAI SDK the completion client depends on.
type chatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// embeddingAPI is the slice of the OpenAI SDK the embedding client depends on.
type embeddingAPI interface {
	CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// Config holds connection settings for an OpenAI-compatible endpoint.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Provider    string
	MaxTokens   int
	Temperature float32
}

func newSDKClient(apiKey, baseURL string) *openai.Client {
	if baseURL == "" {
		return openai.NewClient(apiKey)
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return openai.NewClientWithConfig(cfg)
}

// ChatClient wraps an OpenAI-compatible chat completions endpoint.
type ChatClient struct {
	api         chatAPI
	provider    string
	model       string
	maxTokens   int
	temperature float32
}

// NewChatClient creates a completion client with the given configuration.
func NewChatClient(cfg Config) *ChatClient {
	model := cfg.Model
	if model == "" {
		model = DefaultChatModel
	}
	provider := cfg.Provider
	if provider == "" {
		provider = DefaultProvider
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &ChatClient{
		api:         newSDKClient(cfg.APIKey, cfg.BaseURL),
		provider:    provider,
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
	}
}

// NewChatClientWithAPI creates a completion client backed by a custom API
// implementation (for testing).
func NewChatClientWithAPI(api chatAPI, provider, model string) *ChatClient {
	return &ChatClient{api: api, provider: provider, model: model, maxTokens: 2048}
}

// Complete sends messages to the completion endpoint and normalizes the
// response into content, usage, provider and model.
func (c *ChatClient) Complete(ctx context.Context, messages []Message) (*Completion, error) {
	if len(messages) == 0 {
		return nil, ErrNoMessages
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoChoices
	}

	return &Completion{
		Content: resp.Choices[0].Message.Content,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
		Provider: c.provider,
		Model:    c.model,
	}, nil
}

// EmbeddingClient wraps an OpenAI-compatible embeddings endpoint. The
// semantic index uses it internally; nothing outside the index sees vectors.
type EmbeddingClient struct {
	api   embeddingAPI
	model string
}

// NewEmbeddingClient creates an embedding client with the given configuration.
func NewEmbeddingClient(cfg Config) *EmbeddingClient {
	model := cfg.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &EmbeddingClient{
		api:   newSDKClient(cfg.APIKey, cfg.BaseURL),
		model: model,
	}
}

// NewEmbeddingClientWithAPI creates an embedding client backed by a custom
// API implementation (for testing).
func NewEmbeddingClientWithAPI(api embeddingAPI, model string) *EmbeddingClient {
	return &EmbeddingClient{api: api, model: model}
}

// Embed generates one embedding per input text, preserving order.
func (c *EmbeddingClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyText
	}

	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}
