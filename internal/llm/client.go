package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/nbc-assist/backend/pkg/logger"
)

// Client talks to an OpenAI-compatible API (Groq in production) for chat
// completions and embeddings. Completions are strictly single-attempt: one
// request, one response, no retry and no streaming.
type Client struct {
	client         *openai.Client
	model          string
	embeddingModel string
	temperature    float32
	maxTokens      int
}

func NewClient(baseURL, apiKey, model, embeddingModel string, temperature float32, maxTokens int) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	logger.Info("LLM client initialized",
		zap.String("base_url", cfg.BaseURL),
		zap.String("model", model),
		zap.String("embedding_model", embeddingModel),
	)

	return &Client{
		client:         openai.NewClientWithConfig(cfg),
		model:          model,
		embeddingModel: embeddingModel,
		temperature:    temperature,
		maxTokens:      maxTokens,
	}
}

// Complete sends a single user-role message and returns the first choice's
// trimmed content. Any transport or API failure surfaces as one wrapped
// "completion failed" error.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: c.temperature,
			MaxTokens:   c.maxTokens,
		},
	)
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion failed: empty choices")
	}

	logger.Debug("Completion generated",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// GenerateEmbedding converts text into a fixed-length vector.
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	resp, err := c.client.CreateEmbeddings(
		ctx,
		openai.EmbeddingRequest{
			Input: []string{text},
			Model: openai.EmbeddingModel(c.embeddingModel),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("failed to generate embedding: empty response")
	}

	embedding := make([]float32, len(resp.Data[0].Embedding))
	copy(embedding, resp.Data[0].Embedding)

	return embedding, nil
}

// GenerateBatchEmbeddings embeds texts in batches of 100.
func (c *Client) GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	var embeddings [][]float32

	batchSize := 100
	for i := 0; i < len(texts); i += batchSize {
		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		resp, err := c.client.CreateEmbeddings(
			ctx,
			openai.EmbeddingRequest{
				Input: texts[i:end],
				Model: openai.EmbeddingModel(c.embeddingModel),
			},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to generate batch embeddings: %w", err)
		}

		for _, data := range resp.Data {
			embedding := make([]float32, len(data.Embedding))
			copy(embedding, data.Embedding)
			embeddings = append(embeddings, embedding)
		}
	}

	logger.Debug("Batch embeddings generated", zap.Int("count", len(embeddings)))

	return embeddings, nil
}
