package ai

import (
	"context"
	"errors"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Vovarama1992/carelog-ai-bridge/internal/logger"
	"github.com/Vovarama1992/carelog-ai-bridge/internal/metrics"
)

var ErrEmptyResponse = errors.New("ai: empty response")

type OpenAIClient struct {
	client  *openai.Client
	model   string
	log     *zap.Logger
	metrics metrics.Recorder
}

// NewOpenAIClient builds a chat-completions client. An empty baseURL keeps
// the library default; model falls back to gpt-4o-mini.
func NewOpenAIClient(apiKey, model, baseURL string, log *zap.Logger, m metrics.Recorder) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	if m == nil {
		m = metrics.Nop{}
	}

	return &OpenAIClient{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		log:     log.Named("ai"),
		metrics: m,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userText},
		},
		// omitempty drops a literal zero.
		Temperature: math.SmallestNonzeroFloat32,
	})
	c.metrics.RecordLLMLatency(time.Since(start))
	if err != nil {
		c.log.Error("openai call failed", zap.String("model", c.model), zap.Error(err))
		return "", err
	}

	if len(resp.Choices) == 0 {
		c.log.Warn("empty choices", zap.String("model", c.model))
		return "", ErrEmptyResponse
	}

	raw := resp.Choices[0].Message.Content
	c.log.Debug("raw model response", zap.String("text", logger.Short(raw)))
	return raw, nil
}
