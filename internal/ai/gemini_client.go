package ai

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/Vovarama1992/carelog-ai-bridge/internal/logger"
	"github.com/Vovarama1992/carelog-ai-bridge/internal/metrics"
)

const defaultGeminiModel = "gemini-2.0-flash"

type GeminiClient struct {
	client  *genai.Client
	model   string
	log     *zap.Logger
	metrics metrics.Recorder
}

func NewGeminiClient(ctx context.Context, apiKey, model string, log *zap.Logger, m metrics.Recorder) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	if model == "" {
		model = defaultGeminiModel
	}
	if m == nil {
		m = metrics.Nop{}
	}

	return &GeminiClient{
		client:  client,
		model:   model,
		log:     log.Named("ai"),
		metrics: m,
	}, nil
}

func (c *GeminiClient) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	temp := float32(0)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       &temp,
	}
	contents := []*genai.Content{genai.NewContentFromText(userText, genai.RoleUser)}

	start := time.Now()
	res, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	c.metrics.RecordLLMLatency(time.Since(start))
	if err != nil {
		c.log.Error("gemini call failed", zap.String("model", c.model), zap.Error(err))
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		c.log.Warn("empty text", zap.String("model", c.model))
		return "", ErrEmptyResponse
	}

	c.log.Debug("raw model response", zap.String("text", logger.Short(text)))
	return text, nil
}
