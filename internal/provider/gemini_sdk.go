package provider

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"resume-analyzer/internal/common/config"
)

// GeminiSDK generates through the official genai client.
type GeminiSDK struct {
	client      *genai.Client
	model       string
	temperature float32
}

func NewGeminiSDK(ctx context.Context, cfg config.ProviderConfig, hc *http.Client) (*GeminiSDK, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  hc,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiSDK{
		client:      client,
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
	}, nil
}

func (g *GeminiSDK) Name() string { return config.ProviderGeminiSDK }

func (g *GeminiSDK) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	})
	if err != nil {
		return "", classify(ctx, err)
	}

	if len(result.Candidates) == 0 {
		if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
			return "", invalidResponse("prompt blocked: %s", result.PromptFeedback.BlockReason)
		}
		return "", invalidResponse("no candidates")
	}

	text := result.Text()
	if text == "" {
		return "", invalidResponse("candidate has no text (finishReason %q)", result.Candidates[0].FinishReason)
	}
	return text, nil
}
