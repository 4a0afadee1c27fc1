package provider

import (
	"context"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"resume-analyzer/internal/common/config"
)

// OpenAICompat talks to an OpenAI-compatible chat completions endpoint, by
// default the one Gemini exposes.
type OpenAICompat struct {
	client      *openai.Client
	model       string
	temperature float64
}

func NewOpenAICompat(cfg config.ProviderConfig, hc *http.Client) *OpenAICompat {
	client := openai.NewClient(
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(hc),
		option.WithMaxRetries(0),
	)
	return &OpenAICompat{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

func (o *OpenAICompat) Name() string { return config.ProviderOpenAICompat }

func (o *OpenAICompat) Generate(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		}),
		Model:       openai.F(o.model),
		Temperature: openai.F(o.temperature),
	}

	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classify(ctx, err)
	}

	if len(completion.Choices) == 0 {
		return "", invalidResponse("no choices")
	}
	text := completion.Choices[0].Message.Content
	if text == "" {
		return "", invalidResponse("choice has no content (finishReason %q)", completion.Choices[0].FinishReason)
	}
	return text, nil
}
