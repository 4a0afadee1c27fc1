package provider

import (
	"context"
	"net/url"
	"strings"

	"resume-analyzer/internal/common/config"
	httpclient "resume-analyzer/internal/common/http"
)

// GeminiREST calls the Generative Language generateContent endpoint directly.
type GeminiREST struct {
	client      *httpclient.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
}

func NewGeminiREST(cfg config.ProviderConfig, client *httpclient.Client) *GeminiREST {
	return &GeminiREST{
		client:      client,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

func (g *GeminiREST) Name() string { return config.ProviderGemini }

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature float64 `json:"temperature"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func (g *GeminiREST) endpoint() string {
	return g.baseURL + "/v1beta/models/" + url.PathEscape(g.model) + ":generateContent"
}

func (g *GeminiREST) Generate(ctx context.Context, prompt string) (string, error) {
	body := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
		GenerationConfig: &geminiGenerationConfig{Temperature: g.temperature},
	}

	var resp geminiResponse
	headers := map[string]string{"X-goog-api-key": g.apiKey}
	if err := g.client.PostJSON(ctx, g.endpoint(), headers, body, &resp); err != nil {
		return "", classify(ctx, err)
	}

	return extractCandidateText(&resp)
}

// extractCandidateText joins the text parts of the first candidate.
func extractCandidateText(resp *geminiResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", invalidResponse("prompt blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return "", invalidResponse("no candidates")
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if sb.Len() == 0 {
		return "", invalidResponse("candidate has no text (finishReason %q)", resp.Candidates[0].FinishReason)
	}
	return sb.String(), nil
}
