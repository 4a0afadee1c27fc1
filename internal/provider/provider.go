// Package provider holds the generative-text backends an analysis can be sent to.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"resume-analyzer/internal/common/config"
	httpclient "resume-analyzer/internal/common/http"
)

var (
	ErrProviderFailed  = errors.New("PROVIDER_FAILED")
	ErrProviderTimeout = errors.New("PROVIDER_TIMEOUT")
	ErrInvalidResponse = errors.New("PROVIDER_RESPONSE_INVALID")
)

// Provider turns a prompt into generated text.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// New builds the provider selected by cfg.Kind. A nil hc uses a client with
// no timeout of its own; the caller's context bounds every call.
func New(ctx context.Context, cfg config.ProviderConfig, hc *http.Client) (Provider, error) {
	if hc == nil {
		hc = &http.Client{}
	}

	switch cfg.Kind {
	case config.ProviderGemini, "":
		return NewGeminiREST(cfg, httpclient.NewClient(hc)), nil
	case config.ProviderGeminiSDK:
		return NewGeminiSDK(ctx, cfg, hc)
	case config.ProviderOpenAICompat:
		return NewOpenAICompat(cfg, hc), nil
	default:
		return nil, fmt.Errorf("unsupported provider kind %q", cfg.Kind)
	}
}

// classify wraps err with the sentinel matching its cause. Deadline errors
// become ErrProviderTimeout, everything else ErrProviderFailed.
func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrProviderTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrProviderFailed, err)
}

func invalidResponse(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidResponse, fmt.Sprintf(format, args...))
}
