package analyzer

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "resume-analyzer/internal/common/errors"
	"resume-analyzer/internal/common/logger"
	"resume-analyzer/internal/common/metrics"
	"resume-analyzer/internal/common/observability"
	"resume-analyzer/internal/provider"
)

// Service turns an analysis request into provider feedback. It holds no
// per-request state and is safe for concurrent use.
type Service struct {
	config   *Config
	provider provider.Provider
	logger   logger.Logger
	obs      *observability.Observability
}

func NewService(cfg *Config, p provider.Provider, log logger.Logger, obs *observability.Observability) *Service {
	return &Service{
		config:   cfg,
		provider: p,
		logger: log.With(map[string]interface{}{
			"component": "analyzer",
			"provider":  p.Name(),
		}),
		obs: obs,
	}
}

// Analyze validates req, sends one prompt to the provider and returns its text
// unchanged. A blank resume never reaches the provider. Errors are
// *errors.StandardError.
func (s *Service) Analyze(ctx context.Context, req *AnalysisRequest) (*AnalysisResponse, error) {
	if req == nil || isBlank(req.ResumeText) {
		return nil, apperrors.NewResumeTextRequiredError("resumeText is missing or blank")
	}

	ctx, span := s.obs.StartSpan(ctx, "analyzer.Analyze",
		attribute.Int("resume.length", len(req.ResumeText)),
		attribute.Bool("job.present", req.JobText != ""),
	)
	defer span.End()

	prompt, err := BuildPrompt(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "prompt")
		return nil, apperrors.NewInternalError(err)
	}

	text, err := s.generate(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider")
		return nil, err
	}

	return &AnalysisResponse{Feedback: text}, nil
}

func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	ctx, span := s.obs.StartSpan(ctx, "provider.Generate", attribute.String("provider", s.provider.Name()))
	defer span.End()

	start := time.Now()
	text, err := s.provider.Generate(ctx, prompt)
	elapsed := time.Since(start)

	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeProviderError
	}
	metrics.ProviderCallDuration.WithLabelValues(s.provider.Name(), outcome).Observe(elapsed.Seconds())
	s.obs.RecordProviderDuration(ctx, s.provider.Name(), elapsed, outcome)

	if err != nil {
		stdErr := toProviderError(s.provider.Name(), err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(stdErr.Code))
		s.logger.WithError(err).Error("provider call failed", map[string]interface{}{
			"errorCode":  string(stdErr.Code),
			"durationMs": elapsed.Milliseconds(),
			"promptLen":  len(prompt),
		})
		return "", stdErr
	}

	s.logger.Info("analysis completed", map[string]interface{}{
		"durationMs":  elapsed.Milliseconds(),
		"promptLen":   len(prompt),
		"feedbackLen": len(text),
	})
	return text, nil
}

func toProviderError(name string, err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, provider.ErrProviderTimeout), errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewProviderTimeoutError(name, err)
	case errors.Is(err, provider.ErrInvalidResponse):
		return apperrors.NewProviderResponseInvalidError(name, err)
	default:
		return apperrors.NewProviderFailedError(name, err)
	}
}

// isBlank treats the byte order mark as whitespace along with unicode spaces.
func isBlank(s string) bool {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	}) == ""
}
