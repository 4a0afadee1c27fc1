package analyzer

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "resume-analyzer/internal/common/errors"
	"resume-analyzer/internal/common/logger"
	"resume-analyzer/internal/common/metrics"
	"resume-analyzer/internal/common/observability"
	"resume-analyzer/internal/common/validation"
)

var schema = validation.MustCompile(requestSchema)

// Handler serves POST /analyze.
type Handler struct {
	config  *Config
	service *Service
	errors  *apperrors.ErrorHandler
	obs     *observability.Observability
}

func NewHandler(cfg *Config, service *Service, log logger.Logger, obs *observability.Observability) *Handler {
	return &Handler{
		config:  cfg,
		service: service,
		errors:  apperrors.NewErrorHandler(log),
		obs:     obs,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/analyze", h.Analyze)
}

func (h *Handler) Analyze(c *gin.Context) {
	metrics.AnalyzeRequestsActive.Inc()
	defer metrics.AnalyzeRequestsActive.Dec()

	req, err := h.decode(c)
	if err == nil {
		var resp *AnalysisResponse
		resp, err = h.service.Analyze(c.Request.Context(), req)
		if err == nil {
			h.record(c, metrics.OutcomeSuccess)
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	h.record(c, outcomeOf(err))
	h.errors.HandleHTTPError(c, err)
}

// decode reads the bounded body, checks it against the request schema and
// unmarshals it. Bodies not sent as application/json are left unread and
// treated as an empty object.
func (h *Handler) decode(c *gin.Context) (*AnalysisRequest, error) {
	var raw []byte
	if isJSON(c) {
		body := c.Request.Body
		if h.config.MaxBodyBytes > 0 {
			body = http.MaxBytesReader(c.Writer, body, h.config.MaxBodyBytes)
		}

		var err error
		raw, err = io.ReadAll(body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, apperrors.NewRequestBodyTooLargeError(tooLarge.Limit)
			}
			return nil, apperrors.NewInvalidRequestBodyError("read body: " + err.Error())
		}
	}

	result := schema.Validate(raw)
	if !result.Valid {
		if result.IsMalformed() || result.HasErrors("(root)") {
			return nil, apperrors.NewInvalidRequestBodyError(joinMessages(result))
		}
		// a missing or blank resume outranks any other field error
		if !hasResumeText(raw) {
			return nil, apperrors.NewResumeTextRequiredError(joinMessages(result))
		}
		return nil, apperrors.NewInvalidRequestBodyError(joinMessages(result))
	}

	var req AnalysisRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, apperrors.NewInvalidRequestBodyError(err.Error())
	}
	return &req, nil
}

func isJSON(c *gin.Context) bool {
	return strings.EqualFold(c.ContentType(), gin.MIMEJSON)
}

// hasResumeText reports whether raw is an object whose resumeText is a
// non-blank string.
func hasResumeText(raw []byte) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return false
	}
	var text string
	if err := json.Unmarshal(fields["resumeText"], &text); err != nil {
		return false
	}
	return !isBlank(text)
}

func (h *Handler) record(c *gin.Context, outcome string) {
	metrics.AnalyzeRequestsTotal.WithLabelValues(outcome).Inc()
	h.obs.RecordAnalysis(c.Request.Context(), outcome)
}

func outcomeOf(err error) string {
	switch apperrors.GetErrorCategory(apperrors.AsStandardError(err).Code) {
	case "validation":
		return metrics.OutcomeValidationError
	case "provider":
		return metrics.OutcomeProviderError
	default:
		return metrics.OutcomeInternalError
	}
}

func joinMessages(result *validation.ValidationResult) string {
	msgs, _ := json.Marshal(result.GetErrorMessages())
	return string(msgs)
}
