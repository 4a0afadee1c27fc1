// internal/common/errors/handler.go
package errors

import (
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the JSON body written for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrorHandler converts errors into JSON responses at the HTTP boundary.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleHTTPError logs err with full detail and writes only the public message.
func (h *ErrorHandler) HandleHTTPError(c *gin.Context, err error) {
	stdErr := AsStandardError(err)

	h.logError(c, stdErr)

	c.AbortWithStatusJSON(stdErr.HTTPStatus(), ErrorResponse{Error: stdErr.Message})
}

// Recovery turns a handler panic into an INTERNAL_ERROR response.
func (h *ErrorHandler) Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		h.logger.Error("panic recovered", map[string]interface{}{
			"path":      c.Request.URL.Path,
			"panic":     recovered,
			"requestId": c.GetString(RequestIDKey),
		})
		c.AbortWithStatusJSON(GetHTTPStatus(ErrCodeInternal), ErrorResponse{Error: MsgInternal})
	})
}

// RequestIDKey is the gin context key carrying the request id.
const RequestIDKey = "requestId"

func (h *ErrorHandler) logError(c *gin.Context, stdErr *StandardError) {
	fields := map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"errorCategory": GetErrorCategory(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"status":        stdErr.HTTPStatus(),
		"path":          c.Request.URL.Path,
		"requestId":     c.GetString(RequestIDKey),
	}
	for k, v := range stdErr.Metadata {
		fields[k] = v
	}

	if GetErrorCategory(stdErr.Code) == "validation" {
		h.logger.Warn("request rejected", fields)
		return
	}
	h.logger.Error("request failed", fields)
}
