package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	warns  []map[string]interface{}
	errors []map[string]interface{}
}

func (r *recordingLogger) Warn(_ string, fields map[string]interface{}) {
	r.warns = append(r.warns, fields)
}

func (r *recordingLogger) Error(_ string, fields map[string]interface{}) {
	r.errors = append(r.errors, fields)
}

func TestGetHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, GetHTTPStatus(ErrCodeResumeTextRequired))
	assert.Equal(t, http.StatusBadRequest, GetHTTPStatus(ErrCodeInvalidRequestBody))
	assert.Equal(t, http.StatusRequestEntityTooLarge, GetHTTPStatus(ErrCodeRequestBodyTooLarge))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(ErrCodeProviderFailed))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(ErrCodeProviderTimeout))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(ErrCodeProviderResponseInvalid))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(ErrorCode("SOMETHING_NEW")))
}

func TestProviderErrors_ShareGenericMessage(t *testing.T) {
	cause := stderrors.New("upstream said: API key not valid")
	for _, err := range []*StandardError{
		NewProviderFailedError("gemini", cause),
		NewProviderTimeoutError("gemini", context.DeadlineExceeded),
		NewProviderResponseInvalidError("gemini", cause),
	} {
		assert.Equal(t, "Gemini API failed", err.Message)
		assert.Equal(t, "provider", GetErrorCategory(err.Code))
	}
}

func TestStandardError_Unwrap(t *testing.T) {
	err := fmt.Errorf("analyze: %w", NewProviderTimeoutError("gemini", context.DeadlineExceeded))
	assert.True(t, stderrors.Is(err, context.DeadlineExceeded))

	stdErr := AsStandardError(err)
	assert.Equal(t, ErrCodeProviderTimeout, stdErr.Code)
	assert.False(t, IsValidation(err))
	assert.True(t, IsValidation(NewResumeTextRequiredError("blank")))
}

func TestAsStandardError_UnknownIsInternal(t *testing.T) {
	stdErr := AsStandardError(stderrors.New("nil map write"))
	assert.Equal(t, ErrCodeInternal, stdErr.Code)
	assert.Equal(t, MsgInternal, stdErr.Message)
}

func TestErrorHandler_HandleHTTPError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
		wantWarn   bool
	}{
		{
			name:       "validation",
			err:        NewResumeTextRequiredError("resumeText is blank"),
			wantStatus: http.StatusBadRequest,
			wantBody:   "Resume text is required",
			wantWarn:   true,
		},
		{
			name:       "provider detail is not leaked",
			err:        NewProviderFailedError("gemini", stderrors.New("HTTP 403: PERMISSION_DENIED secret-project")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Gemini API failed",
		},
		{
			name:       "plain error",
			err:        stderrors.New("unexpected"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &recordingLogger{}
			h := NewErrorHandler(log)

			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodPost, "/analyze", nil)

			h.HandleHTTPError(c, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body.Error)
			assert.NotContains(t, rec.Body.String(), "secret-project")

			if tt.wantWarn {
				assert.Len(t, log.warns, 1)
				assert.Empty(t, log.errors)
			} else {
				assert.Len(t, log.errors, 1)
				assert.Empty(t, log.warns)
			}
		})
	}
}

func TestErrorHandler_Recovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := &recordingLogger{}
	h := NewErrorHandler(log)

	r := gin.New()
	r.Use(h.Recovery())
	r.GET("/boom", func(*gin.Context) { panic("kaboom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
	assert.Len(t, log.errors, 1)
}
