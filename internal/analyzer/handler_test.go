package analyzer

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"resume-analyzer/internal/common/logger"
	"resume-analyzer/internal/provider"
)

func newTestRouter(t *testing.T, p provider.Provider, maxBody int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &Config{Timeout: time.Second, MaxBodyBytes: maxBody}
	log := logger.NewTestLogger(t)

	r := gin.New()
	NewHandler(cfg, NewService(cfg, p, log, nil), log, nil).RegisterRoutes(r)
	return r
}

func post(r http.Handler, body string) *httptest.ResponseRecorder {
	return postAs(r, "application/json", body)
}

func postAs(r http.Handler, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Analyze_Success(t *testing.T) {
	p := &mockProvider{}
	p.On("Generate", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "Resume:\nJohn Doe, 5 years experience...") &&
			!strings.Contains(prompt, "Job Description")
	})).Return("Score: 7/10\n\"quoted\" <ok>", nil).Once()

	rec := post(newTestRouter(t, p, 1<<10), `{"resumeText":"John Doe, 5 years experience..."}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp AnalysisResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Score: 7/10\n\"quoted\" <ok>", resp.Feedback)
	p.AssertExpectations(t)
}

func TestHandler_Analyze_NullJobTextIsAbsent(t *testing.T) {
	p := &mockProvider{}
	p.On("Generate", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return !strings.Contains(prompt, "Job Description")
	})).Return("ok", nil).Once()

	rec := post(newTestRouter(t, p, 1<<10), `{"resumeText":"Jane","jobText":null}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	p.AssertExpectations(t)
}

func TestHandler_Analyze_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"blank resume with job", `{"resumeText":"","jobText":"Senior Engineer"}`, "Resume text is required"},
		{"whitespace resume", `{"resumeText":"  \n\t "}`, "Resume text is required"},
		{"missing resume", `{"jobText":"Senior Engineer"}`, "Resume text is required"},
		{"null resume", `{"resumeText":null}`, "Resume text is required"},
		{"numeric resume", `{"resumeText":42}`, "Resume text is required"},
		{"empty body", ``, "Resume text is required"},
		{"empty object", `{}`, "Resume text is required"},
		{"malformed json", `{"resumeText":`, "Invalid request body"},
		{"array body", `["John Doe"]`, "Invalid request body"},
		{"string body", `"John Doe"`, "Invalid request body"},
		{"numeric job text", `{"resumeText":"Jane","jobText":5}`, "Invalid request body"},
		{"blank resume outranks bad job text", `{"resumeText":"","jobText":5}`, "Resume text is required"},
		{"whitespace resume outranks object job text", `{"resumeText":"   ","jobText":{"a":1}}`, "Resume text is required"},
		{"null resume outranks array job text", `{"resumeText":null,"jobText":[1]}`, "Resume text is required"},
		{"missing resume outranks bad job text", `{"jobText":5}`, "Resume text is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &mockProvider{}

			rec := post(newTestRouter(t, p, 1<<10), tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"`+tt.wantErr+`"}`, rec.Body.String())
			p.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_Analyze_BodyTooLarge(t *testing.T) {
	p := &mockProvider{}

	body := `{"resumeText":"` + strings.Repeat("a", 200) + `"}`
	rec := post(newTestRouter(t, p, 64), body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.JSONEq(t, `{"error":"Request body too large"}`, rec.Body.String())
	p.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestHandler_Analyze_ProviderFailure(t *testing.T) {
	p := &mockProvider{}
	p.On("Generate", mock.Anything, mock.Anything).
		Return("", errors.Join(provider.ErrProviderFailed, errors.New("403 API key not valid"))).Once()

	rec := post(newTestRouter(t, p, 1<<10), `{"resumeText":"Jane"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Gemini API failed"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "API key")
	p.AssertNumberOfCalls(t, "Generate", 1)
}

func TestHandler_Analyze_NonJSONBodyIsIgnored(t *testing.T) {
	for _, contentType := range []string{"", "text/plain", "application/x-www-form-urlencoded"} {
		t.Run("content type "+contentType, func(t *testing.T) {
			p := &mockProvider{}

			rec := postAs(newTestRouter(t, p, 1<<10), contentType, `{"resumeText":"Jane"}`)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"Resume text is required"}`, rec.Body.String())
			p.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_Analyze_JSONWithCharset(t *testing.T) {
	p := &mockProvider{}
	p.On("Generate", mock.Anything, mock.Anything).Return("ok", nil).Once()

	rec := postAs(newTestRouter(t, p, 1<<10), "application/json; charset=utf-8", `{"resumeText":"Jane"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"feedback":"ok"}`, rec.Body.String())
	p.AssertExpectations(t)
}
