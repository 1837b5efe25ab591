package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kengetal/internal/app"
	"github.com/ternarybob/kengetal/internal/common"
	"github.com/ternarybob/kengetal/internal/handlers"
	"github.com/ternarybob/kengetal/internal/models"
)

// newTestServer wires the routes over an offline pipeline without API keys,
// so every explanation uses its fallback text.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	for _, key := range []string{"KENGETAL_GEMINI_API_KEY", "GOOGLE_GEMINI_API_KEY", "GEMINI_API_KEY", "KENGETAL_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"} {
		t.Setenv(key, "")
	}

	logger := arbor.NewLogger()
	application, err := app.NewOffline(common.NewDefaultConfig(), logger)
	require.NoError(t, err)

	application.APIHandler = handlers.NewAPIHandler(logger)
	application.AnalysisHandler = handlers.NewAnalysisHandler(application.AnalysisService, application.ReportService, 0, logger)
	application.WSHandler = handlers.NewWebSocketHandler(logger)

	return New(application).Handler()
}

func TestRoutes(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodGet, "/api/health", "", http.StatusOK},
		{http.MethodGet, "/api/version", "", http.StatusOK},
		{http.MethodPost, "/api/ratios", `{"omzet": 1}`, http.StatusOK},
		{http.MethodPost, "/api/analyze", `{"nettowinst": 80000, "eigenVermogen": 1000000}`, http.StatusOK},
		{http.MethodPost, "/api/analyze/table", `{"headers": ["Omzet"], "rows": [{"Omzet": 1}]}`, http.StatusOK},
		{http.MethodGet, "/api/projects/proj-1/analyses", "", http.StatusOK},
		{http.MethodPut, "/api/projects/proj-1/analyses", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/projects/proj-1", "", http.StatusNotFound},
		{http.MethodGet, "/api/analyses/ana_1", "", http.StatusNotFound},
		{http.MethodPut, "/api/analyses/ana_1", "", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/analyses/ana_1/report", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/analyses/ana_1/other", "", http.StatusNotFound},
		{http.MethodGet, "/api/unknown", "", http.StatusNotFound},
		{http.MethodOptions, "/api/analyze", "", http.StatusNoContent},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, tt.status, w.Code, "%s %s", tt.method, tt.path)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestAnalyzeRoute_UsesFallbackExplanations(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{
		"omzet": 1000000, "nettowinst": 80000, "eigenVermogen": 1000000,
		"vlottendeActiva": 300000, "kortlopendeSchulden": 200000, "totaalActiva": 2500000
	}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var result models.AnalysisResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))

	assert.Equal(t, models.HealthHealthy, result.Summary.OverallHealth)
	require.Len(t, result.Explanations, 3)
	for _, e := range result.Explanations {
		assert.NotEmpty(t, e.Uitleg)
	}
}
