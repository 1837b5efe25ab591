package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestAPIHandler(t *testing.T) {
	h := NewAPIHandler(arbor.NewLogger())

	w := httptest.NewRecorder()
	h.HealthHandler(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	h.VersionHandler(w, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var version map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &version))
	assert.Contains(t, version, "version")

	w = httptest.NewRecorder()
	h.HealthHandler(w, httptest.NewRequest(http.MethodPost, "/api/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = httptest.NewRecorder()
	h.NotFoundHandler(w, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
