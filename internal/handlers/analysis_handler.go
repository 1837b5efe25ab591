package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kengetal/internal/ingest"
	"github.com/ternarybob/kengetal/internal/interfaces"
	"github.com/ternarybob/kengetal/internal/models"
	"github.com/ternarybob/kengetal/internal/services/analysis"
	"github.com/ternarybob/kengetal/internal/services/report"
)

// DefaultMaxUploadBytes is used when no upload limit is configured
const DefaultMaxUploadBytes = 10 << 20

// AnalysisHandler serves ratio analysis and stored analysis endpoints
type AnalysisHandler struct {
	service        AnalysisService
	reports        ReportRenderer
	maxUploadBytes int64
	logger         arbor.ILogger
}

func NewAnalysisHandler(service AnalysisService, reports ReportRenderer, maxUploadBytes int64, logger arbor.ILogger) *AnalysisHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &AnalysisHandler{
		service:        service,
		reports:        reports,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// RatiosHandler computes the three ratios without explanations.
// POST /api/ratios
func (h *AnalysisHandler) RatiosHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var metrics *models.FinancialData
	if err := DecodeJSON(w, r, &metrics); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ratios, err := h.service.CalculateRatios(metrics)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, ratios)
}

// AnalyzeHandler runs the full analysis on supplied figures.
// POST /api/analyze
func (h *AnalysisHandler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var metrics *models.FinancialData
	if err := DecodeJSON(w, r, &metrics); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.AnalyzeFinancials(r.Context(), metrics)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// AnalyzeTableHandler analyses an already parsed table.
// POST /api/analyze/table
func (h *AnalysisHandler) AnalyzeTableHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.TableAnalysisRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.service.AnalyzeTable(r.Context(), &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

// UploadHandler analyses an uploaded spreadsheet and stores the result.
// POST /api/projects/{projectId}/analyses (multipart form, field "file")
func (h *AnalysisHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	projectID := projectIDFromPath(r)
	if projectID == "" {
		WriteError(w, http.StatusBadRequest, "Project ID is required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File exceeds the limit of %d bytes", h.maxUploadBytes))
			return
		}
		WriteError(w, http.StatusBadRequest, "Expected a multipart form with a file field")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	stored, err := h.service.AnalyzeUpload(r.Context(), projectID, header.Filename, data)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, stored)
}

// ListProjectAnalysesHandler lists a project's analyses, newest first.
// GET /api/projects/{projectId}/analyses
func (h *AnalysisHandler) ListProjectAnalysesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	projectID := projectIDFromPath(r)
	analyses, err := h.service.ListByProject(r.Context(), projectID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"project_id": projectID,
		"analyses":   analyses,
		"count":      len(analyses),
	})
}

// GetAnalysisHandler returns one stored analysis.
// GET /api/analyses/{id}
func (h *AnalysisHandler) GetAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	a, err := h.service.Get(r.Context(), analysisIDFromPath(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, a)
}

// DeleteAnalysisHandler removes a stored analysis.
// DELETE /api/analyses/{id}
func (h *AnalysisHandler) DeleteAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	id := analysisIDFromPath(r)
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, "Analysis deleted")
}

// ReportHandler renders a stored analysis as markdown, HTML or PDF.
// GET /api/analyses/{id}/report?format=md|html|pdf
func (h *AnalysisHandler) ReportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := h.service.Get(r.Context(), analysisIDFromPath(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	rep, err := h.reports.Render(a, format)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", rep.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(rep.Content)))
	if format == report.FormatPDF {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rep.Filename))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(rep.Content)
}

// writeServiceError maps service errors to HTTP status codes
func (h *AnalysisHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, interfaces.ErrAnalysisNotFound):
		WriteError(w, http.StatusNotFound, "Analysis not found")
	case errors.Is(err, analysis.ErrInvalidMetrics),
		errors.Is(err, analysis.ErrInvalidRequest),
		errors.Is(err, analysis.ErrProjectRequired),
		errors.Is(err, ingest.ErrEmptyTable),
		errors.Is(err, ingest.ErrUnsupportedFormat),
		errors.Is(err, report.ErrUnknownFormat):
		WriteError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("Analysis request failed")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// projectIDFromPath extracts {projectId} from /api/projects/{projectId}/analyses
func projectIDFromPath(r *http.Request) string {
	parts := PathSegments(r)
	if len(parts) >= 3 && parts[0] == "api" && parts[1] == "projects" {
		return parts[2]
	}
	return ""
}

// analysisIDFromPath extracts {id} from /api/analyses/{id}[/report]
func analysisIDFromPath(r *http.Request) string {
	parts := PathSegments(r)
	if len(parts) >= 3 && parts[0] == "api" && parts[1] == "analyses" {
		return parts[2]
	}
	return ""
}
