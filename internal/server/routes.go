package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route (analysis events)
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Ratio analysis
	mux.HandleFunc("/api/ratios", s.app.AnalysisHandler.RatiosHandler)              // POST - ratios only
	mux.HandleFunc("/api/analyze", s.app.AnalysisHandler.AnalyzeHandler)            // POST - ratios + explanations
	mux.HandleFunc("/api/analyze/table", s.app.AnalysisHandler.AnalyzeTableHandler) // POST - parsed table

	// API routes - Stored analyses
	mux.HandleFunc("/api/projects/", s.handleProjectRoutes)  // GET/POST /{projectId}/analyses
	mux.HandleFunc("/api/analyses/", s.handleAnalysisRoutes) // GET/DELETE /{id}, GET /{id}/report

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched routes
	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleProjectRoutes routes /api/projects/{projectId}/analyses
func (s *Server) handleProjectRoutes(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 4 || parts[2] == "" || parts[3] != "analyses" {
		s.app.APIHandler.NotFoundHandler(w, r)
		return
	}

	RouteResourceCollection(w, r,
		s.app.AnalysisHandler.ListProjectAnalysesHandler,
		s.app.AnalysisHandler.UploadHandler,
	)
}

// handleAnalysisRoutes routes /api/analyses/{id} and /api/analyses/{id}/report
func (s *Server) handleAnalysisRoutes(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case len(parts) == 3 && parts[2] != "":
		RouteResourceItem(w, r,
			s.app.AnalysisHandler.GetAnalysisHandler,
			nil,
			s.app.AnalysisHandler.DeleteAnalysisHandler,
		)
	case len(parts) == 4 && parts[3] == "report":
		RouteByMethod(w, r, MethodRouter{
			http.MethodGet: s.app.AnalysisHandler.ReportHandler,
		})
	default:
		s.app.APIHandler.NotFoundHandler(w, r)
	}
}
