package handlers

import (
	"context"

	"github.com/ternarybob/kengetal/internal/models"
	"github.com/ternarybob/kengetal/internal/services/report"
)

// AnalysisService is the analysis pipeline as used by the HTTP layer
type AnalysisService interface {
	CalculateRatios(metrics *models.FinancialData) (*models.RatioAnalysis, error)
	AnalyzeFinancials(ctx context.Context, metrics *models.FinancialData) (*models.AnalysisResult, error)
	AnalyzeTable(ctx context.Context, req *models.TableAnalysisRequest) (*models.TableAnalysis, error)
	AnalyzeUpload(ctx context.Context, projectID, filename string, data []byte) (*models.Analysis, error)
	Get(ctx context.Context, id string) (*models.Analysis, error)
	ListByProject(ctx context.Context, projectID string) ([]*models.Analysis, error)
	Delete(ctx context.Context, id string) error
}

// ReportRenderer renders a stored analysis in a given format
type ReportRenderer interface {
	Render(a *models.Analysis, format report.Format) (*report.Report, error)
}
