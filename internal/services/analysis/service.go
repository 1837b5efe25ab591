// Package analysis runs the ratio pipeline: extraction, ratio calculation,
// explanations and the overall health summary.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kengetal/internal/common"
	"github.com/ternarybob/kengetal/internal/finance"
	"github.com/ternarybob/kengetal/internal/ingest"
	"github.com/ternarybob/kengetal/internal/interfaces"
	"github.com/ternarybob/kengetal/internal/models"
)

// SourceManual marks analyses submitted as a table rather than an uploaded file
const SourceManual = "manual"

var (
	// ErrInvalidMetrics is returned when no financial data is supplied
	ErrInvalidMetrics = errors.New("financial metrics are required")
	// ErrInvalidRequest wraps request validation failures
	ErrInvalidRequest = errors.New("invalid analysis request")
	// ErrProjectRequired is returned when a stored analysis has no project
	ErrProjectRequired = errors.New("project ID is required")
)

// Explainer produces one explanation per ratio
type Explainer interface {
	ExplainRatios(ctx context.Context, analysis models.RatioAnalysis) []models.RatioExplanation
}

// Service runs analyses and manages stored results
type Service struct {
	explainer Explainer
	storage   interfaces.AnalysisStorage
	publisher interfaces.EventPublisher
	logger    arbor.ILogger
	now       func() time.Time
}

// NewService creates the analysis service. storage and publisher may be nil
// for offline use, in which case nothing is persisted or published.
func NewService(explainer Explainer, storage interfaces.AnalysisStorage, publisher interfaces.EventPublisher, logger arbor.ILogger) *Service {
	return &Service{
		explainer: explainer,
		storage:   storage,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// CalculateRatios computes the ratio analysis without explanations
func (s *Service) CalculateRatios(metrics *models.FinancialData) (*models.RatioAnalysis, error) {
	if metrics == nil {
		return nil, ErrInvalidMetrics
	}
	analysis := finance.CalculateAllRatios(*metrics)
	return &analysis, nil
}

// AnalyzeFinancials computes ratios, explanations and the health summary.
// Explanation failures are absorbed into fallback texts and never returned.
func (s *Service) AnalyzeFinancials(ctx context.Context, metrics *models.FinancialData) (*models.AnalysisResult, error) {
	ratios, err := s.CalculateRatios(metrics)
	if err != nil {
		return nil, err
	}

	explanations := s.explainer.ExplainRatios(ctx, *ratios)
	summary := finance.Summarize(*ratios)

	s.logger.Debug().
		Int("total_ratios", ratios.Summary.TotalRatios).
		Int("healthy_ratios", ratios.Summary.HealthyRatios).
		Str("overall_health", string(summary.OverallHealth)).
		Msg("Financial analysis completed")

	return &models.AnalysisResult{
		Ratios:       *ratios,
		Explanations: explanations,
		Summary:      summary,
	}, nil
}

// AnalyzeTable matches columns, extracts the figures and runs AnalyzeFinancials.
// When req.ProjectID is set the analysis is stored and published.
func (s *Service) AnalyzeTable(ctx context.Context, req *models.TableAnalysisRequest) (*models.TableAnalysis, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	data, mapping := finance.Extract(req.Headers, req.Rows)
	s.logger.Debug().
		Int("headers", len(req.Headers)).
		Int("rows", len(req.Rows)).
		Int("matched_fields", len(mapping)).
		Msg("Columns matched")

	result, err := s.AnalyzeFinancials(ctx, &data)
	if err != nil {
		return nil, err
	}

	out := &models.TableAnalysis{
		Mapping: mapping,
		Data:    data,
		Result:  result,
	}

	if strings.TrimSpace(req.ProjectID) == "" {
		return out, nil
	}

	source := req.Source
	if source == "" {
		source = SourceManual
	}
	stored, err := s.store(ctx, req.ProjectID, source, out)
	if err != nil {
		return nil, err
	}
	out.AnalysisID = stored.ID
	return out, nil
}

// AnalyzeUpload parses an uploaded file, analyses it and stores the result for projectID.
func (s *Service) AnalyzeUpload(ctx context.Context, projectID, filename string, data []byte) (*models.Analysis, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, ErrProjectRequired
	}

	table, err := ingest.Parse(filename, data)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	s.logger.Info().
		Str("project_id", projectID).
		Str("file", filename).
		Int("rows", len(table.Rows)).
		Msg("Analysing uploaded file")

	dataOut, mapping := finance.Extract(table.Headers, table.Rows)
	result, err := s.AnalyzeFinancials(ctx, &dataOut)
	if err != nil {
		return nil, err
	}

	return s.store(ctx, projectID, filename, &models.TableAnalysis{
		Mapping: mapping,
		Data:    dataOut,
		Result:  result,
	})
}

func (s *Service) store(ctx context.Context, projectID, source string, table *models.TableAnalysis) (*models.Analysis, error) {
	analysis := &models.Analysis{
		ID:        common.NewAnalysisID(),
		ProjectID: projectID,
		Source:    source,
		Mapping:   table.Mapping,
		Data:      table.Data,
		Result:    *table.Result,
		CreatedAt: s.now().UTC(),
	}

	if s.storage != nil {
		if err := s.storage.Save(ctx, analysis); err != nil {
			return nil, fmt.Errorf("failed to store analysis: %w", err)
		}
	}

	s.logger.Info().
		Str("analysis_id", analysis.ID).
		Str("project_id", projectID).
		Str("overall_health", string(analysis.Result.Summary.OverallHealth)).
		Msg("Analysis stored")

	s.publish(interfaces.EventAnalysisCompleted, analysis)
	return analysis, nil
}

func (s *Service) publish(eventType string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	event := interfaces.Event{Type: eventType, Payload: payload}
	common.SafeGo(s.logger, "publish-"+eventType, func() {
		s.publisher.Publish(event)
	})
}

// Get returns a stored analysis
func (s *Service) Get(ctx context.Context, id string) (*models.Analysis, error) {
	if s.storage == nil {
		return nil, interfaces.ErrAnalysisNotFound
	}
	return s.storage.Get(ctx, id)
}

// ListByProject returns a project's analyses, newest first
func (s *Service) ListByProject(ctx context.Context, projectID string) ([]*models.Analysis, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, ErrProjectRequired
	}
	if s.storage == nil {
		return []*models.Analysis{}, nil
	}
	return s.storage.ListByProject(ctx, projectID)
}

// Delete removes a stored analysis and publishes analysis.deleted
func (s *Service) Delete(ctx context.Context, id string) error {
	if s.storage == nil {
		return interfaces.ErrAnalysisNotFound
	}
	if err := s.storage.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("analysis_id", id).Msg("Analysis deleted")
	s.publish(interfaces.EventAnalysisDeleted, map[string]string{"id": id})
	return nil
}
