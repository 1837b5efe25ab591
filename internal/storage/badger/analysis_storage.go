package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kengetal/internal/interfaces"
	"github.com/ternarybob/kengetal/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// AnalysisStorage implements interfaces.AnalysisStorage on badgerhold
type AnalysisStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// Compile-time assertion
var _ interfaces.AnalysisStorage = (*AnalysisStorage)(nil)

// NewAnalysisStorage creates an analysis storage backed by db
func NewAnalysisStorage(db *BadgerDB, logger arbor.ILogger) *AnalysisStorage {
	return &AnalysisStorage{
		db:     db,
		logger: logger,
	}
}

func (s *AnalysisStorage) Save(ctx context.Context, analysis *models.Analysis) error {
	if analysis == nil || analysis.ID == "" {
		return fmt.Errorf("analysis ID is required")
	}
	if err := s.db.Store().Upsert(analysis.ID, analysis); err != nil {
		return fmt.Errorf("failed to save analysis %s: %w", analysis.ID, err)
	}
	return nil
}

func (s *AnalysisStorage) Get(ctx context.Context, id string) (*models.Analysis, error) {
	var analysis models.Analysis
	if err := s.db.Store().Get(id, &analysis); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, interfaces.ErrAnalysisNotFound
		}
		return nil, fmt.Errorf("failed to get analysis %s: %w", id, err)
	}
	return &analysis, nil
}

func (s *AnalysisStorage) ListByProject(ctx context.Context, projectID string) ([]*models.Analysis, error) {
	var analyses []models.Analysis
	if err := s.db.Store().Find(&analyses, badgerhold.Where("ProjectID").Eq(projectID)); err != nil {
		return nil, fmt.Errorf("failed to list analyses for project %s: %w", projectID, err)
	}
	return newestFirst(analyses), nil
}

func (s *AnalysisStorage) List(ctx context.Context) ([]*models.Analysis, error) {
	var analyses []models.Analysis
	if err := s.db.Store().Find(&analyses, badgerhold.Where("ID").Ne("")); err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return newestFirst(analyses), nil
}

func (s *AnalysisStorage) Delete(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.Analysis{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return interfaces.ErrAnalysisNotFound
		}
		return fmt.Errorf("failed to delete analysis %s: %w", id, err)
	}
	return nil
}

func (s *AnalysisStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	all, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, a := range all {
		if !a.CreatedAt.Before(cutoff) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		if err := s.db.Store().Delete(a.ID, &models.Analysis{}); err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
			return deleted, fmt.Errorf("failed to delete analysis %s: %w", a.ID, err)
		}
		deleted++
	}

	if deleted > 0 {
		s.logger.Debug().Int("deleted", deleted).Str("cutoff", cutoff.Format(time.RFC3339)).Msg("Deleted expired analyses")
	}
	return deleted, nil
}

func (s *AnalysisStorage) Close() error {
	return s.db.Close()
}

// newestFirst converts to pointers sorted by CreatedAt descending, ID as tie-breaker
func newestFirst(analyses []models.Analysis) []*models.Analysis {
	out := make([]*models.Analysis, 0, len(analyses))
	for i := range analyses {
		out = append(out, &analyses[i])
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
