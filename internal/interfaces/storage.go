package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/kengetal/internal/models"
)

// ErrAnalysisNotFound is returned when an analysis ID does not exist
var ErrAnalysisNotFound = errors.New("analysis not found")

// AnalysisStorage persists analysis runs per project
type AnalysisStorage interface {
	// Save inserts or replaces an analysis by ID
	Save(ctx context.Context, analysis *models.Analysis) error

	// Get returns ErrAnalysisNotFound when the ID is unknown
	Get(ctx context.Context, id string) (*models.Analysis, error)

	// ListByProject returns a project's analyses, newest first
	ListByProject(ctx context.Context, projectID string) ([]*models.Analysis, error)

	// List returns all analyses, newest first
	List(ctx context.Context) ([]*models.Analysis, error)

	// Delete returns ErrAnalysisNotFound when the ID is unknown
	Delete(ctx context.Context, id string) error

	// DeleteOlderThan removes analyses created before cutoff and returns how many were removed
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)

	Close() error
}
