// Package retention purges stored analyses that are older than the configured maximum age.
package retention

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kengetal/internal/interfaces"
)

// DefaultSchedule runs the purge daily at 03:00
const DefaultSchedule = "0 3 * * *"

// Scheduler handles periodic analysis purges
type Scheduler struct {
	storage interfaces.AnalysisStorage
	maxAge  time.Duration
	cron    *cron.Cron
	logger  arbor.ILogger
	now     func() time.Time
}

// NewScheduler creates a retention scheduler. A non-positive maxAge disables purging.
func NewScheduler(storage interfaces.AnalysisStorage, maxAge time.Duration, logger arbor.ILogger) *Scheduler {
	return &Scheduler{
		storage: storage,
		maxAge:  maxAge,
		cron:    cron.New(),
		logger:  logger,
		now:     time.Now,
	}
}

// Enabled reports whether a maximum age is configured
func (s *Scheduler) Enabled() bool {
	return s.maxAge > 0
}

// Start begins the scheduled purge
func (s *Scheduler) Start(schedule string) error {
	if !s.Enabled() {
		s.logger.Info().Msg("Analysis retention disabled (max_age not set)")
		return nil
	}
	if schedule == "" {
		schedule = DefaultSchedule
	}

	_, err := s.cron.AddFunc(schedule, func() {
		s.runPurge()
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info().
		Str("schedule", schedule).
		Dur("max_age", s.maxAge).
		Msg("Analysis retention scheduler started")

	return nil
}

// Stop stops the scheduler and waits for a running purge to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Analysis retention scheduler stopped")
}

// RunNow triggers an immediate purge in the background
func (s *Scheduler) RunNow() {
	s.logger.Info().Msg("Triggering immediate retention purge")
	go s.runPurge()
}

// Purge deletes analyses created before now minus maxAge and returns how many were removed
func (s *Scheduler) Purge(ctx context.Context) (int, error) {
	if !s.Enabled() {
		return 0, nil
	}
	return s.storage.DeleteOlderThan(ctx, s.now().Add(-s.maxAge))
}

func (s *Scheduler) runPurge() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	deleted, err := s.Purge(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("Retention purge failed")
		return
	}

	s.logger.Info().
		Int("deleted", deleted).
		Dur("duration", time.Since(start)).
		Msg("Retention purge completed")
}
