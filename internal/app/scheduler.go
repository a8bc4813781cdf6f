package app

import (
	"context"
	"time"

	"github.com/academiapadel/backend/internal/service"
	"go.uber.org/zap"
)

// Horizon of materialized class sessions.
const sessionHorizonDays = 14

// Scheduler runs the clock-driven maintenance tasks: expiring recovery
// slots, advancing tournament statuses and materializing upcoming class
// sessions.
type Scheduler struct {
	recoveries    *service.RecoveryService
	attendances   *service.AttendanceService
	tournaments   *service.TournamentService
	sweepInterval time.Duration
	logger        *zap.Logger
	stopChan      chan struct{}
}

func NewScheduler(
	recoveries *service.RecoveryService,
	attendances *service.AttendanceService,
	tournaments *service.TournamentService,
	sweepInterval time.Duration,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		recoveries:    recoveries,
		attendances:   attendances,
		tournaments:   tournaments,
		sweepInterval: sweepInterval,
		logger:        logger,
		stopChan:      make(chan struct{}),
	}
}

// Start launches the background tasks.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler",
		zap.Duration("sweep_interval", s.sweepInterval),
	)

	go s.runSweepTask(ctx)
	go s.runSessionTask(ctx)
}

// Stop halts the background tasks.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// runSweepTask periodically expires due recovery slots and advances
// tournament statuses. Both operations are guarded, so an extra tick is
// harmless.
func (s *Scheduler) runSweepTask(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			s.logger.Info("Sweep task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Sweep task cancelled")
			return
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	now := time.Now()

	expired, err := s.recoveries.SweepExpired(ctx, now)
	if err != nil {
		s.logger.Error("Failed to sweep recovery slots", zap.Error(err))
	} else if expired > 0 {
		s.logger.Info("Recovery slots expired", zap.Int("count", expired))
	}

	if err := s.tournaments.AdvanceStatuses(ctx, now); err != nil {
		s.logger.Error("Failed to advance tournament statuses", zap.Error(err))
	}
}

// runSessionTask materializes class sessions and their pending attendance
// rows once a day, keeping the horizon filled.
func (s *Scheduler) runSessionTask(ctx context.Context) {
	s.materialize(ctx)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.materialize(ctx)
		case <-s.stopChan:
			s.logger.Info("Session task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Session task cancelled")
			return
		}
	}
}

func (s *Scheduler) materialize(ctx context.Context) {
	if err := s.attendances.MaterializeSessions(ctx, time.Now(), sessionHorizonDays); err != nil {
		s.logger.Error("Failed to materialize sessions", zap.Error(err))
		return
	}
	s.logger.Info("Class sessions materialized", zap.Int("horizon_days", sessionHorizonDays))
}
