package service

import (
	"context"
	"fmt"
	"time"

	"github.com/academiapadel/backend/internal/model"
	"github.com/academiapadel/backend/internal/notify"
	"go.uber.org/zap"
)

// TournamentService manages tournament registration and the time-driven
// status transitions.
type TournamentService struct {
	store    TournamentStore
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewTournamentService(store TournamentStore, notifier notify.Notifier, logger *zap.Logger) *TournamentService {
	return &TournamentService{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// List returns all tournaments, upcoming first.
func (s *TournamentService) List(ctx context.Context) ([]*model.Tournament, error) {
	return s.store.List(ctx)
}

// Register adds a team. Registration closes at the deadline or when the
// tournament is full; the capacity guard in the store decides the last-spot
// race.
func (s *TournamentService) Register(ctx context.Context, tournamentID, teamName, userID string, now time.Time) error {
	t, err := s.store.GetByID(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("get tournament: %w", err)
	}
	if t == nil {
		return model.ErrNotFound
	}

	if !t.RegistrationOpen(now) {
		return model.ErrRegistrationClosed
	}

	ok, err := s.store.RegisterTeam(ctx, tournamentID, teamName, userID, now)
	if err != nil {
		return fmt.Errorf("register team: %w", err)
	}
	if !ok {
		return model.ErrRegistrationClosed
	}

	s.logger.Info("Tournament team registered",
		zap.String("tournament_id", tournamentID),
		zap.String("team", teamName),
	)

	// The winning registration of the last spot announces the close.
	if t.CurrentTeams+1 >= t.MaxTeams {
		s.notifier.Publish(ctx, model.Event{
			Type:   model.EventTournamentClosed,
			UserID: userID,
			Payload: map[string]any{
				"tournament_id": tournamentID,
				"reason":        "capacity",
			},
		})
	}

	return nil
}

// AdvanceStatuses applies the clock-driven transitions: registration starts
// play on start_date, play completes after end_date. Guarded updates keep a
// double tick harmless.
func (s *TournamentService) AdvanceStatuses(ctx context.Context, now time.Time) error {
	due, err := s.store.ListDueForTransition(ctx, now)
	if err != nil {
		return fmt.Errorf("list due tournaments: %w", err)
	}

	for _, t := range due {
		next := t.NextStatus(now)
		if next == t.Status {
			continue
		}

		ok, err := s.store.UpdateStatus(ctx, t.ID, t.Status, next)
		if err != nil {
			return fmt.Errorf("advance tournament %s: %w", t.ID, err)
		}
		if ok {
			s.logger.Info("Tournament status advanced",
				zap.String("tournament_id", t.ID),
				zap.String("from", string(t.Status)),
				zap.String("to", string(next)),
			)
		}
	}

	return nil
}
