package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/academiapadel/backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TournamentRepository struct {
	pool *pgxpool.Pool
}

func NewTournamentRepository(pool *pgxpool.Pool) *TournamentRepository {
	return &TournamentRepository{pool: pool}
}

// List fetches all tournaments, upcoming first.
func (r *TournamentRepository) List(ctx context.Context) ([]*model.Tournament, error) {
	query := `
		SELECT id, name, COALESCE(description, ''), start_date, end_date, registration_deadline,
		       max_teams, current_teams, level, status, COALESCE(prize, '')
		FROM tournaments
		ORDER BY start_date
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []*model.Tournament
	for rows.Next() {
		var t model.Tournament
		err := rows.Scan(
			&t.ID,
			&t.Name,
			&t.Description,
			&t.StartDate,
			&t.EndDate,
			&t.RegistrationDeadline,
			&t.MaxTeams,
			&t.CurrentTeams,
			&t.Level,
			&t.Status,
			&t.Prize,
		)
		if err != nil {
			return nil, fmt.Errorf("scan tournament: %w", err)
		}
		tournaments = append(tournaments, &t)
	}

	return tournaments, nil
}

// GetByID fetches a tournament by ID.
func (r *TournamentRepository) GetByID(ctx context.Context, id string) (*model.Tournament, error) {
	query := `
		SELECT id, name, COALESCE(description, ''), start_date, end_date, registration_deadline,
		       max_teams, current_teams, level, status, COALESCE(prize, '')
		FROM tournaments
		WHERE id = $1
	`

	var t model.Tournament
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.StartDate,
		&t.EndDate,
		&t.RegistrationDeadline,
		&t.MaxTeams,
		&t.CurrentTeams,
		&t.Level,
		&t.Status,
		&t.Prize,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tournament by id: %w", err)
	}

	return &t, nil
}

// RegisterTeam inserts a team and bumps current_teams in one transaction.
// The capacity and deadline guards make the last-spot race single-winner.
func (r *TournamentRepository) RegisterTeam(ctx context.Context, tournamentID, teamName, registeredBy string, now time.Time) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	bump := `
		UPDATE tournaments
		SET current_teams = current_teams + 1
		WHERE id = $1
		  AND status = 'registration'
		  AND registration_deadline > $2
		  AND current_teams < max_teams
	`

	tag, err := tx.Exec(ctx, bump, tournamentID, now)
	if err != nil {
		return false, fmt.Errorf("bump tournament teams: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	insert := `
		INSERT INTO tournament_teams (tournament_id, team_name, registered_by)
		VALUES ($1, $2, $3)
	`
	if _, err := tx.Exec(ctx, insert, tournamentID, teamName, registeredBy); err != nil {
		return false, fmt.Errorf("insert tournament team: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}

	return true, nil
}

// UpdateStatus moves a tournament between statuses with a from-guard so the
// background tick and a concurrent registration close cannot double-apply.
func (r *TournamentRepository) UpdateStatus(ctx context.Context, id string, from, to model.TournamentStatus) (bool, error) {
	query := `
		UPDATE tournaments
		SET status = $3
		WHERE id = $1 AND status = $2
	`

	tag, err := r.pool.Exec(ctx, query, id, from, to)
	if err != nil {
		return false, fmt.Errorf("update tournament status: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ListDueForTransition fetches tournaments whose status no longer matches
// the clock.
func (r *TournamentRepository) ListDueForTransition(ctx context.Context, now time.Time) ([]*model.Tournament, error) {
	query := `
		SELECT id, name, COALESCE(description, ''), start_date, end_date, registration_deadline,
		       max_teams, current_teams, level, status, COALESCE(prize, '')
		FROM tournaments
		WHERE (status = 'registration' AND start_date <= $1)
		   OR (status = 'in_progress' AND end_date < $1)
	`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("list due tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []*model.Tournament
	for rows.Next() {
		var t model.Tournament
		err := rows.Scan(
			&t.ID,
			&t.Name,
			&t.Description,
			&t.StartDate,
			&t.EndDate,
			&t.RegistrationDeadline,
			&t.MaxTeams,
			&t.CurrentTeams,
			&t.Level,
			&t.Status,
			&t.Prize,
		)
		if err != nil {
			return nil, fmt.Errorf("scan tournament: %w", err)
		}
		tournaments = append(tournaments, &t)
	}

	return tournaments, nil
}
