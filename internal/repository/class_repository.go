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

type ClassRepository struct {
	pool *pgxpool.Pool
}

func NewClassRepository(pool *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{pool: pool}
}

// ListActive fetches all active class definitions.
func (r *ClassRepository) ListActive(ctx context.Context) ([]*model.Class, error) {
	query := `
		SELECT id, name, professor_id, court_id, level, day_of_week, start_time, end_time, max_students, is_active
		FROM classes
		WHERE is_active
		ORDER BY day_of_week, start_time
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active classes: %w", err)
	}
	defer rows.Close()

	var classes []*model.Class
	for rows.Next() {
		var c model.Class
		err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.ProfessorID,
			&c.CourtID,
			&c.Level,
			&c.DayOfWeek,
			&c.StartTime,
			&c.EndTime,
			&c.MaxStudents,
			&c.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("scan class: %w", err)
		}
		classes = append(classes, &c)
	}

	return classes, nil
}

// CreateSessionIfMissing materializes a session for a class and date. The
// unique (class_id, date) constraint makes the materialization pass
// re-runnable: an existing session is left untouched and reported as false.
func (r *ClassRepository) CreateSessionIfMissing(ctx context.Context, classID string, date time.Time) (string, bool, error) {
	query := `
		INSERT INTO class_sessions (class_id, date, status)
		VALUES ($1, $2, 'scheduled')
		ON CONFLICT (class_id, date) DO NOTHING
		RETURNING id
	`

	var id string
	err := r.pool.QueryRow(ctx, query, classID, date).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("create session: %w", err)
	}

	return id, true, nil
}

// GetSessionByID fetches a session with its class definition joined.
func (r *ClassRepository) GetSessionByID(ctx context.Context, id string) (*model.ClassSession, error) {
	query := `
		SELECT s.id, s.class_id, s.date, s.status, COALESCE(s.notes, ''),
		       c.id, c.name, c.professor_id, c.court_id, c.level, c.day_of_week, c.start_time, c.end_time, c.max_students, c.is_active
		FROM class_sessions s
		JOIN classes c ON c.id = s.class_id
		WHERE s.id = $1
	`

	var session model.ClassSession
	var class model.Class
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.ClassID,
		&session.Date,
		&session.Status,
		&session.Notes,
		&class.ID,
		&class.Name,
		&class.ProfessorID,
		&class.CourtID,
		&class.Level,
		&class.DayOfWeek,
		&class.StartTime,
		&class.EndTime,
		&class.MaxStudents,
		&class.IsActive,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session by id: %w", err)
	}

	session.Class = &class
	return &session, nil
}

// UpdateSessionStatus moves a session from one status to another. The guard
// on the current status makes the move a compare-and-swap; a concurrent
// writer leaves zero affected rows.
func (r *ClassRepository) UpdateSessionStatus(ctx context.Context, id string, from, to model.SessionStatus) (bool, error) {
	query := `
		UPDATE class_sessions
		SET status = $3
		WHERE id = $1 AND status = $2
	`

	tag, err := r.pool.Exec(ctx, query, id, from, to)
	if err != nil {
		return false, fmt.Errorf("update session status: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Create inserts a class definition.
func (r *ClassRepository) Create(ctx context.Context, class *model.Class) error {
	query := `
		INSERT INTO classes (name, professor_id, court_id, level, day_of_week, start_time, end_time, max_students, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		class.Name,
		class.ProfessorID,
		class.CourtID,
		class.Level,
		class.DayOfWeek,
		class.StartTime,
		class.EndTime,
		class.MaxStudents,
		class.IsActive,
	).Scan(&class.ID)
	if err != nil {
		return fmt.Errorf("create class: %w", err)
	}

	return nil
}

// Deactivate retires an active class definition.
func (r *ClassRepository) Deactivate(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE classes
		SET is_active = false
		WHERE id = $1 AND is_active
	`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("deactivate class: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
