package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/academiapadel/backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CourtRepository struct {
	pool *pgxpool.Pool
}

func NewCourtRepository(pool *pgxpool.Pool) *CourtRepository {
	return &CourtRepository{pool: pool}
}

// ListActive fetches the active courts in display order.
func (r *CourtRepository) ListActive(ctx context.Context) ([]*model.Court, error) {
	query := `
		SELECT id, name, COALESCE(description, ''), is_indoor, is_active
		FROM courts
		WHERE is_active
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active courts: %w", err)
	}
	defer rows.Close()

	var courts []*model.Court
	for rows.Next() {
		var court model.Court
		err := rows.Scan(
			&court.ID,
			&court.Name,
			&court.Description,
			&court.IsIndoor,
			&court.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("scan court: %w", err)
		}
		courts = append(courts, &court)
	}

	return courts, nil
}

// GetByID fetches a court by ID.
func (r *CourtRepository) GetByID(ctx context.Context, id string) (*model.Court, error) {
	query := `
		SELECT id, name, COALESCE(description, ''), is_indoor, is_active
		FROM courts
		WHERE id = $1
	`

	var court model.Court
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&court.ID,
		&court.Name,
		&court.Description,
		&court.IsIndoor,
		&court.IsActive,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get court by id: %w", err)
	}

	return &court, nil
}
