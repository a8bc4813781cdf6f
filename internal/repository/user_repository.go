package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/academiapadel/backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new account profile.
func (r *UserRepository) Create(ctx context.Context, profile *model.Profile) error {
	query := `
		INSERT INTO profiles (email, full_name, role, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		profile.Email,
		profile.FullName,
		profile.Role,
		profile.Phone,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}

	return nil
}

// GetByID fetches a profile by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	query := `
		SELECT id, email, full_name, role, COALESCE(phone, ''), created_at, updated_at
		FROM profiles
		WHERE id = $1
	`

	var profile model.Profile
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&profile.ID,
		&profile.Email,
		&profile.FullName,
		&profile.Role,
		&profile.Phone,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile by id: %w", err)
	}

	return &profile, nil
}

// GetByEmail fetches a profile by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	query := `
		SELECT id, email, full_name, role, COALESCE(phone, ''), created_at, updated_at
		FROM profiles
		WHERE email = $1
	`

	var profile model.Profile
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&profile.ID,
		&profile.Email,
		&profile.FullName,
		&profile.Role,
		&profile.Phone,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile by email: %w", err)
	}

	return &profile, nil
}
