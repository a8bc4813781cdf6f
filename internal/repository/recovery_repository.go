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

type RecoveryRepository struct {
	pool *pgxpool.Pool
}

func NewRecoveryRepository(pool *pgxpool.Pool) *RecoveryRepository {
	return &RecoveryRepository{pool: pool}
}

// Open creates an available slot and increments the owner's
// pending_recoveries in the same transaction, keeping the derived counter in
// step with the slot count.
func (r *RecoveryRepository) Open(ctx context.Context, slot *model.RecoverySlot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insert := `
		INSERT INTO recovery_slots (session_id, original_student_id, level, status, expires_at)
		VALUES ($1, $2, $3, 'available', $4)
		RETURNING id, created_at
	`

	err = tx.QueryRow(ctx, insert,
		slot.SessionID,
		slot.OriginalStudentID,
		slot.Level,
		slot.ExpiresAt,
	).Scan(&slot.ID, &slot.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert recovery slot: %w", err)
	}
	slot.Status = model.RecoveryStatusAvailable

	bump := `
		UPDATE students
		SET pending_recoveries = pending_recoveries + 1
		WHERE id = $1
	`
	if _, err := tx.Exec(ctx, bump, slot.OriginalStudentID); err != nil {
		return fmt.Errorf("increment pending recoveries: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID fetches a slot by ID.
func (r *RecoveryRepository) GetByID(ctx context.Context, id string) (*model.RecoverySlot, error) {
	query := `
		SELECT id, session_id, original_student_id, claimed_by_student_id, level, status, created_at, expires_at
		FROM recovery_slots
		WHERE id = $1
	`

	var slot model.RecoverySlot
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&slot.ID,
		&slot.SessionID,
		&slot.OriginalStudentID,
		&slot.ClaimedByID,
		&slot.Level,
		&slot.Status,
		&slot.CreatedAt,
		&slot.ExpiresAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recovery slot by id: %w", err)
	}

	return &slot, nil
}

// ListAvailableByLevel fetches the claimable slots for a level, soonest
// expiry first. Slots past expires_at are filtered out even before the sweep
// flips them.
func (r *RecoveryRepository) ListAvailableByLevel(ctx context.Context, level model.PlayerLevel, now time.Time) ([]*model.RecoverySlot, error) {
	query := `
		SELECT id, session_id, original_student_id, claimed_by_student_id, level, status, created_at, expires_at
		FROM recovery_slots
		WHERE level = $1 AND status = 'available' AND expires_at > $2
		ORDER BY expires_at
	`

	rows, err := r.pool.Query(ctx, query, level, now)
	if err != nil {
		return nil, fmt.Errorf("list available recovery slots: %w", err)
	}
	defer rows.Close()

	var slots []*model.RecoverySlot
	for rows.Next() {
		var slot model.RecoverySlot
		err := rows.Scan(
			&slot.ID,
			&slot.SessionID,
			&slot.OriginalStudentID,
			&slot.ClaimedByID,
			&slot.Level,
			&slot.Status,
			&slot.CreatedAt,
			&slot.ExpiresAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan recovery slot: %w", err)
		}
		slots = append(slots, &slot)
	}

	return slots, nil
}

// Claim atomically flips an available, unexpired slot to claimed and
// decrements the original student's counter. The status guard means two
// concurrent claims resolve to one winner; the loser sees ok=false and
// re-reads the slot to report why.
func (r *RecoveryRepository) Claim(ctx context.Context, slotID, claimantID string, now time.Time) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	claim := `
		UPDATE recovery_slots
		SET status = 'claimed', claimed_by_student_id = $2
		WHERE id = $1 AND status = 'available' AND expires_at > $3
		RETURNING original_student_id
	`

	var ownerID string
	err = tx.QueryRow(ctx, claim, slotID, claimantID, now).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("claim recovery slot: %w", err)
	}

	drop := `
		UPDATE students
		SET pending_recoveries = pending_recoveries - 1
		WHERE id = $1 AND pending_recoveries > 0
	`
	if _, err := tx.Exec(ctx, drop, ownerID); err != nil {
		return false, fmt.Errorf("decrement pending recoveries: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}

	return true, nil
}

// ExpireDue flips every overdue available slot to expired and pairs each
// flip with a counter decrement inside one transaction. Running it twice is
// a no-op the second time: already-expired slots no longer match the guard.
func (r *RecoveryRepository) ExpireDue(ctx context.Context, now time.Time) ([]*model.RecoverySlot, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	expire := `
		UPDATE recovery_slots
		SET status = 'expired'
		WHERE status = 'available' AND expires_at <= $1
		RETURNING id, session_id, original_student_id, level, created_at, expires_at
	`

	rows, err := tx.Query(ctx, expire, now)
	if err != nil {
		return nil, fmt.Errorf("expire recovery slots: %w", err)
	}

	var expired []*model.RecoverySlot
	for rows.Next() {
		var slot model.RecoverySlot
		err := rows.Scan(
			&slot.ID,
			&slot.SessionID,
			&slot.OriginalStudentID,
			&slot.Level,
			&slot.CreatedAt,
			&slot.ExpiresAt,
		)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan expired slot: %w", err)
		}
		slot.Status = model.RecoveryStatusExpired
		expired = append(expired, &slot)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expired slots: %w", err)
	}

	drop := `
		UPDATE students
		SET pending_recoveries = pending_recoveries - 1
		WHERE id = $1 AND pending_recoveries > 0
	`
	for _, slot := range expired {
		if _, err := tx.Exec(ctx, drop, slot.OriginalStudentID); err != nil {
			return nil, fmt.Errorf("decrement pending recoveries: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return expired, nil
}

// CountAvailableByStudent counts a student's slots still in available state.
func (r *RecoveryRepository) CountAvailableByStudent(ctx context.Context, studentID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM recovery_slots
		WHERE original_student_id = $1 AND status = 'available'
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, studentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count available slots: %w", err)
	}

	return count, nil
}
