package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/academiapadel/backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

// Create inserts a booking for a (court, date, time) triple. A partial
// unique index over non-rejected bookings turns a concurrent double-book
// into a silent conflict; ok=false means the triple was already taken.
func (r *BookingRepository) Create(ctx context.Context, booking *model.CourtBooking) (bool, error) {
	query := `
		INSERT INTO court_bookings
			(court_id, user_id, date, start_time, end_time, verification_status, is_open_match, current_players, max_players)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (court_id, date, start_time) WHERE verification_status <> 'rejected' DO NOTHING
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		booking.CourtID,
		booking.UserID,
		booking.Date,
		booking.StartTime,
		booking.EndTime,
		booking.VerificationStatus,
		booking.IsOpenMatch,
		booking.CurrentPlayers,
		booking.MaxPlayers,
	).Scan(&booking.ID, &booking.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("create booking: %w", err)
	}

	return true, nil
}

// GetByID fetches a booking by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*model.CourtBooking, error) {
	query := `
		SELECT id, court_id, user_id, date, start_time, end_time, COALESCE(screenshot_url, ''),
		       verification_status, verification_data, is_open_match, current_players, max_players, created_at
		FROM court_bookings
		WHERE id = $1
	`

	booking, err := scanBooking(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}

	return booking, nil
}

// ListActiveByDate fetches the bookings occupying grid cells on a date.
// Rejected bookings no longer occupy a cell and are skipped.
func (r *BookingRepository) ListActiveByDate(ctx context.Context, date time.Time) ([]*model.CourtBooking, error) {
	query := `
		SELECT id, court_id, user_id, date, start_time, end_time, COALESCE(screenshot_url, ''),
		       verification_status, verification_data, is_open_match, current_players, max_players, created_at
		FROM court_bookings
		WHERE date = $1 AND verification_status <> 'rejected'
		ORDER BY court_id, start_time
	`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("list bookings by date: %w", err)
	}
	defer rows.Close()

	var bookings []*model.CourtBooking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

// ListOpenMatches fetches joinable open matches from a date onward.
func (r *BookingRepository) ListOpenMatches(ctx context.Context, from time.Time) ([]*model.CourtBooking, error) {
	query := `
		SELECT id, court_id, user_id, date, start_time, end_time, COALESCE(screenshot_url, ''),
		       verification_status, verification_data, is_open_match, current_players, max_players, created_at
		FROM court_bookings
		WHERE date >= $1
		  AND is_open_match
		  AND verification_status = 'verified'
		  AND current_players < max_players
		ORDER BY date, start_time
	`

	rows, err := r.pool.Query(ctx, query, from)
	if err != nil {
		return nil, fmt.Errorf("list open matches: %w", err)
	}
	defer rows.Close()

	var bookings []*model.CourtBooking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

// Join claims one open-match seat. The capacity guard in the WHERE clause
// decides the last-seat race: exactly one of two concurrent joins matches.
func (r *BookingRepository) Join(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE court_bookings
		SET current_players = current_players + 1
		WHERE id = $1
		  AND is_open_match
		  AND verification_status = 'verified'
		  AND current_players < max_players
	`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("join open match: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// SetScreenshot stores the uploaded confirmation image reference and resets
// the booking to pending verification. Rejected is terminal: the slot was
// released and may have been rebooked, so a rejected row must never re-enter
// the active unique index. ok=false reports the guard miss.
func (r *BookingRepository) SetScreenshot(ctx context.Context, id, screenshotURL string) (bool, error) {
	query := `
		UPDATE court_bookings
		SET screenshot_url = $2, verification_status = 'pending'
		WHERE id = $1 AND verification_status <> 'rejected'
	`

	tag, err := r.pool.Exec(ctx, query, id, screenshotURL)
	if err != nil {
		return false, fmt.Errorf("set booking screenshot: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ApplyVerdict records the gateway's verdict for a booking still pending
// verification. A verdict that lost a race with another writer is dropped.
func (r *BookingRepository) ApplyVerdict(ctx context.Context, id string, status model.VerificationStatus, data *model.VerificationData) (bool, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return false, fmt.Errorf("marshal verification data: %w", err)
	}

	query := `
		UPDATE court_bookings
		SET verification_status = $2, verification_data = $3
		WHERE id = $1 AND verification_status = 'pending'
	`

	tag, err := r.pool.Exec(ctx, query, id, status, payload)
	if err != nil {
		return false, fmt.Errorf("apply verification verdict: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*model.CourtBooking, error) {
	var booking model.CourtBooking
	var data []byte
	err := row.Scan(
		&booking.ID,
		&booking.CourtID,
		&booking.UserID,
		&booking.Date,
		&booking.StartTime,
		&booking.EndTime,
		&booking.ScreenshotURL,
		&booking.VerificationStatus,
		&data,
		&booking.IsOpenMatch,
		&booking.CurrentPlayers,
		&booking.MaxPlayers,
		&booking.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(data) > 0 {
		var vd model.VerificationData
		if err := json.Unmarshal(data, &vd); err != nil {
			return nil, fmt.Errorf("unmarshal verification data: %w", err)
		}
		booking.VerificationData = &vd
	}

	return &booking, nil
}
