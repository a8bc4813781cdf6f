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

type AttendanceRepository struct {
	pool *pgxpool.Pool
}

func NewAttendanceRepository(pool *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// InsertPending creates the initial pending rows for a freshly materialized
// session, one per enrolled student. Existing rows are kept.
func (r *AttendanceRepository) InsertPending(ctx context.Context, sessionID string, studentIDs []string) error {
	query := `
		INSERT INTO attendances (session_id, student_id, status)
		VALUES ($1, $2, 'pending')
		ON CONFLICT (session_id, student_id) DO NOTHING
	`

	for _, studentID := range studentIDs {
		if _, err := r.pool.Exec(ctx, query, sessionID, studentID); err != nil {
			return fmt.Errorf("insert pending attendance: %w", err)
		}
	}

	return nil
}

// GetDetail fetches an attendance row with its session, class and student
// joined. The service layer needs all three to evaluate deadlines and levels.
func (r *AttendanceRepository) GetDetail(ctx context.Context, id string) (*model.Attendance, error) {
	query := `
		SELECT a.id, a.session_id, a.student_id, a.status, a.confirmed_at, a.cancelled_at, a.cancellation_penalty,
		       s.id, s.class_id, s.date, s.status, COALESCE(s.notes, ''),
		       c.id, c.name, c.professor_id, c.court_id, c.level, c.day_of_week, c.start_time, c.end_time, c.max_students, c.is_active,
		       st.id, st.user_id, st.full_name, st.level, st.is_minor, st.pending_recoveries
		FROM attendances a
		JOIN class_sessions s ON s.id = a.session_id
		JOIN classes c ON c.id = s.class_id
		JOIN students st ON st.id = a.student_id
		WHERE a.id = $1
	`

	var att model.Attendance
	var session model.ClassSession
	var class model.Class
	var student model.Student
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&att.ID,
		&att.SessionID,
		&att.StudentID,
		&att.Status,
		&att.ConfirmedAt,
		&att.CancelledAt,
		&att.CancellationPenalty,
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
		&student.ID,
		&student.UserID,
		&student.FullName,
		&student.Level,
		&student.IsMinor,
		&student.PendingRecoveries,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get attendance detail: %w", err)
	}

	session.Class = &class
	att.Session = &session
	att.Student = &student
	return &att, nil
}

// Confirm moves pending → confirmed. The status guard makes the transition a
// compare-and-swap: a concurrent writer leaves zero affected rows.
func (r *AttendanceRepository) Confirm(ctx context.Context, id string, now time.Time) (bool, error) {
	query := `
		UPDATE attendances
		SET status = 'confirmed', confirmed_at = $2
		WHERE id = $1 AND status = 'pending'
	`

	tag, err := r.pool.Exec(ctx, query, id, now)
	if err != nil {
		return false, fmt.Errorf("confirm attendance: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Cancel moves pending|confirmed → cancelled with the computed penalty flag.
// When openSlot is non-nil the recovery slot and the owner's counter bump
// share the cancel's transaction: a failed insert rolls the cancel back, so
// an owed recovery is never lost to a half-applied cancellation.
func (r *AttendanceRepository) Cancel(ctx context.Context, id string, now time.Time, penalty bool, openSlot *model.RecoverySlot) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	cancel := `
		UPDATE attendances
		SET status = 'cancelled', cancelled_at = $2, cancellation_penalty = $3
		WHERE id = $1 AND status IN ('pending', 'confirmed')
	`

	tag, err := tx.Exec(ctx, cancel, id, now, penalty)
	if err != nil {
		return false, fmt.Errorf("cancel attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if openSlot != nil {
		insert := `
			INSERT INTO recovery_slots (session_id, original_student_id, level, status, expires_at)
			VALUES ($1, $2, $3, 'available', $4)
			RETURNING id, created_at
		`
		err = tx.QueryRow(ctx, insert,
			openSlot.SessionID,
			openSlot.OriginalStudentID,
			openSlot.Level,
			openSlot.ExpiresAt,
		).Scan(&openSlot.ID, &openSlot.CreatedAt)
		if err != nil {
			return false, fmt.Errorf("insert recovery slot: %w", err)
		}
		openSlot.Status = model.RecoveryStatusAvailable

		bump := `
			UPDATE students
			SET pending_recoveries = pending_recoveries + 1
			WHERE id = $1
		`
		if _, err := tx.Exec(ctx, bump, openSlot.OriginalStudentID); err != nil {
			return false, fmt.Errorf("increment pending recoveries: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}

	return true, nil
}

// MarkOutcome moves confirmed → attended|no_show.
func (r *AttendanceRepository) MarkOutcome(ctx context.Context, id string, outcome model.AttendanceStatus) (bool, error) {
	query := `
		UPDATE attendances
		SET status = $2
		WHERE id = $1 AND status = 'confirmed'
	`

	tag, err := r.pool.Exec(ctx, query, id, outcome)
	if err != nil {
		return false, fmt.Errorf("mark attendance outcome: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ListByStudent fetches a student's attendance history, newest session first.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID string) ([]*model.Attendance, error) {
	query := `
		SELECT a.id, a.session_id, a.student_id, a.status, a.confirmed_at, a.cancelled_at, a.cancellation_penalty
		FROM attendances a
		JOIN class_sessions s ON s.id = a.session_id
		WHERE a.student_id = $1
		ORDER BY s.date DESC
	`

	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("list attendances by student: %w", err)
	}
	defer rows.Close()

	var out []*model.Attendance
	for rows.Next() {
		var att model.Attendance
		err := rows.Scan(
			&att.ID,
			&att.SessionID,
			&att.StudentID,
			&att.Status,
			&att.ConfirmedAt,
			&att.CancelledAt,
			&att.CancellationPenalty,
		)
		if err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		out = append(out, &att)
	}

	return out, nil
}

// ListBySession fetches a session's attendance rows with each student
// joined, so a session-wide cancellation can grant recoveries at the right
// levels.
func (r *AttendanceRepository) ListBySession(ctx context.Context, sessionID string) ([]*model.Attendance, error) {
	query := `
		SELECT a.id, a.session_id, a.student_id, a.status, a.confirmed_at, a.cancelled_at, a.cancellation_penalty,
		       st.id, st.user_id, st.full_name, st.level, st.is_minor, st.pending_recoveries
		FROM attendances a
		JOIN students st ON st.id = a.student_id
		WHERE a.session_id = $1
	`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list attendances by session: %w", err)
	}
	defer rows.Close()

	var out []*model.Attendance
	for rows.Next() {
		var att model.Attendance
		var student model.Student
		err := rows.Scan(
			&att.ID,
			&att.SessionID,
			&att.StudentID,
			&att.Status,
			&att.ConfirmedAt,
			&att.CancelledAt,
			&att.CancellationPenalty,
			&student.ID,
			&student.UserID,
			&student.FullName,
			&student.Level,
			&student.IsMinor,
			&student.PendingRecoveries,
		)
		if err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		att.Student = &student
		out = append(out, &att)
	}

	return out, nil
}
