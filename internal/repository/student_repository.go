package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/academiapadel/backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StudentRepository struct {
	pool *pgxpool.Pool
}

func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, student *model.Student) error {
	query := `
		INSERT INTO students (user_id, full_name, level, is_minor, birth_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, pending_recoveries, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		student.UserID,
		student.FullName,
		student.Level,
		student.IsMinor,
		student.BirthDate,
		student.Notes,
	).Scan(&student.ID, &student.PendingRecoveries, &student.CreatedAt)

	if err != nil {
		return fmt.Errorf("create student: %w", err)
	}

	return nil
}

// GetByID fetches a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*model.Student, error) {
	query := `
		SELECT id, user_id, full_name, level, is_minor, birth_date, COALESCE(notes, ''), pending_recoveries, created_at
		FROM students
		WHERE id = $1
	`

	var student model.Student
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&student.ID,
		&student.UserID,
		&student.FullName,
		&student.Level,
		&student.IsMinor,
		&student.BirthDate,
		&student.Notes,
		&student.PendingRecoveries,
		&student.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get student by id: %w", err)
	}

	return &student, nil
}

// GetByUserID fetches all students owned by an account (a tutor's minors, or
// an adulto's own record).
func (r *StudentRepository) GetByUserID(ctx context.Context, userID string) ([]*model.Student, error) {
	query := `
		SELECT id, user_id, full_name, level, is_minor, birth_date, COALESCE(notes, ''), pending_recoveries, created_at
		FROM students
		WHERE user_id = $1
		ORDER BY full_name
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get students by user: %w", err)
	}
	defer rows.Close()

	var students []*model.Student
	for rows.Next() {
		var student model.Student
		err := rows.Scan(
			&student.ID,
			&student.UserID,
			&student.FullName,
			&student.Level,
			&student.IsMinor,
			&student.BirthDate,
			&student.Notes,
			&student.PendingRecoveries,
			&student.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, &student)
	}

	return students, nil
}

// ListBySessionEnrollment fetches the students enrolled in a session's class.
func (r *StudentRepository) ListBySessionEnrollment(ctx context.Context, classID string) ([]*model.Student, error) {
	query := `
		SELECT s.id, s.user_id, s.full_name, s.level, s.is_minor, s.birth_date, COALESCE(s.notes, ''), s.pending_recoveries, s.created_at
		FROM students s
		JOIN class_enrollments e ON e.student_id = s.id
		WHERE e.class_id = $1
		ORDER BY s.full_name
	`

	rows, err := r.pool.Query(ctx, query, classID)
	if err != nil {
		return nil, fmt.Errorf("get enrolled students: %w", err)
	}
	defer rows.Close()

	var students []*model.Student
	for rows.Next() {
		var student model.Student
		err := rows.Scan(
			&student.ID,
			&student.UserID,
			&student.FullName,
			&student.Level,
			&student.IsMinor,
			&student.BirthDate,
			&student.Notes,
			&student.PendingRecoveries,
			&student.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, &student)
	}

	return students, nil
}
