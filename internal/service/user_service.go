package service

import (
	"context"
	"fmt"

	"github.com/academiapadel/backend/internal/model"
	"go.uber.org/zap"
)

type UserStore interface {
	Create(ctx context.Context, profile *model.Profile) error
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)
}

type StudentWriter interface {
	Create(ctx context.Context, student *model.Student) error
	GetByUserID(ctx context.Context, userID string) ([]*model.Student, error)
	GetByID(ctx context.Context, id string) (*model.Student, error)
}

// UserService manages accounts and the students they own.
type UserService struct {
	users    UserStore
	students StudentWriter
	logger   *zap.Logger
}

func NewUserService(users UserStore, students StudentWriter, logger *zap.Logger) *UserService {
	return &UserService{
		users:    users,
		students: students,
		logger:   logger,
	}
}

// Register creates an account. An adulto account gets its own student record
// so it can appear in attendance and recovery flows directly.
func (s *UserService) Register(ctx context.Context, profile *model.Profile, level model.PlayerLevel) error {
	if !profile.Role.IsValid() {
		return fmt.Errorf("unknown role %q", profile.Role)
	}

	existing, err := s.users.GetByEmail(ctx, profile.Email)
	if err != nil {
		return fmt.Errorf("check existing profile: %w", err)
	}
	if existing != nil {
		return fmt.Errorf("email %s already registered", profile.Email)
	}

	if err := s.users.Create(ctx, profile); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}

	if profile.Role == model.RoleAdulto {
		student := &model.Student{
			UserID:   profile.ID,
			FullName: profile.FullName,
			Level:    level,
			IsMinor:  false,
		}
		if err := s.students.Create(ctx, student); err != nil {
			return fmt.Errorf("create self student: %w", err)
		}
	}

	s.logger.Info("Profile registered",
		zap.String("profile_id", profile.ID),
		zap.String("role", string(profile.Role)),
	)

	return nil
}

// GetProfile fetches an account by ID.
func (s *UserService) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	profile, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if profile == nil {
		return nil, model.ErrNotFound
	}
	return profile, nil
}

// AddStudent attaches a student to a tutor account.
func (s *UserService) AddStudent(ctx context.Context, student *model.Student) error {
	if !student.Level.IsValid() {
		return fmt.Errorf("unknown level %q", student.Level)
	}

	if err := s.students.Create(ctx, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}

	s.logger.Info("Student added",
		zap.String("student_id", student.ID),
		zap.String("user_id", student.UserID),
	)

	return nil
}

// StudentsOf lists the students an account owns.
func (s *UserService) StudentsOf(ctx context.Context, userID string) ([]*model.Student, error) {
	return s.students.GetByUserID(ctx, userID)
}

// StudentForUser resolves a student and checks the caller may act on it.
// Staff capabilities bypass the ownership check.
func (s *UserService) StudentForUser(ctx context.Context, studentID, userID string, caps model.Capabilities) (*model.Student, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if student == nil {
		return nil, model.ErrNotFound
	}
	if !caps.ViewAll && student.UserID != userID {
		return nil, model.ErrNoPermission
	}
	return student, nil
}
