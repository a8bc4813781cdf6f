package service

import (
	"context"
	"fmt"
	"time"

	"github.com/academiapadel/backend/internal/model"
	"go.uber.org/zap"
)

type ClassAdminStore interface {
	Create(ctx context.Context, class *model.Class) error
	ListActive(ctx context.Context) ([]*model.Class, error)
	Deactivate(ctx context.Context, id string) (bool, error)
}

// ClassService manages the recurring class definitions the scheduler
// materializes sessions from.
type ClassService struct {
	store  ClassAdminStore
	logger *zap.Logger
}

func NewClassService(store ClassAdminStore, logger *zap.Logger) *ClassService {
	return &ClassService{store: store, logger: logger}
}

// Create validates and stores a class definition. The next materialization
// pass picks it up.
func (s *ClassService) Create(ctx context.Context, class *model.Class) error {
	if !class.Level.IsValid() {
		return fmt.Errorf("unknown level %q", class.Level)
	}
	if class.DayOfWeek < 0 || class.DayOfWeek > 6 {
		return fmt.Errorf("day_of_week must be 0-6, got %d", class.DayOfWeek)
	}
	if _, err := time.Parse("15:04", class.StartTime); err != nil {
		return fmt.Errorf("invalid start_time %q", class.StartTime)
	}
	if class.MaxStudents <= 0 {
		return fmt.Errorf("max_students must be positive, got %d", class.MaxStudents)
	}

	class.IsActive = true
	if err := s.store.Create(ctx, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}

	s.logger.Info("Class created",
		zap.String("class_id", class.ID),
		zap.String("name", class.Name),
		zap.Int("day_of_week", class.DayOfWeek),
		zap.String("start_time", class.StartTime),
	)

	return nil
}

// List returns the active class definitions.
func (s *ClassService) List(ctx context.Context) ([]*model.Class, error) {
	return s.store.ListActive(ctx)
}

// Deactivate retires a class. Already-materialized sessions keep running;
// no new ones are created.
func (s *ClassService) Deactivate(ctx context.Context, id string) error {
	ok, err := s.store.Deactivate(ctx, id)
	if err != nil {
		return fmt.Errorf("deactivate class: %w", err)
	}
	if !ok {
		return model.ErrNotFound
	}

	s.logger.Info("Class deactivated", zap.String("class_id", id))

	return nil
}
