package service

import (
	"context"
	"fmt"
	"time"

	"github.com/academiapadel/backend/internal/model"
	"github.com/academiapadel/backend/internal/notify"
	"go.uber.org/zap"
)

// RecoveryService is the recovery slot allocator: it turns penalty-free
// cancellations into claimable slots, brokers claims and expires overdue
// slots.
type RecoveryService struct {
	store    RecoveryStore
	students StudentStore
	notifier notify.Notifier
	window   time.Duration
	logger   *zap.Logger
}

func NewRecoveryService(
	store RecoveryStore,
	students StudentStore,
	notifier notify.Notifier,
	window time.Duration,
	logger *zap.Logger,
) *RecoveryService {
	return &RecoveryService{
		store:    store,
		students: students,
		notifier: notifier,
		window:   window,
		logger:   logger,
	}
}

// prepareSlot builds the claimable slot owed for a missed session. The
// caller persists it, either through OpenSlot or inside its own transaction.
func (s *RecoveryService) prepareSlot(session *model.ClassSession, student *model.Student, now time.Time) *model.RecoverySlot {
	return &model.RecoverySlot{
		SessionID:         session.ID,
		OriginalStudentID: student.ID,
		Level:             student.Level,
		ExpiresAt:         now.Add(s.window),
	}
}

// announceOpened publishes and logs a slot that has already been persisted.
func (s *RecoveryService) announceOpened(ctx context.Context, slot *model.RecoverySlot, student *model.Student) {
	s.notifier.Publish(ctx, model.Event{
		Type:   model.EventRecoveryAvailable,
		UserID: student.UserID,
		Payload: map[string]any{
			"slot_id":    slot.ID,
			"level":      slot.Level,
			"expires_at": slot.ExpiresAt,
		},
	})

	s.logger.Info("Recovery slot opened",
		zap.String("slot_id", slot.ID),
		zap.String("student_id", student.ID),
		zap.String("level", string(slot.Level)),
		zap.Time("expires_at", slot.ExpiresAt),
	)
}

// OpenSlot publishes a claimable slot for a missed session. The store
// increments the owner's pending_recoveries in the same transaction.
func (s *RecoveryService) OpenSlot(ctx context.Context, session *model.ClassSession, student *model.Student, now time.Time) (*model.RecoverySlot, error) {
	slot := s.prepareSlot(session, student, now)

	if err := s.store.Open(ctx, slot); err != nil {
		return nil, fmt.Errorf("open recovery slot: %w", err)
	}

	s.announceOpened(ctx, slot, student)

	return slot, nil
}

// OwnedAvailable counts a student's still-claimable slots. It is the stored
// side of the pending_recoveries counter and must always agree with it.
func (s *RecoveryService) OwnedAvailable(ctx context.Context, studentID string) (int, error) {
	count, err := s.store.CountAvailableByStudent(ctx, studentID)
	if err != nil {
		return 0, fmt.Errorf("count available slots: %w", err)
	}
	return count, nil
}

// ListEligibleSlots returns the claimable slots matching the student's
// level. Matching is equality only.
func (s *RecoveryService) ListEligibleSlots(ctx context.Context, student *model.Student, now time.Time) ([]*model.RecoverySlot, error) {
	return s.store.ListAvailableByLevel(ctx, student.Level, now)
}

// Claim assigns an available slot to the claiming student. Two concurrent
// claims on the same slot resolve to exactly one winner; the loser gets
// ErrSlotUnavailable (or ErrDeadlineExpired if the sweep won instead).
func (s *RecoveryService) Claim(ctx context.Context, slotID string, claimant *model.Student, now time.Time) error {
	slot, err := s.store.GetByID(ctx, slotID)
	if err != nil {
		return fmt.Errorf("get recovery slot: %w", err)
	}
	if slot == nil {
		return model.ErrNotFound
	}

	if err := model.ValidateClaim(slot, claimant, now); err != nil {
		return err
	}

	ok, err := s.store.Claim(ctx, slotID, claimant.ID, now)
	if err != nil {
		return fmt.Errorf("claim recovery slot: %w", err)
	}
	if !ok {
		// Lost the race. Re-read to report what happened.
		current, err := s.store.GetByID(ctx, slotID)
		if err == nil && current != nil && current.Status == model.RecoveryStatusExpired {
			return model.ErrDeadlineExpired
		}
		return model.ErrSlotUnavailable
	}

	if owner, err := s.students.GetByID(ctx, slot.OriginalStudentID); err == nil && owner != nil {
		s.notifier.Publish(ctx, model.Event{
			Type:   model.EventRecoveryClaimed,
			UserID: owner.UserID,
			Payload: map[string]any{
				"slot_id":    slotID,
				"claimed_by": claimant.ID,
			},
		})
	}

	s.logger.Info("Recovery slot claimed",
		zap.String("slot_id", slotID),
		zap.String("claimed_by", claimant.ID),
	)

	return nil
}

// SweepExpired transitions every overdue available slot to expired. It is
// idempotent; a failed run is retried on the scheduler's next tick.
func (s *RecoveryService) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.store.ExpireDue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("expire due slots: %w", err)
	}

	for _, slot := range expired {
		if owner, err := s.students.GetByID(ctx, slot.OriginalStudentID); err == nil && owner != nil {
			s.notifier.Publish(ctx, model.Event{
				Type:   model.EventRecoveryExpired,
				UserID: owner.UserID,
				Payload: map[string]any{
					"slot_id": slot.ID,
				},
			})
		}
	}

	if len(expired) > 0 {
		s.logger.Info("Expired recovery slots swept", zap.Int("count", len(expired)))
	}

	return len(expired), nil
}
