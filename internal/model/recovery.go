package model

import "time"

type RecoveryStatus string

const (
	RecoveryStatusAvailable RecoveryStatus = "available"
	RecoveryStatusClaimed   RecoveryStatus = "claimed"
	RecoveryStatusExpired   RecoveryStatus = "expired"
)

// RecoverySlot is a claimable class seat created by a timely cancellation.
// Once claimed or expired the slot is immutable.
type RecoverySlot struct {
	ID                string      `json:"id"`
	SessionID         string      `json:"session_id"`
	OriginalStudentID string      `json:"original_student_id"`
	ClaimedByID       *string     `json:"claimed_by_student_id,omitempty"`
	Level             PlayerLevel `json:"level"`
	Status            RecoveryStatus `json:"status"`
	CreatedAt         time.Time   `json:"created_at"`
	ExpiresAt         time.Time   `json:"expires_at"`
}

// Expired reports whether the slot's claim window has closed.
func (s *RecoverySlot) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// ValidateClaim checks a claim attempt against the slot's current state.
// Level matching is equality only.
func ValidateClaim(slot *RecoverySlot, claimant *Student, now time.Time) error {
	switch slot.Status {
	case RecoveryStatusAvailable:
	case RecoveryStatusExpired:
		return ErrDeadlineExpired
	default:
		return ErrSlotUnavailable
	}
	if slot.Expired(now) {
		return ErrDeadlineExpired
	}
	if claimant.Level != slot.Level {
		return ErrLevelMismatch
	}
	return nil
}
