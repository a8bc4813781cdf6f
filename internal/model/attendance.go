package model

import "time"

type AttendanceStatus string

const (
	AttendanceStatusPending   AttendanceStatus = "pending"
	AttendanceStatusConfirmed AttendanceStatus = "confirmed"
	AttendanceStatusCancelled AttendanceStatus = "cancelled"
	AttendanceStatusAttended  AttendanceStatus = "attended"
	AttendanceStatusNoShow    AttendanceStatus = "no_show"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s AttendanceStatus) IsTerminal() bool {
	switch s {
	case AttendanceStatusCancelled, AttendanceStatusAttended, AttendanceStatusNoShow:
		return true
	}
	return false
}

// Attendance tracks one student's state for one class session. One row per
// enrolled student is created when the session is materialized.
type Attendance struct {
	ID        string           `json:"id"`
	SessionID string           `json:"session_id"`
	StudentID string           `json:"student_id"`
	Status    AttendanceStatus `json:"status"`

	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	// CancellationPenalty is true iff the cancellation happened inside the
	// cancellation window. A penalized cancellation earns no recovery.
	CancellationPenalty bool `json:"cancellation_penalty"`

	// Joined for convenience.
	Session *ClassSession `json:"session,omitempty"`
	Student *Student      `json:"student,omitempty"`
}

// CanTransition reports whether the attendance state machine allows
// from → to. The full graph is:
//
//	pending   → confirmed | cancelled
//	confirmed → cancelled | attended | no_show
func CanTransition(from, to AttendanceStatus) bool {
	switch from {
	case AttendanceStatusPending:
		return to == AttendanceStatusConfirmed || to == AttendanceStatusCancelled
	case AttendanceStatusConfirmed:
		return to == AttendanceStatusCancelled ||
			to == AttendanceStatusAttended ||
			to == AttendanceStatusNoShow
	}
	return false
}

// ValidateConfirm checks the rules for confirming attendance: only a pending
// record can be confirmed, and only up until the cancellation window opens.
func ValidateConfirm(status AttendanceStatus, now, sessionStart time.Time, window time.Duration) error {
	if status != AttendanceStatusPending {
		return ErrInvalidTransition
	}
	if now.After(sessionStart.Add(-window)) {
		return ErrDeadlinePassed
	}
	return nil
}

// CancellationPenalty reports whether a cancellation at now is late: closer
// to the session start than the configured window.
func CancellationPenalty(now, sessionStart time.Time, window time.Duration) bool {
	return sessionStart.Sub(now) < window
}

// ValidateCancel checks the transition and computes the penalty flag. A
// penalty-free cancellation makes the student recovery-eligible.
func ValidateCancel(status AttendanceStatus, now, sessionStart time.Time, window time.Duration) (penalty bool, err error) {
	if !CanTransition(status, AttendanceStatusCancelled) {
		return false, ErrInvalidTransition
	}
	return CancellationPenalty(now, sessionStart, window), nil
}

// ValidateOutcome checks the staff-side outcome marking: the session must be
// over and the record confirmed. A no_show earns no recovery; only a timely
// cancellation does.
func ValidateOutcome(status AttendanceStatus, outcome AttendanceStatus, now, sessionStart time.Time) error {
	if outcome != AttendanceStatusAttended && outcome != AttendanceStatusNoShow {
		return ErrInvalidTransition
	}
	if !CanTransition(status, outcome) {
		return ErrInvalidTransition
	}
	if now.Before(sessionStart) {
		return ErrInvalidTransition
	}
	return nil
}
