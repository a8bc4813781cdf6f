package service

import (
	"context"
	"time"

	"github.com/academiapadel/backend/internal/model"
)

// The services accept narrow store interfaces instead of the concrete pgx
// repositories so the check-then-update semantics can be exercised against
// in-memory fakes. internal/repository satisfies all of them.

type AttendanceStore interface {
	GetDetail(ctx context.Context, id string) (*model.Attendance, error)
	Confirm(ctx context.Context, id string, now time.Time) (bool, error)
	// Cancel flips the row and, when openSlot is non-nil, persists the
	// recovery slot in the same transaction. Either both land or neither.
	Cancel(ctx context.Context, id string, now time.Time, penalty bool, openSlot *model.RecoverySlot) (bool, error)
	MarkOutcome(ctx context.Context, id string, outcome model.AttendanceStatus) (bool, error)
	InsertPending(ctx context.Context, sessionID string, studentIDs []string) error
	ListByStudent(ctx context.Context, studentID string) ([]*model.Attendance, error)
	ListBySession(ctx context.Context, sessionID string) ([]*model.Attendance, error)
}

type ClassStore interface {
	ListActive(ctx context.Context) ([]*model.Class, error)
	CreateSessionIfMissing(ctx context.Context, classID string, date time.Time) (string, bool, error)
	GetSessionByID(ctx context.Context, id string) (*model.ClassSession, error)
	UpdateSessionStatus(ctx context.Context, id string, from, to model.SessionStatus) (bool, error)
}

type StudentStore interface {
	GetByID(ctx context.Context, id string) (*model.Student, error)
	ListBySessionEnrollment(ctx context.Context, classID string) ([]*model.Student, error)
}

type RecoveryStore interface {
	Open(ctx context.Context, slot *model.RecoverySlot) error
	GetByID(ctx context.Context, id string) (*model.RecoverySlot, error)
	ListAvailableByLevel(ctx context.Context, level model.PlayerLevel, now time.Time) ([]*model.RecoverySlot, error)
	Claim(ctx context.Context, slotID, claimantID string, now time.Time) (bool, error)
	ExpireDue(ctx context.Context, now time.Time) ([]*model.RecoverySlot, error)
	CountAvailableByStudent(ctx context.Context, studentID string) (int, error)
}

type CourtStore interface {
	ListActive(ctx context.Context) ([]*model.Court, error)
	GetByID(ctx context.Context, id string) (*model.Court, error)
}

type BookingStore interface {
	Create(ctx context.Context, booking *model.CourtBooking) (bool, error)
	GetByID(ctx context.Context, id string) (*model.CourtBooking, error)
	ListActiveByDate(ctx context.Context, date time.Time) ([]*model.CourtBooking, error)
	ListOpenMatches(ctx context.Context, from time.Time) ([]*model.CourtBooking, error)
	Join(ctx context.Context, id string) (bool, error)
	SetScreenshot(ctx context.Context, id, screenshotURL string) (bool, error)
	ApplyVerdict(ctx context.Context, id string, status model.VerificationStatus, data *model.VerificationData) (bool, error)
}

type TournamentStore interface {
	List(ctx context.Context) ([]*model.Tournament, error)
	GetByID(ctx context.Context, id string) (*model.Tournament, error)
	RegisterTeam(ctx context.Context, tournamentID, teamName, registeredBy string, now time.Time) (bool, error)
	UpdateStatus(ctx context.Context, id string, from, to model.TournamentStatus) (bool, error)
	ListDueForTransition(ctx context.Context, now time.Time) ([]*model.Tournament, error)
}
