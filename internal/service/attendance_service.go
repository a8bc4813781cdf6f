package service

import (
	"context"
	"fmt"
	"time"

	"github.com/academiapadel/backend/internal/model"
	"go.uber.org/zap"
)

// AttendanceService is the attendance ledger: it validates and records the
// per-student state transitions for class sessions and hands penalty-free
// cancellations to the recovery allocator.
type AttendanceService struct {
	store    AttendanceStore
	classes  ClassStore
	students StudentStore
	recovery *RecoveryService
	window   time.Duration
	loc      *time.Location
	logger   *zap.Logger
}

func NewAttendanceService(
	store AttendanceStore,
	classes ClassStore,
	students StudentStore,
	recovery *RecoveryService,
	window time.Duration,
	loc *time.Location,
	logger *zap.Logger,
) *AttendanceService {
	return &AttendanceService{
		store:    store,
		classes:  classes,
		students: students,
		recovery: recovery,
		window:   window,
		loc:      loc,
		logger:   logger,
	}
}

// Confirm marks a pending attendance as confirmed. Confirmation closes at
// session_start minus the cancellation window.
func (s *AttendanceService) Confirm(ctx context.Context, attendanceID string, now time.Time) error {
	att, start, err := s.detail(ctx, attendanceID)
	if err != nil {
		return err
	}

	if err := model.ValidateConfirm(att.Status, now, start, s.window); err != nil {
		return err
	}

	ok, err := s.store.Confirm(ctx, attendanceID, now)
	if err != nil {
		return fmt.Errorf("confirm attendance: %w", err)
	}
	if !ok {
		return model.ErrInvalidTransition
	}

	s.logger.Info("Attendance confirmed",
		zap.String("attendance_id", attendanceID),
		zap.String("student_id", att.StudentID),
	)

	return nil
}

// Cancel cancels an attendance from pending or confirmed. A cancellation
// outside the window carries no penalty and opens a recovery slot; a late
// one forfeits recovery. The cancel and the slot land in one transaction so
// a storage failure never leaves a cancelled row without its owed recovery.
func (s *AttendanceService) Cancel(ctx context.Context, attendanceID string, now time.Time) error {
	att, start, err := s.detail(ctx, attendanceID)
	if err != nil {
		return err
	}

	penalty, err := model.ValidateCancel(att.Status, now, start, s.window)
	if err != nil {
		return err
	}

	var slot *model.RecoverySlot
	if !penalty {
		slot = s.recovery.prepareSlot(att.Session, att.Student, now)
	}

	ok, err := s.store.Cancel(ctx, attendanceID, now, penalty, slot)
	if err != nil {
		return fmt.Errorf("cancel attendance: %w", err)
	}
	if !ok {
		return model.ErrInvalidTransition
	}

	s.logger.Info("Attendance cancelled",
		zap.String("attendance_id", attendanceID),
		zap.String("student_id", att.StudentID),
		zap.Bool("penalty", penalty),
	)

	if slot != nil {
		s.recovery.announceOpened(ctx, slot, att.Student)
	}

	return nil
}

// MarkOutcome records attended/no_show after the session, staff only. A
// no_show earns no recovery.
func (s *AttendanceService) MarkOutcome(ctx context.Context, attendanceID string, outcome model.AttendanceStatus, caps model.Capabilities, now time.Time) error {
	if !caps.MarkOutcomes {
		return model.ErrNoPermission
	}

	att, start, err := s.detail(ctx, attendanceID)
	if err != nil {
		return err
	}

	if err := model.ValidateOutcome(att.Status, outcome, now, start); err != nil {
		return err
	}

	ok, err := s.store.MarkOutcome(ctx, attendanceID, outcome)
	if err != nil {
		return fmt.Errorf("mark attendance outcome: %w", err)
	}
	if !ok {
		return model.ErrInvalidTransition
	}

	s.logger.Info("Attendance outcome marked",
		zap.String("attendance_id", attendanceID),
		zap.String("outcome", string(outcome)),
	)

	return nil
}

// MaterializeSessions creates sessions and pending attendance rows for every
// active class over the coming days. Safe to re-run: existing sessions and
// rows are left alone.
func (s *AttendanceService) MaterializeSessions(ctx context.Context, from time.Time, days int) error {
	classes, err := s.classes.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active classes: %w", err)
	}

	created := 0
	for day := 0; day < days; day++ {
		date := from.AddDate(0, 0, day)
		for _, class := range classes {
			if int(date.Weekday()) != class.DayOfWeek {
				continue
			}

			sessionID, isNew, err := s.classes.CreateSessionIfMissing(ctx, class.ID, date)
			if err != nil {
				return fmt.Errorf("materialize session: %w", err)
			}
			if !isNew {
				continue
			}

			students, err := s.students.ListBySessionEnrollment(ctx, class.ID)
			if err != nil {
				return fmt.Errorf("list enrolled students: %w", err)
			}

			ids := make([]string, 0, len(students))
			for _, st := range students {
				ids = append(ids, st.ID)
			}
			if err := s.store.InsertPending(ctx, sessionID, ids); err != nil {
				return fmt.Errorf("seed pending attendance: %w", err)
			}
			created++
		}
	}

	if created > 0 {
		s.logger.Info("Sessions materialized", zap.Int("count", created), zap.Int("days", days))
	}

	return nil
}

// HistoryFor lists a student's attendance records, newest session first.
func (s *AttendanceService) HistoryFor(ctx context.Context, studentID string) ([]*model.Attendance, error) {
	return s.store.ListByStudent(ctx, studentID)
}

// Get fetches an attendance with its session and student joined.
func (s *AttendanceService) Get(ctx context.Context, attendanceID string) (*model.Attendance, error) {
	att, err := s.store.GetDetail(ctx, attendanceID)
	if err != nil {
		return nil, fmt.Errorf("get attendance: %w", err)
	}
	if att == nil {
		return nil, model.ErrNotFound
	}
	return att, nil
}

// CancelSession cancels a scheduled session, staff only. The academy called
// it off, so every pending or confirmed student is cancelled penalty-free
// and granted a recovery slot.
func (s *AttendanceService) CancelSession(ctx context.Context, sessionID string, caps model.Capabilities, now time.Time) error {
	if !caps.ManageClasses {
		return model.ErrNoPermission
	}

	session, err := s.classes.GetSessionByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return model.ErrNotFound
	}

	ok, err := s.classes.UpdateSessionStatus(ctx, sessionID, model.SessionStatusScheduled, model.SessionStatusCancelled)
	if err != nil {
		return fmt.Errorf("cancel session: %w", err)
	}
	if !ok {
		return model.ErrInvalidTransition
	}

	atts, err := s.store.ListBySession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("list session attendances: %w", err)
	}

	granted := 0
	for _, att := range atts {
		if att.Status != model.AttendanceStatusPending && att.Status != model.AttendanceStatusConfirmed {
			continue
		}
		if att.Student == nil {
			continue
		}

		slot := s.recovery.prepareSlot(session, att.Student, now)
		ok, err := s.store.Cancel(ctx, att.ID, now, false, slot)
		if err != nil {
			return fmt.Errorf("cancel attendance %s: %w", att.ID, err)
		}
		if ok {
			s.recovery.announceOpened(ctx, slot, att.Student)
			granted++
		}
	}

	s.logger.Info("Session cancelled",
		zap.String("session_id", sessionID),
		zap.Int("recoveries_granted", granted),
	)

	return nil
}

func (s *AttendanceService) detail(ctx context.Context, attendanceID string) (*model.Attendance, time.Time, error) {
	att, err := s.store.GetDetail(ctx, attendanceID)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("get attendance: %w", err)
	}
	if att == nil {
		return nil, time.Time{}, model.ErrNotFound
	}

	start, err := att.Session.StartAt(s.loc)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("session start: %w", err)
	}

	return att, start, nil
}
