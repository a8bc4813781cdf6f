package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/academiapadel/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type attendanceFixture struct {
	svc      *AttendanceService
	store    *memAttendance
	recovery *memRecovery
	students *memStudents
	classes  *memClasses
}

func newAttendanceFixture(t *testing.T) *attendanceFixture {
	t.Helper()
	students := newMemStudents()
	recoveryStore := newMemRecovery(students)
	recovery := NewRecoveryService(recoveryStore, students, &captureNotifier{}, 30*24*time.Hour, zap.NewNop())
	store := newMemAttendance(recoveryStore)
	classes := newMemClasses()
	svc := NewAttendanceService(store, classes, students, recovery, 24*time.Hour, time.UTC, zap.NewNop())
	return &attendanceFixture{svc: svc, store: store, recovery: recoveryStore, students: students, classes: classes}
}

// seedAttendance wires an attendance row with a 17:00 session on the given
// date for an intermedio student.
func (f *attendanceFixture) seedAttendance(id string, status model.AttendanceStatus, date time.Time) {
	student := &model.Student{ID: "stu-" + id, UserID: "user-" + id, Level: model.LevelIntermedio}
	f.students.add(student)
	f.store.add(&model.Attendance{
		ID:        id,
		SessionID: "sess-" + id,
		StudentID: student.ID,
		Status:    status,
		Session: &model.ClassSession{
			ID:      "sess-" + id,
			ClassID: "class-1",
			Date:    date,
			Status:  model.SessionStatusScheduled,
			Class:   &model.Class{ID: "class-1", StartTime: "17:00", Level: model.LevelIntermedio},
		},
		Student: student,
	})
}

func TestConfirmWithinDeadline(t *testing.T) {
	f := newAttendanceFixture(t)
	ctx := context.Background()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	f.seedAttendance("a1", model.AttendanceStatusPending, date)

	// Session starts 2026-03-10 17:00; two days out is fine.
	now := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)
	require.NoError(t, f.svc.Confirm(ctx, "a1", now))

	att, _ := f.store.GetDetail(ctx, "a1")
	assert.Equal(t, model.AttendanceStatusConfirmed, att.Status)
	require.NotNil(t, att.ConfirmedAt)
}

func TestConfirmPastDeadline(t *testing.T) {
	f := newAttendanceFixture(t)
	ctx := context.Background()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	f.seedAttendance("a1", model.AttendanceStatusPending, date)

	// 17:01 the day before is inside the 24h window.
	now := time.Date(2026, 3, 9, 17, 1, 0, 0, time.UTC)
	err := f.svc.Confirm(ctx, "a1", now)
	assert.ErrorIs(t, err, model.ErrDeadlinePassed)
}

func TestTimelyCancellationOpensRecovery(t *testing.T) {
	f := newAttendanceFixture(t)
	ctx := context.Background()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	f.seedAttendance("a1", model.AttendanceStatusConfirmed, date)

	// 16:59 the day before: outside the window, no penalty.
	now := time.Date(2026, 3, 9, 16, 59, 0, 0, time.UTC)
	require.NoError(t, f.svc.Cancel(ctx, "a1", now))

	att, _ := f.store.GetDetail(ctx, "a1")
	assert.Equal(t, model.AttendanceStatusCancelled, att.Status)
	assert.False(t, att.CancellationPenalty)

	// A recovery slot at the student's level was opened.
	assert.Equal(t, 1, f.recovery.availableCount("stu-a1"))
	assert.Equal(t, 1, f.students.pending("stu-a1"))

	slots, err := f.recovery.ListAvailableByLevel(ctx, model.LevelIntermedio, now)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, now.AddDate(0, 0, 30), slots[0].ExpiresAt)
}

func TestLateCancellationForfeitsRecovery(t *testing.T) {
	f := newAttendanceFixture(t)
	ctx := context.Background()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	f.seedAttendance("a1", model.AttendanceStatusConfirmed, date)

	// 17:01 the day before: inside the window, penalty applies.
	now := time.Date(2026, 3, 9, 17, 1, 0, 0, time.UTC)
	require.NoError(t, f.svc.Cancel(ctx, "a1", now))

	att, _ := f.store.GetDetail(ctx, "a1")
	assert.Equal(t, model.AttendanceStatusCancelled, att.Status)
	assert.True(t, att.CancellationPenalty)

	assert.Equal(t, 0, f.recovery.availableCount("stu-a1"))
	assert.Equal(t, 0, f.students.pending("stu-a1"))
}

func TestCancelKeptIntactWhenRecoveryStoreFails(t *testing.T) {
	f := newAttendanceFixture(t)
	ctx := context.Background()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	f.seedAttendance("a1", model.AttendanceStatusConfirmed, date)

	// Penalty-free cancel whose recovery slot cannot be stored: the whole
	// cancellation must fail so the student can retry.
	f.recovery.failOpen = errors.New("storage down")
	now := time.Date(2026, 3, 9, 16, 59, 0, 0, time.UTC)
	err := f.svc.Cancel(ctx, "a1", now)
	require.Error(t, err)

	att, _ := f.store.GetDetail(ctx, "a1")
	assert.Equal(t, model.AttendanceStatusConfirmed, att.Status)
	assert.Equal(t, 0, f.students.pending("stu-a1"))

	// Once storage recovers, the retry lands with its slot.
	f.recovery.failOpen = nil
	require.NoError(t, f.svc.Cancel(ctx, "a1", now))

	att, _ = f.store.GetDetail(ctx, "a1")
	assert.Equal(t, model.AttendanceStatusCancelled, att.Status)
	assert.Equal(t, 1, f.recovery.availableCount("stu-a1"))
	assert.Equal(t, 1, f.students.pending("stu-a1"))
}

func TestCancelFromTerminalStatus(t *testing.T) {
	f := newAttendanceFixture(t)
	ctx := context.Background()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	f.seedAttendance("a1", model.AttendanceStatusAttended, date)

	err := f.svc.Cancel(ctx, "a1", date)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestMarkOutcomeRequiresStaff(t *testing.T) {
	f := newAttendanceFixture(t)
	ctx := context.Background()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	f.seedAttendance("a1", model.AttendanceStatusConfirmed, date)

	after := time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC)

	err := f.svc.MarkOutcome(ctx, "a1", model.AttendanceStatusNoShow, model.ResolveCapabilities(model.RoleAdulto), after)
	assert.ErrorIs(t, err, model.ErrNoPermission)

	require.NoError(t, f.svc.MarkOutcome(ctx, "a1", model.AttendanceStatusNoShow, model.ResolveCapabilities(model.RoleProfesor), after))

	att, _ := f.store.GetDetail(ctx, "a1")
	assert.Equal(t, model.AttendanceStatusNoShow, att.Status)

	// A no_show earns no recovery.
	assert.Equal(t, 0, f.recovery.availableCount("stu-a1"))
}

func TestMarkOutcomeBeforeSession(t *testing.T) {
	f := newAttendanceFixture(t)
	ctx := context.Background()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	f.seedAttendance("a1", model.AttendanceStatusConfirmed, date)

	before := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	err := f.svc.MarkOutcome(ctx, "a1", model.AttendanceStatusAttended, model.ResolveCapabilities(model.RoleAdmin), before)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestMaterializeSessions(t *testing.T) {
	f := newAttendanceFixture(t)
	ctx := context.Background()

	f.classes.classes = []*model.Class{
		{ID: "class-1", DayOfWeek: 2, StartTime: "17:00", IsActive: true}, // Tuesdays
	}
	f.students.add(&model.Student{ID: "stu-1", UserID: "u1", Level: model.LevelBasico})
	f.students.add(&model.Student{ID: "stu-2", UserID: "u2", Level: model.LevelBasico})
	f.students.enrolled["class-1"] = []string{"stu-1", "stu-2"}

	// 2026-03-09 is a Monday; one Tuesday falls in the next 7 days.
	from := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.svc.MaterializeSessions(ctx, from, 7))

	session, err := f.classes.GetSessionByID(ctx, "class-1|2026-03-10")
	require.NoError(t, err)
	require.NotNil(t, session)

	att, err := f.store.GetDetail(ctx, "class-1|2026-03-10|stu-1")
	require.NoError(t, err)
	require.NotNil(t, att)
	assert.Equal(t, model.AttendanceStatusPending, att.Status)

	// Re-running changes nothing.
	require.NoError(t, f.svc.MaterializeSessions(ctx, from, 7))
}

func TestCancelSessionGrantsRecoveries(t *testing.T) {
	f := newAttendanceFixture(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

	f.classes.sessions["sess-1"] = &model.ClassSession{
		ID:      "sess-1",
		ClassID: "class-1",
		Date:    time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Status:  model.SessionStatusScheduled,
	}

	seed := func(idx string, status model.AttendanceStatus) {
		st := &model.Student{ID: "stu-" + idx, UserID: "user-" + idx, Level: model.LevelBasico}
		f.students.add(st)
		f.store.add(&model.Attendance{
			ID:        "att-" + idx,
			SessionID: "sess-1",
			StudentID: st.ID,
			Status:    status,
			Student:   st,
		})
	}
	seed("p", model.AttendanceStatusPending)
	seed("c", model.AttendanceStatusConfirmed)
	seed("x", model.AttendanceStatusCancelled)

	err := f.svc.CancelSession(ctx, "sess-1", model.ResolveCapabilities(model.RoleAdulto), now)
	assert.ErrorIs(t, err, model.ErrNoPermission)

	require.NoError(t, f.svc.CancelSession(ctx, "sess-1", model.ResolveCapabilities(model.RoleProfesor), now))

	session, _ := f.classes.GetSessionByID(ctx, "sess-1")
	assert.Equal(t, model.SessionStatusCancelled, session.Status)

	// Pending and confirmed students are cancelled penalty-free and each
	// gets a recovery slot; the student who had already cancelled does not.
	for _, idx := range []string{"p", "c"} {
		att, _ := f.store.GetDetail(ctx, "att-"+idx)
		assert.Equal(t, model.AttendanceStatusCancelled, att.Status)
		assert.False(t, att.CancellationPenalty)
		assert.Equal(t, 1, f.students.pending("stu-"+idx))
	}
	assert.Equal(t, 0, f.students.pending("stu-x"))

	err = f.svc.CancelSession(ctx, "sess-1", model.ResolveCapabilities(model.RoleProfesor), now)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestCancelSessionUnknown(t *testing.T) {
	f := newAttendanceFixture(t)
	err := f.svc.CancelSession(context.Background(), "ghost", model.ResolveCapabilities(model.RoleAdmin), time.Now())
	assert.ErrorIs(t, err, model.ErrNotFound)
}
