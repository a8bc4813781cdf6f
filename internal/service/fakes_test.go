package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/academiapadel/backend/internal/model"
	"github.com/academiapadel/backend/internal/verify"
)

// In-memory stores mirroring the repositories' guarded-update semantics:
// every conditional transition is checked and applied under one lock, the
// same single-winner behavior the SQL status guards give.

type memStudents struct {
	mu       sync.Mutex
	byID     map[string]*model.Student
	enrolled map[string][]string // class id → student ids
}

func newMemStudents() *memStudents {
	return &memStudents{
		byID:     map[string]*model.Student{},
		enrolled: map[string][]string{},
	}
}

func (m *memStudents) add(s *model.Student) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[s.ID] = s
}

func (m *memStudents) pending(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id].PendingRecoveries
}

func (m *memStudents) GetByID(_ context.Context, id string) (*model.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memStudents) ListBySessionEnrollment(_ context.Context, classID string) ([]*model.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Student
	for _, id := range m.enrolled[classID] {
		cp := *m.byID[id]
		out = append(out, &cp)
	}
	return out, nil
}

type memRecovery struct {
	mu       sync.Mutex
	seq      int
	slots    map[string]*model.RecoverySlot
	students *memStudents
	failOpen error // scripted storage failure for slot creation
}

func newMemRecovery(students *memStudents) *memRecovery {
	return &memRecovery{slots: map[string]*model.RecoverySlot{}, students: students}
}

func (m *memRecovery) Open(_ context.Context, slot *model.RecoverySlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOpen != nil {
		return m.failOpen
	}
	m.seq++
	slot.ID = fmt.Sprintf("slot-%d", m.seq)
	slot.Status = model.RecoveryStatusAvailable
	slot.CreatedAt = time.Now()
	cp := *slot
	m.slots[slot.ID] = &cp
	m.students.byID[slot.OriginalStudentID].PendingRecoveries++
	return nil
}

func (m *memRecovery) GetByID(_ context.Context, id string) (*model.RecoverySlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memRecovery) ListAvailableByLevel(_ context.Context, level model.PlayerLevel, now time.Time) ([]*model.RecoverySlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.RecoverySlot
	for _, s := range m.slots {
		if s.Status == model.RecoveryStatusAvailable && s.Level == level && now.Before(s.ExpiresAt) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRecovery) Claim(_ context.Context, slotID, claimantID string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[slotID]
	if !ok || s.Status != model.RecoveryStatusAvailable || !now.Before(s.ExpiresAt) {
		return false, nil
	}
	s.Status = model.RecoveryStatusClaimed
	s.ClaimedByID = &claimantID
	if owner := m.students.byID[s.OriginalStudentID]; owner.PendingRecoveries > 0 {
		owner.PendingRecoveries--
	}
	return true, nil
}

func (m *memRecovery) ExpireDue(_ context.Context, now time.Time) ([]*model.RecoverySlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var expired []*model.RecoverySlot
	for _, s := range m.slots {
		if s.Status == model.RecoveryStatusAvailable && !s.ExpiresAt.After(now) {
			s.Status = model.RecoveryStatusExpired
			if owner := m.students.byID[s.OriginalStudentID]; owner.PendingRecoveries > 0 {
				owner.PendingRecoveries--
			}
			cp := *s
			expired = append(expired, &cp)
		}
	}
	return expired, nil
}

func (m *memRecovery) CountAvailableByStudent(_ context.Context, studentID string) (int, error) {
	return m.availableCount(studentID), nil
}

func (m *memRecovery) availableCount(studentID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.slots {
		if s.OriginalStudentID == studentID && s.Status == model.RecoveryStatusAvailable {
			n++
		}
	}
	return n
}

type memAttendance struct {
	mu       sync.Mutex
	rows     map[string]*model.Attendance
	recovery *memRecovery
}

func newMemAttendance(recovery *memRecovery) *memAttendance {
	return &memAttendance{rows: map[string]*model.Attendance{}, recovery: recovery}
}

func (m *memAttendance) add(a *model.Attendance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[a.ID] = a
}

func (m *memAttendance) GetDetail(_ context.Context, id string) (*model.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (m *memAttendance) Confirm(_ context.Context, id string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok || a.Status != model.AttendanceStatusPending {
		return false, nil
	}
	a.Status = model.AttendanceStatusConfirmed
	a.ConfirmedAt = &now
	return true, nil
}

// Cancel mirrors the repository's transaction: the slot insert happens
// before the row flips, and a slot failure leaves the row untouched.
func (m *memAttendance) Cancel(ctx context.Context, id string, now time.Time, penalty bool, openSlot *model.RecoverySlot) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok || (a.Status != model.AttendanceStatusPending && a.Status != model.AttendanceStatusConfirmed) {
		return false, nil
	}
	if openSlot != nil {
		if err := m.recovery.Open(ctx, openSlot); err != nil {
			return false, err
		}
	}
	a.Status = model.AttendanceStatusCancelled
	a.CancelledAt = &now
	a.CancellationPenalty = penalty
	return true, nil
}

func (m *memAttendance) MarkOutcome(_ context.Context, id string, outcome model.AttendanceStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok || a.Status != model.AttendanceStatusConfirmed {
		return false, nil
	}
	a.Status = outcome
	return true, nil
}

func (m *memAttendance) ListByStudent(_ context.Context, studentID string) ([]*model.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Attendance
	for _, a := range m.rows {
		if a.StudentID == studentID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memAttendance) ListBySession(_ context.Context, sessionID string) ([]*model.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Attendance
	for _, a := range m.rows {
		if a.SessionID == sessionID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memAttendance) InsertPending(_ context.Context, sessionID string, studentIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sid := range studentIDs {
		id := sessionID + "|" + sid
		if _, ok := m.rows[id]; ok {
			continue
		}
		m.rows[id] = &model.Attendance{
			ID:        id,
			SessionID: sessionID,
			StudentID: sid,
			Status:    model.AttendanceStatusPending,
		}
	}
	return nil
}

type memClasses struct {
	mu       sync.Mutex
	classes  []*model.Class
	sessions map[string]*model.ClassSession
}

func newMemClasses() *memClasses {
	return &memClasses{sessions: map[string]*model.ClassSession{}}
}

func (m *memClasses) ListActive(context.Context) ([]*model.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.Class(nil), m.classes...), nil
}

func (m *memClasses) CreateSessionIfMissing(_ context.Context, classID string, date time.Time) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := classID + "|" + date.Format("2006-01-02")
	if _, ok := m.sessions[id]; ok {
		return "", false, nil
	}
	m.sessions[id] = &model.ClassSession{
		ID:      id,
		ClassID: classID,
		Date:    date,
		Status:  model.SessionStatusScheduled,
	}
	return id, true, nil
}

func (m *memClasses) GetSessionByID(_ context.Context, id string) (*model.ClassSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memClasses) UpdateSessionStatus(_ context.Context, id string, from, to model.SessionStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.Status != from {
		return false, nil
	}
	s.Status = to
	return true, nil
}

type memCourts struct {
	courts []*model.Court
}

func (m *memCourts) ListActive(context.Context) ([]*model.Court, error) {
	return append([]*model.Court(nil), m.courts...), nil
}

func (m *memCourts) GetByID(_ context.Context, id string) (*model.Court, error) {
	for _, c := range m.courts {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

type memBookings struct {
	mu   sync.Mutex
	seq  int
	rows map[string]*model.CourtBooking
}

func newMemBookings() *memBookings {
	return &memBookings{rows: map[string]*model.CourtBooking{}}
}

func (m *memBookings) Create(_ context.Context, booking *model.CourtBooking) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.rows {
		if b.CourtID == booking.CourtID &&
			b.Date.Equal(booking.Date) &&
			b.StartTime == booking.StartTime &&
			b.VerificationStatus != model.VerificationRejected {
			return false, nil
		}
	}
	m.seq++
	booking.ID = fmt.Sprintf("booking-%d", m.seq)
	booking.CreatedAt = time.Now()
	cp := *booking
	m.rows[booking.ID] = &cp
	return true, nil
}

func (m *memBookings) GetByID(_ context.Context, id string) (*model.CourtBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (m *memBookings) ListActiveByDate(_ context.Context, date time.Time) ([]*model.CourtBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.CourtBooking
	for _, b := range m.rows {
		if b.Date.Equal(date) && b.VerificationStatus != model.VerificationRejected {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memBookings) ListOpenMatches(_ context.Context, from time.Time) ([]*model.CourtBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.CourtBooking
	for _, b := range m.rows {
		if !b.Date.Before(from) &&
			b.IsOpenMatch &&
			b.VerificationStatus == model.VerificationVerified &&
			b.CurrentPlayers < b.MaxPlayers {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memBookings) Join(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok || !b.IsOpenMatch || b.VerificationStatus != model.VerificationVerified || b.CurrentPlayers >= b.MaxPlayers {
		return false, nil
	}
	b.CurrentPlayers++
	return true, nil
}

func (m *memBookings) SetScreenshot(_ context.Context, id, screenshotURL string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok || b.VerificationStatus == model.VerificationRejected {
		return false, nil
	}
	b.ScreenshotURL = screenshotURL
	b.VerificationStatus = model.VerificationPending
	return true, nil
}

func (m *memBookings) ApplyVerdict(_ context.Context, id string, status model.VerificationStatus, data *model.VerificationData) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok || b.VerificationStatus != model.VerificationPending {
		return false, nil
	}
	b.VerificationStatus = status
	b.VerificationData = data
	return true, nil
}

func (m *memBookings) setVerified(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[id].VerificationStatus = model.VerificationVerified
}

type memTournaments struct {
	mu   sync.Mutex
	rows map[string]*model.Tournament
}

func newMemTournaments() *memTournaments {
	return &memTournaments{rows: map[string]*model.Tournament{}}
}

func (m *memTournaments) add(t *model.Tournament) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[t.ID] = t
}

func (m *memTournaments) List(context.Context) ([]*model.Tournament, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Tournament
	for _, t := range m.rows {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memTournaments) GetByID(_ context.Context, id string) (*model.Tournament, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *memTournaments) RegisterTeam(_ context.Context, tournamentID, _, _ string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[tournamentID]
	if !ok ||
		t.Status != model.TournamentStatusRegistration ||
		!now.Before(t.RegistrationDeadline) ||
		t.CurrentTeams >= t.MaxTeams {
		return false, nil
	}
	t.CurrentTeams++
	return true, nil
}

func (m *memTournaments) UpdateStatus(_ context.Context, id string, from, to model.TournamentStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok || t.Status != from {
		return false, nil
	}
	t.Status = to
	return true, nil
}

func (m *memTournaments) ListDueForTransition(_ context.Context, now time.Time) ([]*model.Tournament, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Tournament
	for _, t := range m.rows {
		due := (t.Status == model.TournamentStatusRegistration && !t.StartDate.After(now)) ||
			(t.Status == model.TournamentStatusInProgress && t.EndDate.Before(now))
		if due {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeVerifier returns a scripted verdict and signals when it was asked.
type fakeVerifier struct {
	result verify.Result
	called chan verify.Request
}

func newFakeVerifier(result verify.Result) *fakeVerifier {
	return &fakeVerifier{result: result, called: make(chan verify.Request, 1)}
}

func (f *fakeVerifier) Verify(_ context.Context, req verify.Request) verify.Result {
	f.called <- req
	return f.result
}

// captureNotifier records published events.
type captureNotifier struct {
	mu     sync.Mutex
	events []model.Event
}

func (n *captureNotifier) Publish(_ context.Context, event model.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *captureNotifier) types() []model.EventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []model.EventType
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}
