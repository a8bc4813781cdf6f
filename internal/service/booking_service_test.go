package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/academiapadel/backend/internal/model"
	"github.com/academiapadel/backend/internal/verify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newBookingFixture(verifier Verifier) (*BookingService, *memBookings, *captureNotifier) {
	store := newMemBookings()
	courts := &memCourts{courts: []*model.Court{
		{ID: "c1", Name: "Pista 1", IsIndoor: true, IsActive: true},
		{ID: "c2", Name: "Pista 2", IsIndoor: true, IsActive: true},
	}}
	notifier := &captureNotifier{}
	svc := NewBookingService(store, courts, verifier, notifier, zap.NewNop())
	return svc, store, notifier
}

func TestCreateBookingTakesSlot(t *testing.T) {
	svc, _, notifier := newBookingFixture(nil)
	ctx := context.Background()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	params := CreateBookingParams{
		CourtID:   "c1",
		UserID:    "user-1",
		Date:      date,
		StartTime: "17:00",
		EndTime:   "18:30",
	}

	booking, err := svc.CreateBooking(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, 1, booking.CurrentPlayers)
	assert.Equal(t, DefaultMaxPlayers, booking.MaxPlayers)
	assert.Equal(t, model.VerificationPending, booking.VerificationStatus)
	assert.Equal(t, []model.EventType{model.EventBookingCreated}, notifier.types())

	// The identical triple is taken.
	params.UserID = "user-2"
	_, err = svc.CreateBooking(ctx, params)
	assert.ErrorIs(t, err, model.ErrSlotTaken)

	// Another court at the same time is fine.
	params.CourtID = "c2"
	_, err = svc.CreateBooking(ctx, params)
	require.NoError(t, err)
}

func TestCreateBookingValidation(t *testing.T) {
	svc, _, _ := newBookingFixture(nil)
	ctx := context.Background()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	_, err := svc.CreateBooking(ctx, CreateBookingParams{CourtID: "c1", Date: date, StartTime: "14:15"})
	assert.ErrorIs(t, err, model.ErrInvalidTimeSlot)

	_, err = svc.CreateBooking(ctx, CreateBookingParams{CourtID: "ghost", Date: date, StartTime: "17:00"})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestJoinOpenMatchUntilFull(t *testing.T) {
	svc, store, _ := newBookingFixture(nil)
	ctx := context.Background()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	booking, err := svc.CreateBooking(ctx, CreateBookingParams{
		CourtID:     "c1",
		UserID:      "organizer",
		Date:        date,
		StartTime:   "10:30",
		EndTime:     "12:00",
		IsOpenMatch: true,
	})
	require.NoError(t, err)

	// Joining requires a verified booking.
	_, err = svc.JoinOpenMatch(ctx, booking.ID, "p2")
	assert.ErrorIs(t, err, model.ErrNotJoinable)

	store.setVerified(booking.ID)

	// Three joins fill the remaining seats.
	for i, player := range []string{"p2", "p3", "p4"} {
		updated, err := svc.JoinOpenMatch(ctx, booking.ID, player)
		require.NoError(t, err)
		assert.Equal(t, i+2, updated.CurrentPlayers)
	}

	// The fourth join finds the match full.
	_, err = svc.JoinOpenMatch(ctx, booking.ID, "p5")
	assert.ErrorIs(t, err, model.ErrSlotFull)

	// Full matches stay flagged open for display but are not listed.
	full, err := store.GetByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.True(t, full.IsOpenMatch)

	open, err := svc.OpenMatches(ctx, date)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestConcurrentJoinLastSeat(t *testing.T) {
	svc, store, _ := newBookingFixture(nil)
	ctx := context.Background()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	booking, err := svc.CreateBooking(ctx, CreateBookingParams{
		CourtID:     "c1",
		UserID:      "organizer",
		Date:        date,
		StartTime:   "10:30",
		IsOpenMatch: true,
	})
	require.NoError(t, err)
	store.setVerified(booking.ID)

	// Seat 2 and 3 are taken; two rivals race for the last one.
	_, err = svc.JoinOpenMatch(ctx, booking.ID, "p2")
	require.NoError(t, err)
	_, err = svc.JoinOpenMatch(ctx, booking.ID, "p3")
	require.NoError(t, err)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.JoinOpenMatch(ctx, booking.ID, "rival")
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, model.ErrSlotFull)
		}
	}
	assert.Equal(t, 1, wins)
}

func TestRejectedBookingReleasesSlot(t *testing.T) {
	rejecting := newFakeVerifier(verify.Result{
		Status: model.VerificationRejected,
		Data:   model.VerificationData{DetectedCourt: "Pista 2"},
	})
	svc, store, notifier := newBookingFixture(rejecting)
	ctx := context.Background()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	params := CreateBookingParams{CourtID: "c1", UserID: "user-1", Date: date, StartTime: "17:00"}
	booking, err := svc.CreateBooking(ctx, params)
	require.NoError(t, err)

	// Same triple fails while the booking is alive.
	_, err = svc.CreateBooking(ctx, params)
	assert.ErrorIs(t, err, model.ErrSlotTaken)

	require.NoError(t, svc.SubmitVerification(ctx, booking.ID, "s3://shots/1.png", []byte("img"), "1.png"))

	req := <-rejecting.called
	assert.Equal(t, "Pista 1", req.ExpectedCourt)
	assert.Equal(t, "2026-03-10", req.ExpectedDate)
	assert.Equal(t, "17:00", req.ExpectedTime)

	// Wait for the async verdict to land.
	require.Eventually(t, func() bool {
		b, err := store.GetByID(ctx, booking.ID)
		return err == nil && b.VerificationStatus == model.VerificationRejected
	}, time.Second, 5*time.Millisecond)

	// The triple is free again.
	_, err = svc.CreateBooking(ctx, params)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		for _, typ := range notifier.types() {
			if typ == model.EventVerificationRejected {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
}

func TestResubmitAfterRejectionIsRefused(t *testing.T) {
	rejecting := newFakeVerifier(verify.Result{Status: model.VerificationRejected})
	svc, store, _ := newBookingFixture(rejecting)
	ctx := context.Background()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	params := CreateBookingParams{CourtID: "c1", UserID: "user-1", Date: date, StartTime: "17:00"}
	booking, err := svc.CreateBooking(ctx, params)
	require.NoError(t, err)

	require.NoError(t, svc.SubmitVerification(ctx, booking.ID, "s3://shots/1.png", []byte("img"), "1.png"))
	<-rejecting.called
	require.Eventually(t, func() bool {
		b, err := store.GetByID(ctx, booking.ID)
		return err == nil && b.VerificationStatus == model.VerificationRejected
	}, time.Second, 5*time.Millisecond)

	// Someone else rebooks the released triple.
	params.UserID = "user-2"
	other, err := svc.CreateBooking(ctx, params)
	require.NoError(t, err)

	// A fresh screenshot on the rejected booking must not resurrect it.
	err = svc.SubmitVerification(ctx, booking.ID, "s3://shots/2.png", []byte("img"), "2.png")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	b, err := store.GetByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.VerificationRejected, b.VerificationStatus)

	current, err := store.GetByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, model.VerificationPending, current.VerificationStatus)
}

func TestVerifiedBookingKeepsSlot(t *testing.T) {
	verifying := newFakeVerifier(verify.Result{Status: model.VerificationVerified})
	svc, store, _ := newBookingFixture(verifying)
	ctx := context.Background()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	booking, err := svc.CreateBooking(ctx, CreateBookingParams{
		CourtID: "c1", UserID: "user-1", Date: date, StartTime: "17:00",
	})
	require.NoError(t, err)

	require.NoError(t, svc.SubmitVerification(ctx, booking.ID, "s3://shots/2.png", []byte("img"), "2.png"))
	<-verifying.called

	require.Eventually(t, func() bool {
		b, err := store.GetByID(ctx, booking.ID)
		return err == nil && b.VerificationStatus == model.VerificationVerified
	}, time.Second, 5*time.Millisecond)

	_, err = svc.CreateBooking(ctx, CreateBookingParams{
		CourtID: "c1", UserID: "user-2", Date: date, StartTime: "17:00",
	})
	assert.ErrorIs(t, err, model.ErrSlotTaken)
}

func TestDayGrid(t *testing.T) {
	svc, store, _ := newBookingFixture(nil)
	ctx := context.Background()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	booking, err := svc.CreateBooking(ctx, CreateBookingParams{
		CourtID: "c1", UserID: "u1", Date: date, StartTime: "10:30", IsOpenMatch: true,
	})
	require.NoError(t, err)
	store.setVerified(booking.ID)

	grid, err := svc.DayGrid(ctx, date)
	require.NoError(t, err)
	require.Len(t, grid.Cells, 2*len(model.CanonicalTimeSlots))

	var openCells, bookedCells int
	for _, cell := range grid.Cells {
		switch cell.Status {
		case model.CourtSlotOpen:
			openCells++
		case model.CourtSlotBooked:
			bookedCells++
		}
	}
	assert.Equal(t, 1, openCells)
	assert.Equal(t, 0, bookedCells)
}
