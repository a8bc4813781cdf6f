package service

import (
	"context"
	"fmt"
	"time"

	"github.com/academiapadel/backend/internal/model"
	"github.com/academiapadel/backend/internal/notify"
	"github.com/academiapadel/backend/internal/verify"
	"go.uber.org/zap"
)

// Verifier is the screenshot-verification gateway contract consumed by the
// booking flow.
type Verifier interface {
	Verify(ctx context.Context, req verify.Request) verify.Result
}

// DefaultMaxPlayers is a padel court's capacity.
const DefaultMaxPlayers = 4

// BookingService is the court slot scheduler: it derives the daily grid,
// creates bookings, brokers open-match joins and drives screenshot
// verification.
type BookingService struct {
	store    BookingStore
	courts   CourtStore
	verifier Verifier
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewBookingService(
	store BookingStore,
	courts CourtStore,
	verifier Verifier,
	notifier notify.Notifier,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		store:    store,
		courts:   courts,
		verifier: verifier,
		notifier: notifier,
		logger:   logger,
	}
}

// DayGrid derives the court × time-slot matrix for a date.
func (s *BookingService) DayGrid(ctx context.Context, date time.Time) (*model.DayGrid, error) {
	grid, _, err := s.DayGridWithCourts(ctx, date)
	return grid, err
}

// DayGridWithCourts returns the grid together with the court list it was
// built from, in listing order.
func (s *BookingService) DayGridWithCourts(ctx context.Context, date time.Time) (*model.DayGrid, []*model.Court, error) {
	courts, err := s.courts.ListActive(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list courts: %w", err)
	}

	bookings, err := s.store.ListActiveByDate(ctx, date)
	if err != nil {
		return nil, nil, fmt.Errorf("list bookings: %w", err)
	}

	return model.BuildDayGrid(date, courts, bookings), courts, nil
}

// CreateBookingParams are the caller-supplied booking fields.
type CreateBookingParams struct {
	CourtID     string
	UserID      string
	Date        time.Time
	StartTime   string
	EndTime     string
	IsOpenMatch bool
	MaxPlayers  int
}

// CreateBooking occupies a (court, date, time) triple. The creator counts as
// the first player. A concurrent booking of the same triple fails with
// ErrSlotTaken.
func (s *BookingService) CreateBooking(ctx context.Context, p CreateBookingParams) (*model.CourtBooking, error) {
	if !model.IsCanonicalTimeSlot(p.StartTime) {
		return nil, model.ErrInvalidTimeSlot
	}

	court, err := s.courts.GetByID(ctx, p.CourtID)
	if err != nil {
		return nil, fmt.Errorf("get court: %w", err)
	}
	if court == nil || !court.IsActive {
		return nil, model.ErrNotFound
	}

	maxPlayers := p.MaxPlayers
	if maxPlayers <= 0 {
		maxPlayers = DefaultMaxPlayers
	}

	booking := &model.CourtBooking{
		CourtID:            p.CourtID,
		UserID:             p.UserID,
		Date:               p.Date,
		StartTime:          p.StartTime,
		EndTime:            p.EndTime,
		VerificationStatus: model.VerificationPending,
		IsOpenMatch:        p.IsOpenMatch,
		CurrentPlayers:     1,
		MaxPlayers:         maxPlayers,
	}

	ok, err := s.store.Create(ctx, booking)
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	if !ok {
		return nil, model.ErrSlotTaken
	}

	s.notifier.Publish(ctx, model.Event{
		Type:   model.EventBookingCreated,
		UserID: p.UserID,
		Payload: map[string]any{
			"booking_id": booking.ID,
			"court_id":   booking.CourtID,
			"date":       booking.Date.Format("2006-01-02"),
			"time":       booking.StartTime,
		},
	})

	s.logger.Info("Booking created",
		zap.String("booking_id", booking.ID),
		zap.String("court_id", booking.CourtID),
		zap.String("start_time", booking.StartTime),
		zap.Bool("open_match", booking.IsOpenMatch),
	)

	return booking, nil
}

// JoinOpenMatch claims one seat in an open match. Two concurrent joins on
// the last seat resolve to one winner; the loser gets ErrSlotFull.
func (s *BookingService) JoinOpenMatch(ctx context.Context, bookingID, userID string) (*model.CourtBooking, error) {
	booking, err := s.store.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, model.ErrNotFound
	}

	if err := booking.Joinable(); err != nil {
		return nil, err
	}

	ok, err := s.store.Join(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("join open match: %w", err)
	}
	if !ok {
		// Lost the race; re-read to report why.
		current, err := s.store.GetByID(ctx, bookingID)
		if err == nil && current != nil {
			if joinErr := current.Joinable(); joinErr != nil {
				return nil, joinErr
			}
		}
		return nil, model.ErrNotJoinable
	}

	s.logger.Info("Open match joined",
		zap.String("booking_id", bookingID),
		zap.String("user_id", userID),
	)

	return s.store.GetByID(ctx, bookingID)
}

// OpenMatches lists joinable open matches from a date onward.
func (s *BookingService) OpenMatches(ctx context.Context, from time.Time) ([]*model.CourtBooking, error) {
	return s.store.ListOpenMatches(ctx, from)
}

// SubmitVerification stores the uploaded confirmation screenshot, marks the
// booking pending and fires the gateway call in the background. The verdict
// lands asynchronously; a rejected booking releases its slot.
func (s *BookingService) SubmitVerification(ctx context.Context, bookingID, screenshotURL string, image []byte, imageName string) error {
	booking, err := s.store.GetByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return model.ErrNotFound
	}

	// A rejected booking released its slot; resubmitting must not resurrect
	// it under a triple someone else may have rebooked.
	if booking.VerificationStatus == model.VerificationRejected {
		return model.ErrInvalidTransition
	}

	ok, err := s.store.SetScreenshot(ctx, bookingID, screenshotURL)
	if err != nil {
		return fmt.Errorf("store screenshot: %w", err)
	}
	if !ok {
		return model.ErrInvalidTransition
	}

	req := verify.Request{
		Image:        image,
		ImageName:    imageName,
		ExpectedDate: booking.Date.Format("2006-01-02"),
		ExpectedTime: booking.StartTime,
	}
	if court, err := s.courts.GetByID(ctx, booking.CourtID); err == nil && court != nil {
		req.ExpectedCourt = court.Name
	}

	// Fire and forget: the gateway is the only slow collaborator and must
	// never block the user-facing request.
	bg := context.WithoutCancel(ctx)
	go s.runVerification(bg, booking.UserID, bookingID, req)

	return nil
}

func (s *BookingService) runVerification(ctx context.Context, userID, bookingID string, req verify.Request) {
	result := s.verifier.Verify(ctx, req)

	applied, err := s.store.ApplyVerdict(ctx, bookingID, result.Status, &result.Data)
	if err != nil {
		s.logger.Error("Failed to apply verification verdict",
			zap.String("booking_id", bookingID),
			zap.Error(err),
		)
		return
	}
	if !applied {
		s.logger.Warn("Verification verdict dropped, booking no longer pending",
			zap.String("booking_id", bookingID),
		)
		return
	}

	eventType := model.EventVerificationVerified
	if result.Status != model.VerificationVerified {
		eventType = model.EventVerificationRejected
	}
	s.notifier.Publish(ctx, model.Event{
		Type:   eventType,
		UserID: userID,
		Payload: map[string]any{
			"booking_id":          bookingID,
			"gateway_unavailable": result.Unavailable,
		},
	})

	s.logger.Info("Verification verdict applied",
		zap.String("booking_id", bookingID),
		zap.String("status", string(result.Status)),
		zap.Bool("gateway_unavailable", result.Unavailable),
	)
}
