package model

import "time"

// Court is static reference data seeded by migration.
type Court struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsIndoor    bool   `json:"is_indoor"`
	IsActive    bool   `json:"is_active"`
}

// CanonicalTimeSlots is the fixed daily booking grid. Bookings outside these
// start times are not representable.
var CanonicalTimeSlots = []string{
	"09:30", "10:30", "11:30", "12:30", "13:30",
	"16:00", "17:00", "18:00", "19:00", "20:00", "21:00",
}

// IsCanonicalTimeSlot reports whether t (HH:MM) is on the grid.
func IsCanonicalTimeSlot(t string) bool {
	for _, s := range CanonicalTimeSlots {
		if s == t {
			return true
		}
	}
	return false
}

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// VerificationData is the structured verdict returned by the verification
// gateway for an uploaded payment screenshot.
type VerificationData struct {
	DetectedCourt      string `json:"detected_court,omitempty"`
	DetectedDate       string `json:"detected_date,omitempty"`
	DetectedTime       string `json:"detected_time,omitempty"`
	GatewayUnavailable bool   `json:"gateway_unavailable,omitempty"`
}

// CourtBooking occupies one (court, date, time) triple. A rejected booking
// no longer occupies its triple.
type CourtBooking struct {
	ID            string    `json:"id"`
	CourtID       string    `json:"court_id"`
	UserID        string    `json:"user_id"`
	Date          time.Time `json:"date"`
	StartTime     string    `json:"start_time"` // HH:MM
	EndTime       string    `json:"end_time"`   // HH:MM
	ScreenshotURL string    `json:"screenshot_url,omitempty"`

	VerificationStatus VerificationStatus `json:"verification_status"`
	VerificationData   *VerificationData  `json:"verification_data,omitempty"`

	IsOpenMatch    bool      `json:"is_open_match"`
	CurrentPlayers int       `json:"current_players"`
	MaxPlayers     int       `json:"max_players"`
	CreatedAt      time.Time `json:"created_at"`
}

// CourtSlotStatus is derived from the booking occupying a grid cell, never
// stored.
type CourtSlotStatus string

const (
	CourtSlotAvailable CourtSlotStatus = "available"
	CourtSlotOpen      CourtSlotStatus = "open"
	CourtSlotBooked    CourtSlotStatus = "booked"
)

// SlotStatusFor derives the grid-cell status for a triple. A nil booking
// (or one rejected by verification) leaves the cell available.
func SlotStatusFor(b *CourtBooking) CourtSlotStatus {
	if b == nil || b.VerificationStatus == VerificationRejected {
		return CourtSlotAvailable
	}
	if b.IsOpenMatch && b.CurrentPlayers < b.MaxPlayers {
		return CourtSlotOpen
	}
	return CourtSlotBooked
}

// Joinable reports whether the booking accepts another open-match player.
// Joining requires a verified booking; a full match stays is_open_match for
// display but stops accepting players.
func (b *CourtBooking) Joinable() error {
	if !b.IsOpenMatch || b.VerificationStatus != VerificationVerified {
		return ErrNotJoinable
	}
	if b.CurrentPlayers >= b.MaxPlayers {
		return ErrSlotFull
	}
	return nil
}
