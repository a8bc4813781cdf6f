package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotStatusFor(t *testing.T) {
	assert.Equal(t, CourtSlotAvailable, SlotStatusFor(nil))

	open := &CourtBooking{
		IsOpenMatch:        true,
		CurrentPlayers:     2,
		MaxPlayers:         4,
		VerificationStatus: VerificationVerified,
	}
	assert.Equal(t, CourtSlotOpen, SlotStatusFor(open))

	// A full open match displays as booked.
	full := *open
	full.CurrentPlayers = 4
	assert.Equal(t, CourtSlotBooked, SlotStatusFor(&full))

	closed := &CourtBooking{IsOpenMatch: false, CurrentPlayers: 4, MaxPlayers: 4, VerificationStatus: VerificationVerified}
	assert.Equal(t, CourtSlotBooked, SlotStatusFor(closed))

	// A rejected booking releases its triple.
	rejected := *open
	rejected.VerificationStatus = VerificationRejected
	assert.Equal(t, CourtSlotAvailable, SlotStatusFor(&rejected))

	// Pending verification still occupies the slot.
	pending := *closed
	pending.VerificationStatus = VerificationPending
	assert.Equal(t, CourtSlotBooked, SlotStatusFor(&pending))
}

func TestJoinable(t *testing.T) {
	b := &CourtBooking{
		IsOpenMatch:        true,
		CurrentPlayers:     3,
		MaxPlayers:         4,
		VerificationStatus: VerificationVerified,
	}
	require.NoError(t, b.Joinable())

	full := *b
	full.CurrentPlayers = 4
	assert.ErrorIs(t, full.Joinable(), ErrSlotFull)

	private := *b
	private.IsOpenMatch = false
	assert.ErrorIs(t, private.Joinable(), ErrNotJoinable)

	unverified := *b
	unverified.VerificationStatus = VerificationPending
	assert.ErrorIs(t, unverified.Joinable(), ErrNotJoinable)
}

func TestCanonicalTimeSlots(t *testing.T) {
	assert.Len(t, CanonicalTimeSlots, 11)
	assert.True(t, IsCanonicalTimeSlot("17:00"))
	assert.False(t, IsCanonicalTimeSlot("14:00"))
}
