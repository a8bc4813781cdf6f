package model

import "errors"

// Domain errors returned to callers. All of them are expected, recoverable
// outcomes and must be mapped to a specific user-facing message, never
// swallowed.
var (
	ErrNotFound     = errors.New("not found")
	ErrNoPermission = errors.New("no permission")

	// Attendance ledger
	ErrDeadlinePassed    = errors.New("confirmation deadline has passed")
	ErrInvalidTransition = errors.New("invalid attendance transition")

	// Recovery allocator
	ErrSlotUnavailable = errors.New("recovery slot is no longer available")
	ErrLevelMismatch   = errors.New("student level does not match slot level")
	ErrDeadlineExpired = errors.New("recovery slot has expired")

	// Court scheduler
	ErrInvalidTimeSlot = errors.New("time is not on the booking grid")
	ErrSlotTaken       = errors.New("court slot is already taken")
	ErrSlotFull        = errors.New("open match is full")
	ErrNotJoinable     = errors.New("booking is not joinable")

	// Tournaments
	ErrRegistrationClosed = errors.New("tournament registration is closed")
)
