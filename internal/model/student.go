package model

import "time"

// Student is a player enrolled in the academy. A tutor account owns its minor
// students; an adulto account owns a single student record for itself.
type Student struct {
	ID       string      `json:"id"`
	UserID   string      `json:"user_id"`
	FullName string      `json:"full_name"`
	Level    PlayerLevel `json:"level"`
	IsMinor  bool        `json:"is_minor"`

	BirthDate *time.Time `json:"birth_date,omitempty"`
	Notes     string     `json:"notes,omitempty"`

	// PendingRecoveries mirrors the number of this student's recovery slots
	// still in available state. The allocator adjusts it in the same
	// transaction as every slot transition.
	PendingRecoveries int       `json:"pending_recoveries"`
	CreatedAt         time.Time `json:"created_at"`
}
