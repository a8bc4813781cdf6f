package model

import "time"

type TournamentStatus string

const (
	TournamentStatusDraft        TournamentStatus = "draft"
	TournamentStatusRegistration TournamentStatus = "registration"
	TournamentStatusInProgress   TournamentStatus = "in_progress"
	TournamentStatusCompleted    TournamentStatus = "completed"
)

type Tournament struct {
	ID                   string           `json:"id"`
	Name                 string           `json:"name"`
	Description          string           `json:"description,omitempty"`
	StartDate            time.Time        `json:"start_date"`
	EndDate              time.Time        `json:"end_date"`
	RegistrationDeadline time.Time        `json:"registration_deadline"`
	MaxTeams             int              `json:"max_teams"`
	CurrentTeams         int              `json:"current_teams"`
	Level                PlayerLevel      `json:"level"`
	Status               TournamentStatus `json:"status"`
	Prize                string           `json:"prize,omitempty"`
}

// RegistrationOpen reports whether a team can still register: status,
// deadline and capacity all permit it.
func (t *Tournament) RegistrationOpen(now time.Time) bool {
	return t.Status == TournamentStatusRegistration &&
		now.Before(t.RegistrationDeadline) &&
		t.CurrentTeams < t.MaxTeams
}

// NextStatus computes the time-driven status a tournament should be in at
// now. Capacity-driven registration close is handled at registration time,
// this covers the clock transitions only.
func (t *Tournament) NextStatus(now time.Time) TournamentStatus {
	switch t.Status {
	case TournamentStatusRegistration:
		if !now.Before(t.StartDate) {
			return TournamentStatusInProgress
		}
	case TournamentStatusInProgress:
		if now.After(t.EndDate) {
			return TournamentStatusCompleted
		}
	}
	return t.Status
}
