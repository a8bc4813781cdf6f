package model

// EventType identifies a domain event emitted for the external notification
// channel. Delivery is out of scope, the engine only publishes.
type EventType string

const (
	EventRecoveryAvailable    EventType = "recovery_available"
	EventRecoveryClaimed      EventType = "recovery_claimed"
	EventRecoveryExpired      EventType = "recovery_expired"
	EventBookingCreated       EventType = "booking_created"
	EventVerificationVerified EventType = "verification_verified"
	EventVerificationRejected EventType = "verification_rejected"
	EventTournamentClosed     EventType = "tournament_registration_closed"
)

// Event is the payload handed to the notification sink.
type Event struct {
	Type    EventType      `json:"type"`
	UserID  string         `json:"user_id"`
	Payload map[string]any `json:"payload,omitempty"`
}
