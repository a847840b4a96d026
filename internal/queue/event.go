// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationEvent is published on every reservation lifecycle change:
// created, accepted, declined, email_sent.  It carries enough for
// downstream consumers to log or notify without querying the database.
type ReservationEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	Action        string `json:"action"`
	GuestName     string `json:"guest_name"`
	GuestEmail    string `json:"guest_email"`
	SeatNumber    int    `json:"seat_number"`
	Status        string `json:"status"`
	OccurredAt    string `json:"occurred_at"`
}

// Lifecycle action names used in ReservationEvent.Action.
const (
	ActionCreated   = "created"
	ActionAccepted  = "accepted"
	ActionDeclined  = "declined"
	ActionEmailSent = "email_sent"
)
