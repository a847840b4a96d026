// Package booking implements the reservation state machine.  All
// transitions operate on an in-memory row and either mutate it fully or
// leave it untouched; persistence and row locking are the caller's
// responsibility (see repository.Mutate).
package booking

import (
	"errors"

	"github.com/iliyamo/event-rsvp/internal/model"
	"github.com/iliyamo/event-rsvp/internal/seat"
)

// Transition failures.  Each maps to a 400 response with its message.
var (
	// ErrSeatNowTaken is returned when re-accepting a declined row whose
	// original seat has since been claimed by another active row.
	ErrSeatNowTaken = errors.New("original seat is now taken")
	// ErrEmailAlreadySent guards every transition on a notified row.
	ErrEmailAlreadySent = errors.New("email already sent to guest")
	// ErrAlreadyConfirmed is returned when accepting a row that is
	// already CONFIRMED with a positive seat.
	ErrAlreadyConfirmed = errors.New("reservation already confirmed")
	// ErrInvalidStateForEmail is returned when the email policy does not
	// allow notifying a row in its current status.
	ErrInvalidStateForEmail = errors.New("status not eligible for email")
)

// EmailPolicy controls which statuses may receive a guest notification.
// The original deployments disagreed on this, so it is configuration.
type EmailPolicy string

const (
	// EmailConfirmedOnly allows send_email for CONFIRMED rows only.
	EmailConfirmedOnly EmailPolicy = "CONFIRMED_ONLY"
	// EmailConfirmedOrDeclined allows send_email for CONFIRMED and
	// DECLINED rows.  This is the default.
	EmailConfirmedOrDeclined EmailPolicy = "CONFIRMED_OR_DECLINED"
)

// ParseEmailPolicy resolves a configured policy name, falling back to
// EmailConfirmedOrDeclined for unknown or empty values.
func ParseEmailPolicy(s string) EmailPolicy {
	if EmailPolicy(s) == EmailConfirmedOnly {
		return EmailConfirmedOnly
	}
	return EmailConfirmedOrDeclined
}

// Accept confirms a reservation.  A declined row has its original seat
// decoded and restored, but only if no other active row has claimed
// that magnitude in the meantime; seatTaken answers that question
// against current state.  A pending row is confirmed in place.  A
// notified guest can no longer be accepted.
func Accept(res *model.Reservation, seatTaken func(int) bool) error {
	if res.EmailSent {
		return ErrEmailAlreadySent
	}
	st := seat.Decode(res.SeatNumber)
	if st.Released() {
		if seatTaken(st.Number()) {
			return ErrSeatNowTaken
		}
		res.SeatNumber = seat.Active(st.Number()).Stored()
		res.Status = model.StatusConfirmed
		return nil
	}
	if res.Status == model.StatusConfirmed {
		return ErrAlreadyConfirmed
	}
	res.Status = model.StatusConfirmed
	return nil
}

// Decline releases a reservation's seat.  Works from both PENDING and
// CONFIRMED; declining an already-declined row is a no-op.  A notified
// guest can no longer be declined.
func Decline(res *model.Reservation) error {
	if res.EmailSent {
		return ErrEmailAlreadySent
	}
	res.Status = model.StatusDeclined
	if st := seat.Decode(res.SeatNumber); !st.Released() {
		res.SeatNumber = seat.Released(st.Number(), res.ID).Stored()
	}
	return nil
}

// MarkEmailSent records that the guest notification went out.  The row
// is frozen afterwards: email_sent is never reset and no further status
// transition is allowed.
func MarkEmailSent(res *model.Reservation, policy EmailPolicy) error {
	if res.EmailSent {
		return ErrEmailAlreadySent
	}
	switch res.Status {
	case model.StatusConfirmed:
	case model.StatusDeclined:
		if policy == EmailConfirmedOnly {
			return ErrInvalidStateForEmail
		}
	default:
		return ErrInvalidStateForEmail
	}
	res.EmailSent = true
	return nil
}
