package model

import "time"

// Reservation status values.  A reservation starts PENDING and is moved
// by admin actions only.  DECLINED rows keep their record but release
// their seat for reallocation.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusDeclined  = "DECLINED"
)

// Reservation records a guest's request for a single numbered seat.
// It mirrors the `reservations` table, the only persisted entity.
//
// Fields:
//  ID                  – primary key identifier, never reused.
//  SeatNumber          – stored seat value.  Positive while the row is
//                        PENDING or CONFIRMED; a negative encoded value
//                        while DECLINED (see the seat package).
//  FirstName           – guest first name.
//  Surname             – guest surname.
//  Phone               – guest phone number.
//  Email               – guest email address.
//  DietaryRestrictions – optional free text.
//  Status              – PENDING, CONFIRMED or DECLINED.
//  EmailSent           – whether the guest notification was dispatched.
//                        Once true the row may never transition again.
//  CreatedAt           – creation timestamp (UTC).
type Reservation struct {
	ID                  uint64    // reservations.id
	SeatNumber          int64     // reservations.seat_number (sign-encoded)
	FirstName           string    // reservations.first_name
	Surname             string    // reservations.surname
	Phone               string    // reservations.phone
	Email               string    // reservations.email
	DietaryRestrictions string    // reservations.dietary_restrictions
	Status              string    // reservations.status
	EmailSent           bool      // reservations.email_sent
	CreatedAt           time.Time // reservations.created_at
}

// Active reports whether the reservation currently occupies a seat.
func (r *Reservation) Active() bool {
	return r.Status == StatusPending || r.Status == StatusConfirmed
}
