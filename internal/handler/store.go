package handler

import (
	"context"

	"github.com/iliyamo/event-rsvp/internal/model"
)

// ReservationStore is the persistence surface the handlers need.  It is
// implemented by repository.ReservationRepo; tests substitute an
// in-memory fake.
type ReservationStore interface {
	// Create inserts a new reservation, populating ID and CreatedAt.
	// A duplicate active seat surfaces as seat.ErrSeatTaken.
	Create(ctx context.Context, res *model.Reservation) error
	// GetByID returns one reservation or repository.ErrReservationNotFound.
	GetByID(ctx context.Context, id uint64) (model.Reservation, error)
	// ActiveSeats returns the seat magnitudes of all PENDING/CONFIRMED rows.
	ActiveSeats(ctx context.Context) (map[int]bool, error)
	// ListByStatus returns all reservations in one status, oldest first.
	ListByStatus(ctx context.Context, status string) ([]model.Reservation, error)
	// Mutate runs fn against the row with exclusive access; the row is
	// persisted only when fn returns nil.
	Mutate(ctx context.Context, id uint64, fn func(res *model.Reservation, seatTaken func(int) bool) error) error
}

// Notifier dispatches a notification email without blocking the caller.
// Implemented by mailer.Dispatcher.
type Notifier interface {
	Notify(to, subject, body string)
}
