package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/event-rsvp/internal/model"
	"github.com/iliyamo/event-rsvp/internal/seat"
)

// ReservationRepo provides CRUD operations for the reservations table.
// Seat numbers are stored sign-encoded (see the seat package); the
// repository reads and writes the raw stored values and leaves the
// decoding to the domain layer.  All timestamps are UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle for transaction control.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const reservationCols = `id, seat_number, first_name, surname, phone, email,
	dietary_restrictions, status, email_sent, created_at`

// Create inserts a new reservation and populates the generated ID and
// creation timestamp on the provided record.  A duplicate seat_number
// (the UNIQUE constraint catching the check-then-insert race) is
// reported as seat.ErrSeatTaken so callers treat it like a failed
// availability check rather than a generic store error.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	res.CreatedAt = time.Now().UTC()
	const q = `INSERT INTO reservations
		(seat_number, first_name, surname, phone, email, dietary_restrictions, status, email_sent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		res.SeatNumber, res.FirstName, res.Surname, res.Phone, res.Email,
		res.DietaryRestrictions, res.Status, res.EmailSent, res.CreatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return seat.ErrSeatTaken
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// GetByID fetches a single reservation.  ErrReservationNotFound is
// returned when the ID does not exist.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations WHERE id = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return model.Reservation{}, ErrReservationNotFound
	}
	return res, err
}

// ActiveSeats returns the set of seat magnitudes held by PENDING or
// CONFIRMED rows.  DECLINED rows store negative values and never appear.
func (r *ReservationRepo) ActiveSeats(ctx context.Context) (map[int]bool, error) {
	const q = `SELECT seat_number FROM reservations WHERE status IN (?, ?)`
	rows, err := r.db.QueryContext(ctx, q, model.StatusPending, model.StatusConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	taken := make(map[int]bool)
	for rows.Next() {
		var stored int64
		if err := rows.Scan(&stored); err != nil {
			return nil, err
		}
		taken[seat.Decode(stored).Number()] = true
	}
	return taken, rows.Err()
}

// ListByStatus returns all reservations in one status, oldest first.
func (r *ReservationRepo) ListByStatus(ctx context.Context, status string) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations WHERE status = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// Mutate runs an admin transition against a single row with exclusive
// access.  The row is loaded under SELECT ... FOR UPDATE, handed to fn
// together with a transaction-scoped seat availability check, and
// written back only when fn succeeds.  Any error from fn (or from the
// availability check) rolls the transaction back and leaves the row
// unchanged, which is the failure semantic every transition requires.
func (r *ReservationRepo) Mutate(ctx context.Context, id uint64, fn func(res *model.Reservation, seatTaken func(int) bool) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `SELECT ` + reservationCols + ` FROM reservations WHERE id = ? FOR UPDATE`
	res, err := scanReservation(tx.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return ErrReservationNotFound
	}
	if err != nil {
		return err
	}

	var checkErr error
	seatTaken := func(n int) bool {
		var count int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM reservations WHERE seat_number = ? AND status IN (?, ?)`,
			n, model.StatusPending, model.StatusConfirmed).Scan(&count)
		if err != nil {
			checkErr = err
			return true // fail closed: never hand out a seat on a broken check
		}
		return count > 0
	}

	if err := fn(&res, seatTaken); err != nil {
		return err
	}
	if checkErr != nil {
		return checkErr
	}

	const up = `UPDATE reservations SET seat_number = ?, status = ?, email_sent = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, up, res.SeatNumber, res.Status, res.EmailSent, res.ID); err != nil {
		if isDuplicateKey(err) {
			return seat.ErrSeatTaken
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (model.Reservation, error) {
	var res model.Reservation
	var dietary sql.NullString
	err := row.Scan(&res.ID, &res.SeatNumber, &res.FirstName, &res.Surname,
		&res.Phone, &res.Email, &dietary, &res.Status, &res.EmailSent, &res.CreatedAt)
	if err != nil {
		return model.Reservation{}, err
	}
	res.DietaryRestrictions = dietary.String
	return res, nil
}

// isDuplicateKey detects MySQL error 1062 (duplicate entry).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
