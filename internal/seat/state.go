// Package seat models seat identity and availability.  A seat is either
// actively occupied by a reservation or released by a declined one.  The
// released form is encoded into the stored seat_number column in a way
// that keeps the UNIQUE constraint satisfied across every declined row
// while still allowing the original seat to be recovered.
package seat

// encodeBase separates the owning reservation ID from the seat magnitude
// inside a released value.  It must exceed the largest possible seat
// number; seats are capped well below 1000 in every deployment.
const encodeBase = 1000

// State is the decoded form of a stored seat value.  It is either
// Active (the row occupies the seat) or Released (the row was declined
// and the seat is free for reallocation).
type State struct {
	number   int
	ownerID  uint64
	released bool
}

// Active returns the state of a row that occupies seat n.
func Active(n int) State {
	return State{number: n}
}

// Released returns the state of a declined row that previously held
// seat n.  The owning reservation ID keeps the stored value unique even
// when two rows held the same seat at different times.
func Released(n int, ownerID uint64) State {
	return State{number: n, ownerID: ownerID, released: true}
}

// Decode recovers a State from a stored seat value.  Positive values
// are active seats.  Negative values are released seats; magnitudes of
// encodeBase and above carry the owner ID, while smaller magnitudes are
// the legacy bare-negative form written before the encoding carried it.
func Decode(stored int64) State {
	if stored > 0 {
		return Active(int(stored))
	}
	mag := -stored
	if mag >= encodeBase {
		return Released(int(mag%encodeBase), uint64(mag/encodeBase))
	}
	return Released(int(mag), 0)
}

// Stored returns the integer persisted in the seat_number column:
// the seat itself while active, -(ownerID*1000 + seat) while released.
func (s State) Stored() int64 {
	if !s.released {
		return int64(s.number)
	}
	return -(int64(s.ownerID)*encodeBase + int64(s.number))
}

// Number returns the real-world seat magnitude regardless of encoding.
func (s State) Number() int { return s.number }

// Released reports whether the seat has been freed by a decline.
func (s State) Released() bool { return s.released }
