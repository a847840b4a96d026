package seat

import (
	"errors"
	"math/rand"
	"strconv"
	"strings"
)

// Allocation failures.  Handlers translate each into a 400 response
// with a specific message.
var (
	// ErrInvalidFormat is returned when a requested seat is not an integer.
	ErrInvalidFormat = errors.New("invalid seat number format")
	// ErrOutOfRange is returned when a requested seat is outside [1, Total].
	ErrOutOfRange = errors.New("seat number out of range")
	// ErrSeatTaken is returned when an active reservation already holds
	// the requested seat.  The repository maps duplicate-key inserts to
	// the same error so the check-then-insert race surfaces identically.
	ErrSeatTaken = errors.New("seat already taken")
	// ErrNoSeatsAvailable is returned when every seat is held by an
	// active reservation.
	ErrNoSeatsAvailable = errors.New("no seats available")
)

// Allocator picks a seat from a fixed pool of Total numbered seats.
// It is a pure query over the caller-supplied set of taken seats; the
// caller creates the row under the same logical operation, with the
// storage UNIQUE constraint as the backstop for concurrent submissions.
type Allocator struct {
	Total int
}

// Allocate resolves a guest's seat request against the set of seat
// magnitudes currently held by active reservations.  An empty request
// means "any seat": one free seat is chosen uniformly at random.
func (a Allocator) Allocate(requested string, taken map[int]bool) (int, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return a.random(taken)
	}
	n, err := strconv.Atoi(requested)
	if err != nil {
		return 0, ErrInvalidFormat
	}
	if n < 1 || n > a.Total {
		return 0, ErrOutOfRange
	}
	if taken[n] {
		return 0, ErrSeatTaken
	}
	return n, nil
}

func (a Allocator) random(taken map[int]bool) (int, error) {
	free := make([]int, 0, a.Total)
	for n := 1; n <= a.Total; n++ {
		if !taken[n] {
			free = append(free, n)
		}
	}
	if len(free) == 0 {
		return 0, ErrNoSeatsAvailable
	}
	return free[rand.Intn(len(free))], nil
}
