package handler_test

import (
	"context"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/event-rsvp/internal/model"
	"github.com/iliyamo/event-rsvp/internal/repository"
	"github.com/iliyamo/event-rsvp/internal/seat"
)

// fakeStore is an in-memory ReservationStore mirroring the repository's
// semantics: duplicate active seats fail like the UNIQUE constraint,
// Mutate persists only on success.
type fakeStore struct {
	mu     sync.Mutex
	rows   map[uint64]model.Reservation
	nextID uint64
	// createErr forces the next Create to fail, simulating a lost
	// check-then-insert race or a store outage.
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[uint64]model.Reservation{}}
}

func (s *fakeStore) seatActiveLocked(n int) bool {
	for _, r := range s.rows {
		if r.Active() && seat.Decode(r.SeatNumber).Number() == n {
			return true
		}
	}
	return false
}

func (s *fakeStore) Create(_ context.Context, res *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		err := s.createErr
		s.createErr = nil
		return err
	}
	if s.seatActiveLocked(seat.Decode(res.SeatNumber).Number()) {
		return seat.ErrSeatTaken
	}
	s.nextID++
	res.ID = s.nextID
	res.CreatedAt = time.Now().UTC()
	s.rows[res.ID] = *res
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id uint64) (model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return model.Reservation{}, repository.ErrReservationNotFound
	}
	return r, nil
}

func (s *fakeStore) ActiveSeats(_ context.Context) (map[int]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	taken := map[int]bool{}
	for _, r := range s.rows {
		if r.Active() {
			taken[seat.Decode(r.SeatNumber).Number()] = true
		}
	}
	return taken, nil
}

func (s *fakeStore) ListByStatus(_ context.Context, status string) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Reservation{}
	for id := uint64(1); id <= s.nextID; id++ {
		if r, ok := s.rows[id]; ok && r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) Mutate(_ context.Context, id uint64, fn func(res *model.Reservation, seatTaken func(int) bool) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return repository.ErrReservationNotFound
	}
	if err := fn(&r, s.seatActiveLocked); err != nil {
		return err
	}
	s.rows[id] = r
	return nil
}

// recordingNotifier captures Notify calls for assertions.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []struct{ To, Subject, Body string }
}

func (n *recordingNotifier) Notify(to, subject, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, struct{ To, Subject, Body string }{to, subject, body})
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

func (n *recordingNotifier) last() (to, subject, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	m := n.sent[len(n.sent)-1]
	return m.To, m.Subject, m.Body
}

func u64(id uint64) string { return strconv.FormatUint(id, 10) }

func newStringReader(s string) io.Reader { return strings.NewReader(s) }
