package handler_test

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-rsvp/internal/model"
)

// Walks a reservation through its whole life: a guest submits with no
// seat preference into a full pool, then into a pool with one free
// seat, and the admin declines and later re-accepts the row.
func TestReservationLifecycle(t *testing.T) {
	store := newFakeStore()
	mail := &recordingNotifier{}
	e := echo.New()

	// Pool of two, both taken.
	pub := newPublic(store, 2, mail)
	seedPending(t, store, 1)
	seedPending(t, store, 2)

	c, rec := postForm(e, "/reserve", guestForm(""))
	require.NoError(t, pub.Reserve(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Sorry, no seats available.", decodeBody(t, rec)["message"])

	// Grow the pool: seat 3 is free now.
	pub = newPublic(store, 3, mail)
	c, rec = postForm(e, "/reserve", guestForm("3"))
	require.NoError(t, pub.Reserve(c))
	require.Equal(t, http.StatusOK, rec.Code)

	row, err := store.GetByID(t.Context(), 3)
	require.NoError(t, err)
	require.Equal(t, int64(3), row.SeatNumber)
	require.Equal(t, model.StatusPending, row.Status)

	adm := newAdmin(store, mail)
	require.Equal(t, http.StatusOK, callAction(t, adm, "3", "decline").Code)

	row, err = store.GetByID(t.Context(), 3)
	require.NoError(t, err)
	require.Equal(t, model.StatusDeclined, row.Status)
	require.Equal(t, int64(-(3*1000 + 3)), row.SeatNumber)

	// Seat 3 still free, so re-accepting restores it.
	require.Equal(t, http.StatusOK, callAction(t, adm, "3", "accept").Code)

	row, err = store.GetByID(t.Context(), 3)
	require.NoError(t, err)
	require.Equal(t, model.StatusConfirmed, row.Status)
	require.Equal(t, int64(3), row.SeatNumber)
}
