package handler_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-rsvp/internal/booking"
	"github.com/iliyamo/event-rsvp/internal/config"
	"github.com/iliyamo/event-rsvp/internal/handler"
	"github.com/iliyamo/event-rsvp/internal/model"
	"github.com/iliyamo/event-rsvp/internal/router"
	"github.com/iliyamo/event-rsvp/internal/seat"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:     "test-secret",
		AccessTTLMin:  30,
		AdminUsername: "admin",
		AdminPassword: "password123",
		TotalSeats:    120,
	}
}

func newAdmin(store handler.ReservationStore, mail handler.Notifier) *handler.AdminHandler {
	return &handler.AdminHandler{
		Cfg:    testConfig(),
		Store:  store,
		Mail:   mail,
		Policy: booking.EmailConfirmedOrDeclined,
	}
}

func callAction(t *testing.T, h *handler.AdminHandler, id, action string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/action/"+id+"/"+action, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/admin/action/:id/:action")
	c.SetParamNames("id", "action")
	c.SetParamValues(id, action)
	require.NoError(t, h.Action(c))
	return rec
}

func seedPending(t *testing.T, store handler.ReservationStore, seatNum int) uint64 {
	t.Helper()
	res := model.Reservation{
		SeatNumber: seat.Active(seatNum).Stored(),
		FirstName:  "Thandi",
		Surname:    "Mokoena",
		Phone:      "0821234567",
		Email:      "thandi@example.com",
		Status:     model.StatusPending,
	}
	require.NoError(t, store.Create(t.Context(), &res))
	return res.ID
}

func TestLogin(t *testing.T) {
	h := newAdmin(newFakeStore(), &recordingNotifier{})
	e := echo.New()

	t.Run("valid credentials issue a token", func(t *testing.T) {
		c, rec := postForm(e, "/admin", url.Values{"username": {"admin"}, "password": {"password123"}})
		require.NoError(t, h.Login(c))
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		require.Equal(t, true, body["success"])
		require.NotEmpty(t, body["token"])
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		c, rec := postForm(e, "/admin", url.Values{"username": {"admin"}, "password": {"nope"}})
		require.NoError(t, h.Login(c))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, false, decodeBody(t, rec)["success"])
	})

	t.Run("wrong username rejected", func(t *testing.T) {
		c, rec := postForm(e, "/admin", url.Values{"username": {"root"}, "password": {"password123"}})
		require.NoError(t, h.Login(c))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestDashboardGroupsByStatus(t *testing.T) {
	store := newFakeStore()
	mail := &recordingNotifier{}
	h := newAdmin(store, mail)

	pendingID := seedPending(t, store, 1)
	confirmedID := seedPending(t, store, 2)
	declinedID := seedPending(t, store, 3)
	require.Equal(t, http.StatusOK, callAction(t, h, u64(confirmedID), "accept").Code)
	require.Equal(t, http.StatusOK, callAction(t, h, u64(declinedID), "decline").Code)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Dashboard(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	pending := body["pending"].([]any)
	confirmed := body["confirmed"].([]any)
	declined := body["declined"].([]any)
	require.Len(t, pending, 1)
	require.Len(t, confirmed, 1)
	require.Len(t, declined, 1)

	require.EqualValues(t, pendingID, pending[0].(map[string]any)["id"])

	// The declined row exposes the decoded magnitude and the raw encoding.
	view := declined[0].(map[string]any)
	require.EqualValues(t, 3, view["seat_number"])
	require.EqualValues(t, -(int64(declinedID)*1000 + 3), view["raw_seat_number"])
}

func TestActionDecline(t *testing.T) {
	store := newFakeStore()
	h := newAdmin(store, &recordingNotifier{})
	id := seedPending(t, store, 3)

	rec := callAction(t, h, u64(id), "decline")
	require.Equal(t, http.StatusOK, rec.Code)

	row, err := store.GetByID(t.Context(), id)
	require.NoError(t, err)
	require.Equal(t, model.StatusDeclined, row.Status)
	require.Equal(t, -(int64(id)*1000 + 3), row.SeatNumber)

	// Seat 3 is free again for new guests.
	taken, err := store.ActiveSeats(t.Context())
	require.NoError(t, err)
	require.False(t, taken[3])
}

func TestActionAcceptAfterDecline(t *testing.T) {
	store := newFakeStore()
	h := newAdmin(store, &recordingNotifier{})
	id := seedPending(t, store, 3)

	require.Equal(t, http.StatusOK, callAction(t, h, u64(id), "decline").Code)
	require.Equal(t, http.StatusOK, callAction(t, h, u64(id), "accept").Code)

	row, err := store.GetByID(t.Context(), id)
	require.NoError(t, err)
	require.Equal(t, model.StatusConfirmed, row.Status)
	require.Equal(t, int64(3), row.SeatNumber)
}

func TestActionAcceptConflict(t *testing.T) {
	store := newFakeStore()
	h := newAdmin(store, &recordingNotifier{})
	id := seedPending(t, store, 3)

	require.Equal(t, http.StatusOK, callAction(t, h, u64(id), "decline").Code)
	// Another guest grabs seat 3 while the first row is declined.
	seedPending(t, store, 3)

	rec := callAction(t, h, u64(id), "accept")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	row, err := store.GetByID(t.Context(), id)
	require.NoError(t, err)
	require.Equal(t, model.StatusDeclined, row.Status)
	require.Equal(t, -(int64(id)*1000 + 3), row.SeatNumber)
}

func TestActionSendEmail(t *testing.T) {
	store := newFakeStore()
	mail := &recordingNotifier{}
	h := newAdmin(store, mail)
	id := seedPending(t, store, 3)
	require.Equal(t, http.StatusOK, callAction(t, h, u64(id), "accept").Code)

	rec := callAction(t, h, u64(id), "send_email")
	require.Equal(t, http.StatusOK, rec.Code)

	row, err := store.GetByID(t.Context(), id)
	require.NoError(t, err)
	require.True(t, row.EmailSent)

	require.Equal(t, 1, mail.count())
	to, subject, body := mail.last()
	require.Equal(t, "thandi@example.com", to)
	require.Contains(t, subject, "Confirmation")
	require.Contains(t, body, "#3")

	// A second send is refused and the guest gets no duplicate email.
	rec = callAction(t, h, u64(id), "send_email")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, 1, mail.count())

	// A notified guest can no longer be declined.
	rec = callAction(t, h, u64(id), "decline")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	row, err = store.GetByID(t.Context(), id)
	require.NoError(t, err)
	require.Equal(t, model.StatusConfirmed, row.Status)
}

func TestActionSendEmailPendingRejected(t *testing.T) {
	store := newFakeStore()
	h := newAdmin(store, &recordingNotifier{})
	id := seedPending(t, store, 3)

	rec := callAction(t, h, u64(id), "send_email")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActionSendEmailConfirmedOnlyPolicy(t *testing.T) {
	store := newFakeStore()
	mail := &recordingNotifier{}
	h := newAdmin(store, mail)
	h.Policy = booking.EmailConfirmedOnly
	id := seedPending(t, store, 3)
	require.Equal(t, http.StatusOK, callAction(t, h, u64(id), "decline").Code)

	rec := callAction(t, h, u64(id), "send_email")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, 0, mail.count())
}

func TestActionErrorsAndUnknowns(t *testing.T) {
	store := newFakeStore()
	h := newAdmin(store, &recordingNotifier{})
	seedPending(t, store, 3)

	require.Equal(t, http.StatusNotFound, callAction(t, h, "99", "accept").Code)
	require.Equal(t, http.StatusBadRequest, callAction(t, h, "0", "accept").Code)
	require.Equal(t, http.StatusBadRequest, callAction(t, h, "abc", "accept").Code)
	require.Equal(t, http.StatusBadRequest, callAction(t, h, "1", "promote").Code)
}

// Admin routes reject requests without a bearer token end to end.
func TestAdminRoutesRequireToken(t *testing.T) {
	e := echo.New()
	h := newAdmin(newFakeStore(), &recordingNotifier{})
	router.RegisterAdmin(e, h, testConfig().JWTSecret, nil)

	for _, path := range []string{"/admin/dashboard", "/admin/action/1/accept", "/logout"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

// A freshly issued token passes the middleware chain.
func TestAdminRoutesWithToken(t *testing.T) {
	e := echo.New()
	store := newFakeStore()
	h := newAdmin(store, &recordingNotifier{})
	router.RegisterAdmin(e, h, testConfig().JWTSecret, nil)

	login := httptest.NewRequest(http.MethodPost, "/admin",
		newStringReader("username=admin&password=password123"))
	login.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	loginRec := httptest.NewRecorder()
	e.ServeHTTP(loginRec, login)
	require.Equal(t, http.StatusOK, loginRec.Code)
	token := decodeBody(t, loginRec)["token"].(string)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// Logout without Redis is a successful no-op.
	req = httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
