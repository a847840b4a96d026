package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-rsvp/internal/mailer"
	"github.com/iliyamo/event-rsvp/internal/model"
	"github.com/iliyamo/event-rsvp/internal/queue"
	"github.com/iliyamo/event-rsvp/internal/seat"
	queue_publisher "github.com/iliyamo/event-rsvp/internal/service"
)

// PublicHandler serves the guest-facing endpoints: the seat grid and
// the reservation form submission.
type PublicHandler struct {
	Store      ReservationStore
	Alloc      seat.Allocator
	Mail       Notifier
	AdminEmail string
	// Publish sends a lifecycle event to the broker.  Nil disables
	// publication (tests); failures are logged inside and ignored here.
	Publish func(ctx context.Context, ev queue.ReservationEvent) error
}

// NewPublicHandler constructs a PublicHandler wired to the real broker publisher.
func NewPublicHandler(store ReservationStore, alloc seat.Allocator, mail Notifier, adminEmail string) *PublicHandler {
	if store == nil || mail == nil {
		panic("nil dependency passed to NewPublicHandler")
	}
	return &PublicHandler{
		Store:      store,
		Alloc:      alloc,
		Mail:       mail,
		AdminEmail: adminEmail,
		Publish:    queue_publisher.PublishReservationEvent,
	}
}

// SeatGrid handles GET /.  It returns the seat magnitudes held by
// active reservations plus the pool size, which is all a seat-picker
// client needs to render availability.
func (h *PublicHandler) SeatGrid(c echo.Context) error {
	taken, err := h.Store.ActiveSeats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "database error"})
	}
	seats := make([]int, 0, len(taken))
	for n := range taken {
		seats = append(seats, n)
	}
	sort.Ints(seats)
	return c.JSON(http.StatusOK, echo.Map{
		"total_seats":    h.Alloc.Total,
		"reserved_seats": seats,
	})
}

type reserveReq struct {
	SeatNumber          string `json:"seat_number" form:"seat_number"`
	FirstName           string `json:"first_name" form:"first_name"`
	Surname             string `json:"surname" form:"surname"`
	Phone               string `json:"phone" form:"phone"`
	Email               string `json:"email" form:"email"`
	DietaryRestrictions string `json:"dietary_restrictions" form:"dietary_restrictions"`
}

// Reserve handles POST /reserve.  It allocates a seat (requested or
// random), creates a PENDING reservation and notifies the admin.  The
// availability check and the insert are not atomic; the UNIQUE
// constraint on seat_number is the backstop, and a duplicate-key insert
// is reported just like a failed availability check.
func (h *PublicHandler) Reserve(c echo.Context) error {
	var req reserveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request body"})
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.Surname = strings.TrimSpace(req.Surname)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Email = strings.TrimSpace(req.Email)
	if req.FirstName == "" || req.Surname == "" || req.Phone == "" || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "first name, surname, phone and email are required"})
	}

	ctx := c.Request().Context()
	taken, err := h.Store.ActiveSeats(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "database error"})
	}
	seatNum, err := h.Alloc.Allocate(req.SeatNumber, taken)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": allocationMessage(err, req.SeatNumber)})
	}

	res := model.Reservation{
		SeatNumber:          seat.Active(seatNum).Stored(),
		FirstName:           req.FirstName,
		Surname:             req.Surname,
		Phone:               req.Phone,
		Email:               req.Email,
		DietaryRestrictions: strings.TrimSpace(req.DietaryRestrictions),
		Status:              model.StatusPending,
	}
	if err := h.Store.Create(ctx, &res); err != nil {
		if errors.Is(err, seat.ErrSeatTaken) {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": allocationMessage(err, req.SeatNumber)})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "an error occurred, please try again"})
	}

	h.Mail.Notify(h.AdminEmail, mailer.NewReservationSubject(),
		mailer.NewReservationBody(res.FirstName, res.Surname, seatNum))
	h.publish(queue.ActionCreated, res, seatNum)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Reservation submitted! Waiting for confirmation."})
}

func (h *PublicHandler) publish(action string, res model.Reservation, seatNum int) {
	if h.Publish == nil {
		return
	}
	ev := queue.ReservationEvent{
		ReservationID: res.ID,
		Action:        action,
		GuestName:     res.FirstName + " " + res.Surname,
		GuestEmail:    res.Email,
		SeatNumber:    seatNum,
		Status:        res.Status,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.Publish(ctx, ev)
	}()
}

// allocationMessage turns an allocator failure into the guest-facing message.
func allocationMessage(err error, requested string) string {
	switch {
	case errors.Is(err, seat.ErrInvalidFormat):
		return "Invalid seat number format."
	case errors.Is(err, seat.ErrOutOfRange):
		return "Invalid seat number."
	case errors.Is(err, seat.ErrSeatTaken):
		return fmt.Sprintf("Seat #%s is no longer available.", strings.TrimSpace(requested))
	case errors.Is(err, seat.ErrNoSeatsAvailable):
		return "Sorry, no seats available."
	}
	return err.Error()
}
