package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-rsvp/internal/booking"
	"github.com/iliyamo/event-rsvp/internal/config"
	"github.com/iliyamo/event-rsvp/internal/mailer"
	"github.com/iliyamo/event-rsvp/internal/middleware"
	"github.com/iliyamo/event-rsvp/internal/model"
	"github.com/iliyamo/event-rsvp/internal/queue"
	"github.com/iliyamo/event-rsvp/internal/repository"
	"github.com/iliyamo/event-rsvp/internal/seat"
	queue_publisher "github.com/iliyamo/event-rsvp/internal/service"
	"github.com/iliyamo/event-rsvp/internal/utils"
)

// RoleAdmin is the role claim carried by admin access tokens.
const RoleAdmin = "ADMIN"

// AdminHandler serves the password-protected review endpoints: login,
// dashboard and the accept/decline/send_email actions.
type AdminHandler struct {
	Cfg    config.Config
	Store  ReservationStore
	Mail   Notifier
	Redis  *redis.Client // nil disables the logout denylist
	Policy booking.EmailPolicy
	// Publish mirrors PublicHandler.Publish; nil disables events.
	Publish func(ctx context.Context, ev queue.ReservationEvent) error
}

// NewAdminHandler constructs an AdminHandler wired to the real broker publisher.
func NewAdminHandler(cfg config.Config, store ReservationStore, mail Notifier, rdb *redis.Client) *AdminHandler {
	if store == nil || mail == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{
		Cfg:     cfg,
		Store:   store,
		Mail:    mail,
		Redis:   rdb,
		Policy:  booking.ParseEmailPolicy(cfg.EmailPolicy),
		Publish: queue_publisher.PublishReservationEvent,
	}
}

type loginReq struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Login handles POST /admin.  On a credential match it issues a signed
// access token the client presents as a Bearer header; there is no
// server-side session state beyond the optional logout denylist.
func (h *AdminHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request body"})
	}
	if !utils.CheckAdminCredentials(req.Username, req.Password,
		h.Cfg.AdminUsername, h.Cfg.AdminPassword, h.Cfg.AdminPasswordHash) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "invalid credentials"})
	}
	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, req.Username, RoleAdmin, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "issue token failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"token":   tok.Token,
		"expires": tok.Exp.Format(time.RFC3339),
	})
}

// reservationView is the dashboard representation of a row.  The seat
// number is the decoded magnitude; the raw stored value is included so
// the released encoding stays visible to the operator.
type reservationView struct {
	ID                  uint64 `json:"id"`
	SeatNumber          int    `json:"seat_number"`
	RawSeatNumber       int64  `json:"raw_seat_number"`
	FirstName           string `json:"first_name"`
	Surname             string `json:"surname"`
	Phone               string `json:"phone"`
	Email               string `json:"email"`
	DietaryRestrictions string `json:"dietary_restrictions,omitempty"`
	Status              string `json:"status"`
	EmailSent           bool   `json:"email_sent"`
	CreatedAt           string `json:"created_at"`
}

func viewOf(r model.Reservation) reservationView {
	return reservationView{
		ID:                  r.ID,
		SeatNumber:          seat.Decode(r.SeatNumber).Number(),
		RawSeatNumber:       r.SeatNumber,
		FirstName:           r.FirstName,
		Surname:             r.Surname,
		Phone:               r.Phone,
		Email:               r.Email,
		DietaryRestrictions: r.DietaryRestrictions,
		Status:              r.Status,
		EmailSent:           r.EmailSent,
		CreatedAt:           r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Dashboard handles GET /admin/dashboard: all rows grouped by status.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	groups := make(map[string][]reservationView, 3)
	for _, status := range []string{model.StatusPending, model.StatusConfirmed, model.StatusDeclined} {
		rows, err := h.Store.ListByStatus(ctx, status)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "database error"})
		}
		views := make([]reservationView, 0, len(rows))
		for _, r := range rows {
			views = append(views, viewOf(r))
		}
		groups[status] = views
	}
	return c.JSON(http.StatusOK, echo.Map{
		"pending":   groups[model.StatusPending],
		"confirmed": groups[model.StatusConfirmed],
		"declined":  groups[model.StatusDeclined],
	})
}

// Action handles GET /admin/action/:id/:action for accept, decline and
// send_email.  Every transition runs under the store's row lock; a
// failed transition leaves the row unchanged and reports its specific
// reason with a 400.
func (h *AdminHandler) Action(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid reservation id"})
	}

	switch c.Param("action") {
	case "accept":
		return h.accept(c, id)
	case "decline":
		return h.decline(c, id)
	case "send_email":
		return h.sendEmail(c, id)
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid action"})
}

func (h *AdminHandler) accept(c echo.Context, id uint64) error {
	var after model.Reservation
	err := h.Store.Mutate(c.Request().Context(), id, func(res *model.Reservation, seatTaken func(int) bool) error {
		if err := booking.Accept(res, seatTaken); err != nil {
			return err
		}
		after = *res
		return nil
	})
	if err != nil {
		return h.transitionError(c, err)
	}
	h.publish(queue.ActionAccepted, after)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Reservation accepted. Don't forget to send the email!"})
}

func (h *AdminHandler) decline(c echo.Context, id uint64) error {
	var after model.Reservation
	err := h.Store.Mutate(c.Request().Context(), id, func(res *model.Reservation, _ func(int) bool) error {
		if err := booking.Decline(res); err != nil {
			return err
		}
		after = *res
		return nil
	})
	if err != nil {
		return h.transitionError(c, err)
	}
	h.publish(queue.ActionDeclined, after)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Reservation declined."})
}

func (h *AdminHandler) sendEmail(c echo.Context, id uint64) error {
	var after model.Reservation
	err := h.Store.Mutate(c.Request().Context(), id, func(res *model.Reservation, _ func(int) bool) error {
		if err := booking.MarkEmailSent(res, h.Policy); err != nil {
			return err
		}
		after = *res
		return nil
	})
	if err != nil {
		return h.transitionError(c, err)
	}

	// Dispatch after the transition committed; a mail failure is logged
	// by the dispatcher and never rolls the email_sent flag back.
	switch after.Status {
	case model.StatusConfirmed:
		h.Mail.Notify(after.Email, mailer.ConfirmationSubject(),
			mailer.ConfirmationBody(after.FirstName, seat.Decode(after.SeatNumber).Number()))
	case model.StatusDeclined:
		h.Mail.Notify(after.Email, mailer.DeclineSubject(), mailer.DeclineBody(after.FirstName))
	}
	h.publish(queue.ActionEmailSent, after)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Email sent successfully!"})
}

// transitionError maps state machine and store failures onto the HTTP surface.
func (h *AdminHandler) transitionError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "reservation not found"})
	case errors.Is(err, booking.ErrSeatNowTaken),
		errors.Is(err, seat.ErrSeatTaken):
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Original seat is now taken. Cannot revert."})
	case errors.Is(err, booking.ErrEmailAlreadySent):
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Email already sent to guest."})
	case errors.Is(err, booking.ErrAlreadyConfirmed):
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Reservation already confirmed."})
	case errors.Is(err, booking.ErrInvalidStateForEmail):
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Status not eligible for email."})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "database error"})
}

// Logout handles GET /logout.  The presented token's jti is denylisted
// in Redis until the token would have expired anyway; without Redis the
// call succeeds as a no-op and the token simply ages out.
func (h *AdminHandler) Logout(c echo.Context) error {
	if h.Redis != nil {
		jti, _ := c.Get("jti").(string)
		exp, _ := c.Get("token_exp").(time.Time)
		if jti != "" {
			ttl := time.Until(exp)
			if ttl <= 0 {
				ttl = time.Minute
			}
			if err := h.Redis.SetEx(c.Request().Context(), middleware.DenylistPrefix+jti, "1", ttl).Err(); err != nil {
				c.Logger().Warnf("logout: denylist write failed: %v", err)
			}
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "logged out"})
}

func (h *AdminHandler) publish(action string, res model.Reservation) {
	if h.Publish == nil {
		return
	}
	ev := queue.ReservationEvent{
		ReservationID: res.ID,
		Action:        action,
		GuestName:     res.FirstName + " " + res.Surname,
		GuestEmail:    res.Email,
		SeatNumber:    seat.Decode(res.SeatNumber).Number(),
		Status:        res.Status,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.Publish(ctx, ev)
	}()
}
