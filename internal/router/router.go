// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-rsvp/internal/handler"
	"github.com/iliyamo/event-rsvp/internal/middleware"
)

// RegisterPublic registers the guest-facing routes.  The seat grid and
// the reservation form are rate limited; the grid additionally sits
// behind the response cache so bursts of seat-picker refreshes do not
// reach the database.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, rateLimit, cache echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)
	e.GET("/", p.SeatGrid, rateLimit, cache)
	e.POST("/reserve", p.Reserve, rateLimit)
}

// RegisterAdmin registers the admin login plus the token-protected
// review endpoints.  POST /admin issues the access token; everything
// else requires a valid Bearer token with the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string, rdb *redis.Client) {
	e.POST("/admin", a.Login)

	auth := middleware.JWTAuth(jwtSecret, rdb)
	role := middleware.RequireRole(handler.RoleAdmin)

	g := e.Group("/admin")
	g.Use(auth, role)
	g.GET("/dashboard", a.Dashboard)
	g.GET("/action/:id/:action", a.Action)

	e.GET("/logout", a.Logout, auth, role)
}
