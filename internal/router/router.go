package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/seat-lock-reservation/internal/handler"
)

// RegisterRoutes registers the unthrottled probe endpoints.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Live)
	e.GET("/readyz", h.Ready)
}

// RegisterReservations mounts the reservation API under /v1.  The
// limiter applies to the write routes only.  Booking lookups go through
// the response cache; seat maps are never cached.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, limiter, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.POST("/bookings/secure", h.BookSecure, limiter)
	// demonstration only: read, wait, write with no locking
	g.POST("/bookings/naive", h.BookNaive, limiter)
	g.GET("/bookings/:id", h.GetBooking, cache)
	g.GET("/shows/:id/seats", h.GetShowSeats)
}

// RegisterSimulation mounts the in-process contention simulation.
func RegisterSimulation(e *echo.Echo, s *handler.SimulationHandler, limiter echo.MiddlewareFunc) {
	e.POST("/v1/simulations", s.Run, limiter)
}
