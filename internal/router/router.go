package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/handler"
)

// RegisterRoutes registers routes outside the versioned API.  At the moment
// that is only the health check.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Health)
}

// ReservationMiddleware groups the middleware applied to the reservation
// routes.  Nil entries are skipped.
type ReservationMiddleware struct {
	RateLimit  echo.MiddlewareFunc // applied to every route
	Cache      echo.MiddlewareFunc // applied to reads
	Invalidate echo.MiddlewareFunc // applied to writes
}

// RegisterReservations mounts the reservation API under /v1/reservations.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, mw ReservationMiddleware) {
	g := e.Group("/v1/reservations")
	if mw.RateLimit != nil {
		g.Use(mw.RateLimit)
	}

	reads := compact(mw.Cache)
	writes := compact(mw.Invalidate)

	g.GET("", h.Search, reads...)
	g.GET("/:id", h.Get, reads...)
	g.POST("", h.Create, writes...)
	g.PUT("/:id", h.Update, writes...)
	g.DELETE("/:id/cancel", h.Cancel, writes...)
	g.POST("/:id/approve", h.Approve, writes...)
}

func compact(mws ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(mws))
	for _, m := range mws {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}
