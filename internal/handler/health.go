package handler // declare the package name; contains HTTP handlers

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// Pinger is anything that can report whether its backend is reachable.
type Pinger interface {
    Ping(ctx context.Context) error
}

// HealthHandler serves the health check used by load balancers and
// monitoring systems.
type HealthHandler struct {
    store Pinger
}

// NewHealthHandler returns a health handler that checks store.  A nil store
// makes the check always succeed.
func NewHealthHandler(store Pinger) *HealthHandler {
    return &HealthHandler{store: store}
}

// Health writes "ok" with 200, or "unavailable" with 503 when the store
// does not answer within two seconds.
func (h *HealthHandler) Health(c echo.Context) error {
    if h.store != nil {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()
        if err := h.store.Ping(ctx); err != nil {
            return c.String(http.StatusServiceUnavailable, "unavailable")
        }
    }
    return c.String(http.StatusOK, "ok")
}
