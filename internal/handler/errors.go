package handler

import (
    "errors"
    "log/slog"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/room-reservation/internal/model"
)

// statusFor maps domain errors to HTTP status codes.  Conflicts are
// reported as 400 like other rejected requests.
func statusFor(err error) int {
    switch {
    case errors.Is(err, model.ErrNotFound):
        return http.StatusNotFound
    case errors.Is(err, model.ErrInvalidInput),
        errors.Is(err, model.ErrInvalidState),
        errors.Is(err, model.ErrConflict):
        return http.StatusBadRequest
    default:
        return http.StatusInternalServerError
    }
}

// writeError renders {"error", "timestamp"}.  Internal failures are logged
// and their details are not sent to the client.
func writeError(c echo.Context, log *slog.Logger, err error) error {
    status := statusFor(err)
    msg := err.Error()
    if status == http.StatusInternalServerError {
        log.ErrorContext(c.Request().Context(), "request failed",
            slog.String("method", c.Request().Method),
            slog.String("path", c.Request().URL.Path),
            slog.String("error", msg))
        msg = "internal server error"
    }
    return c.JSON(status, echo.Map{
        "error":     msg,
        "timestamp": time.Now().UTC().Format(time.RFC3339),
    })
}
