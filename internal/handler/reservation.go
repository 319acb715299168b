package handler

import (
    "fmt"
    "log/slog"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/room-reservation/internal/model"
    "github.com/iliyamo/room-reservation/internal/service"
)

// ReservationHandler exposes the reservation lifecycle over HTTP.  It only
// converts between JSON and domain values; every rule lives in the service.
type ReservationHandler struct {
    Service *service.ReservationService
    log     *slog.Logger
}

// NewReservationHandler panics when svc is nil.
func NewReservationHandler(svc *service.ReservationService, logger *slog.Logger) *ReservationHandler {
    if svc == nil {
        panic("nil service passed to NewReservationHandler")
    }
    if logger == nil {
        logger = slog.Default()
    }
    return &ReservationHandler{Service: svc, log: logger}
}

// reservationRequest is the body of create and update.  ID and Status are
// pointers so that a client sending them on create can be told off.
type reservationRequest struct {
    ID        *uint64 `json:"id"`
    UserID    uint64  `json:"userId"`
    RoomID    uint64  `json:"roomId"`
    StartDate string  `json:"startDate"`
    EndDate   string  `json:"endDate"`
    Status    *string `json:"status"`
}

type reservationResponse struct {
    ID        uint64 `json:"id"`
    UserID    uint64 `json:"userId"`
    RoomID    uint64 `json:"roomId"`
    StartDate string `json:"startDate"`
    EndDate   string `json:"endDate"`
    Status    string `json:"status"`
}

func toResponse(r model.Reservation) reservationResponse {
    return reservationResponse{
        ID:        r.ID,
        UserID:    r.UserID,
        RoomID:    r.RoomID,
        StartDate: model.FormatDate(r.StartDate),
        EndDate:   model.FormatDate(r.EndDate),
        Status:    string(r.Status),
    }
}

// toInput converts the body into a domain value.  Empty dates stay zero
// and are rejected by the service.
func (req reservationRequest) toInput() (model.Reservation, error) {
    in := model.Reservation{UserID: req.UserID, RoomID: req.RoomID}
    if req.StartDate != "" {
        d, err := model.ParseDate(req.StartDate)
        if err != nil {
            return model.Reservation{}, err
        }
        in.StartDate = d
    }
    if req.EndDate != "" {
        d, err := model.ParseDate(req.EndDate)
        if err != nil {
            return model.Reservation{}, err
        }
        in.EndDate = d
    }
    return in, nil
}

func bindRequest(c echo.Context) (reservationRequest, error) {
    var req reservationRequest
    if err := c.Bind(&req); err != nil {
        return req, fmt.Errorf("%w: invalid request body", model.ErrInvalidInput)
    }
    return req, nil
}

func pathID(c echo.Context) (uint64, error) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return 0, fmt.Errorf("%w: invalid reservation id %q", model.ErrInvalidInput, c.Param("id"))
    }
    return id, nil
}

func queryUint(c echo.Context, name string) (*uint64, error) {
    raw := c.QueryParam(name)
    if raw == "" {
        return nil, nil
    }
    v, err := strconv.ParseUint(raw, 10, 64)
    if err != nil {
        return nil, fmt.Errorf("%w: invalid %s %q", model.ErrInvalidInput, name, raw)
    }
    return &v, nil
}

func queryInt(c echo.Context, name string) (*int, error) {
    raw := c.QueryParam(name)
    if raw == "" {
        return nil, nil
    }
    v, err := strconv.Atoi(raw)
    if err != nil {
        return nil, fmt.Errorf("%w: invalid %s %q", model.ErrInvalidInput, name, raw)
    }
    return &v, nil
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
    id, err := pathID(c)
    if err != nil {
        return writeError(c, h.log, err)
    }
    res, err := h.Service.GetByID(c.Request().Context(), id)
    if err != nil {
        return writeError(c, h.log, err)
    }
    return c.JSON(http.StatusOK, toResponse(res))
}

// Search handles GET /v1/reservations with the optional query parameters
// roomId, userId, pageSize and pageNumber.
func (h *ReservationHandler) Search(c echo.Context) error {
    var (
        f   model.SearchFilter
        err error
    )
    if f.RoomID, err = queryUint(c, "roomId"); err != nil {
        return writeError(c, h.log, err)
    }
    if f.UserID, err = queryUint(c, "userId"); err != nil {
        return writeError(c, h.log, err)
    }
    if f.PageSize, err = queryInt(c, "pageSize"); err != nil {
        return writeError(c, h.log, err)
    }
    if f.PageNumber, err = queryInt(c, "pageNumber"); err != nil {
        return writeError(c, h.log, err)
    }

    list, err := h.Service.Search(c.Request().Context(), f)
    if err != nil {
        return writeError(c, h.log, err)
    }
    out := make([]reservationResponse, 0, len(list))
    for _, r := range list {
        out = append(out, toResponse(r))
    }
    return c.JSON(http.StatusOK, out)
}

// Create handles POST /v1/reservations and answers 201 with the stored
// reservation.
func (h *ReservationHandler) Create(c echo.Context) error {
    req, err := bindRequest(c)
    if err != nil {
        return writeError(c, h.log, err)
    }
    if req.ID != nil {
        return writeError(c, h.log, fmt.Errorf("%w: id should be empty", model.ErrInvalidInput))
    }
    if req.Status != nil && *req.Status != "" {
        return writeError(c, h.log, fmt.Errorf("%w: status should be empty", model.ErrInvalidInput))
    }
    in, err := req.toInput()
    if err != nil {
        return writeError(c, h.log, err)
    }
    res, err := h.Service.Create(c.Request().Context(), in)
    if err != nil {
        return writeError(c, h.log, err)
    }
    return c.JSON(http.StatusCreated, toResponse(res))
}

// Update handles PUT /v1/reservations/:id.  Id and status in the body are
// ignored.
func (h *ReservationHandler) Update(c echo.Context) error {
    id, err := pathID(c)
    if err != nil {
        return writeError(c, h.log, err)
    }
    req, err := bindRequest(c)
    if err != nil {
        return writeError(c, h.log, err)
    }
    in, err := req.toInput()
    if err != nil {
        return writeError(c, h.log, err)
    }
    res, err := h.Service.Update(c.Request().Context(), id, in)
    if err != nil {
        return writeError(c, h.log, err)
    }
    return c.JSON(http.StatusOK, toResponse(res))
}

// Cancel handles DELETE /v1/reservations/:id/cancel.
func (h *ReservationHandler) Cancel(c echo.Context) error {
    id, err := pathID(c)
    if err != nil {
        return writeError(c, h.log, err)
    }
    if err := h.Service.Cancel(c.Request().Context(), id); err != nil {
        return writeError(c, h.log, err)
    }
    return c.NoContent(http.StatusOK)
}

// Approve handles POST /v1/reservations/:id/approve.
func (h *ReservationHandler) Approve(c echo.Context) error {
    id, err := pathID(c)
    if err != nil {
        return writeError(c, h.log, err)
    }
    res, err := h.Service.Approve(c.Request().Context(), id)
    if err != nil {
        return writeError(c, h.log, err)
    }
    return c.JSON(http.StatusOK, toResponse(res))
}
