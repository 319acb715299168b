package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/availability"
	"github.com/iliyamo/room-reservation/internal/logging"
	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/queue"
	"github.com/iliyamo/room-reservation/internal/repository"
	"github.com/iliyamo/room-reservation/internal/service"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	log := logging.Discard()
	store := repository.NewMemoryReservationRepo()
	svc := service.NewReservationService(store, availability.NewChecker(availability.StrategyQuery, log), queue.NopPublisher{}, log)
	h := NewReservationHandler(svc, log)

	e := echo.New()
	e.GET("/healthz", NewHealthHandler(store).Health)
	g := e.Group("/v1/reservations")
	g.GET("", h.Search)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id/cancel", h.Cancel)
	g.POST("/:id/approve", h.Approve)
	return e
}

func do(t *testing.T, e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func createBody(user, room int, start, end string) string {
	return fmt.Sprintf(`{"userId":%d,"roomId":%d,"startDate":%q,"endDate":%q}`, user, room, start, end)
}

func TestReservationLifecycleOverHTTP(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, http.MethodPost, "/v1/reservations", createBody(7, 3, "2025-01-01", "2025-01-05"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", rec.Code, rec.Body)
	}
	created := decode[reservationResponse](t, rec)
	want := reservationResponse{ID: 1, UserID: 7, RoomID: 3, StartDate: "2025-01-01", EndDate: "2025-01-05", Status: "PENDING"}
	if created != want {
		t.Fatalf("created = %+v, want %+v", created, want)
	}

	rec = do(t, e, http.MethodPut, "/v1/reservations/1", createBody(7, 4, "2025-01-02", "2025-01-06"))
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d body=%s", rec.Code, rec.Body)
	}
	if got := decode[reservationResponse](t, rec); got.RoomID != 4 || got.StartDate != "2025-01-02" {
		t.Fatalf("updated = %+v", got)
	}

	rec = do(t, e, http.MethodPost, "/v1/reservations/1/approve", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("approve status = %d body=%s", rec.Code, rec.Body)
	}
	if got := decode[reservationResponse](t, rec); got.Status != "APPROVED" {
		t.Fatalf("approved = %+v", got)
	}

	rec = do(t, e, http.MethodGet, "/v1/reservations/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = do(t, e, http.MethodDelete, "/v1/reservations/1/cancel", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("cancel approved status = %d, want 400", rec.Code)
	}
	body := decode[map[string]string](t, rec)
	if body["error"] == "" || body["timestamp"] == "" {
		t.Fatalf("error body = %v", body)
	}
}

func TestCancelPendingReturnsEmptyOK(t *testing.T) {
	e := newTestServer(t)
	do(t, e, http.MethodPost, "/v1/reservations", createBody(1, 1, "2025-02-01", "2025-02-03"))

	rec := do(t, e, http.MethodDelete, "/v1/reservations/1/cancel", "")
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Fatalf("cancel = %d %q", rec.Code, rec.Body.String())
	}
	rec = do(t, e, http.MethodGet, "/v1/reservations/1", "")
	if got := decode[reservationResponse](t, rec); got.Status != "CANCELED" {
		t.Fatalf("status = %s", got.Status)
	}
}

func TestErrorStatusCodes(t *testing.T) {
	e := newTestServer(t)
	do(t, e, http.MethodPost, "/v1/reservations", createBody(1, 9, "2025-03-01", "2025-03-05"))
	do(t, e, http.MethodPost, "/v1/reservations", createBody(2, 9, "2025-03-04", "2025-03-06"))
	do(t, e, http.MethodPost, "/v1/reservations/1/approve", "")

	cases := []struct {
		name, method, target, body string
		want                       int
	}{
		{"missing reservation", http.MethodGet, "/v1/reservations/99", "", http.StatusNotFound},
		{"bad id", http.MethodGet, "/v1/reservations/abc", "", http.StatusBadRequest},
		{"approve missing", http.MethodPost, "/v1/reservations/99/approve", "", http.StatusNotFound},
		{"conflicting approve", http.MethodPost, "/v1/reservations/2/approve", "", http.StatusBadRequest},
		{"approve twice", http.MethodPost, "/v1/reservations/1/approve", "", http.StatusBadRequest},
		{"update approved", http.MethodPut, "/v1/reservations/1", createBody(1, 9, "2025-04-01", "2025-04-02"), http.StatusBadRequest},
		{"create with id", http.MethodPost, "/v1/reservations", `{"id":5,"userId":1,"roomId":1,"startDate":"2025-01-01","endDate":"2025-01-02"}`, http.StatusBadRequest},
		{"create with status", http.MethodPost, "/v1/reservations", `{"status":"APPROVED","userId":1,"roomId":1,"startDate":"2025-01-01","endDate":"2025-01-02"}`, http.StatusBadRequest},
		{"create bad date", http.MethodPost, "/v1/reservations", createBody(1, 1, "2025-13-01", "2025-01-02"), http.StatusBadRequest},
		{"create empty range", http.MethodPost, "/v1/reservations", createBody(1, 1, "2025-01-02", "2025-01-02"), http.StatusBadRequest},
		{"create malformed json", http.MethodPost, "/v1/reservations", `{"userId":`, http.StatusBadRequest},
		{"bad page size", http.MethodGet, "/v1/reservations?pageSize=0", "", http.StatusBadRequest},
		{"overflowing page", http.MethodGet, "/v1/reservations?pageSize=4611686018427387905&pageNumber=2", "", http.StatusBadRequest},
		{"non-numeric room", http.MethodGet, "/v1/reservations?roomId=x", "", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, e, tc.method, tc.target, tc.body)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.want, rec.Body)
			}
		})
	}
}

func TestSearchFilters(t *testing.T) {
	e := newTestServer(t)
	for i := 1; i <= 5; i++ {
		do(t, e, http.MethodPost, "/v1/reservations", createBody(i%2+1, 1+i%3, "2025-01-01", "2025-01-02"))
	}

	rec := do(t, e, http.MethodGet, "/v1/reservations?userId=2&pageSize=2&pageNumber=0", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	list := decode[[]reservationResponse](t, rec)
	if len(list) != 2 || list[0].ID != 1 || list[1].ID != 3 {
		t.Fatalf("list = %+v", list)
	}

	rec = do(t, e, http.MethodGet, "/v1/reservations?roomId=42", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("empty search = %d %s", rec.Code, rec.Body)
	}
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("down") }

func TestHealth(t *testing.T) {
	e := newTestServer(t)
	if rec := do(t, e, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("health = %d %q", rec.Code, rec.Body.String())
	}

	e2 := echo.New()
	e2.GET("/healthz", NewHealthHandler(failingPinger{}).Health)
	if rec := do(t, e2, http.MethodGet, "/healthz", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("health with failing store = %d", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{model.ErrNotFound, http.StatusNotFound},
		{model.ErrInvalidInput, http.StatusBadRequest},
		{model.ErrInvalidState, http.StatusBadRequest},
		{fmt.Errorf("approve: %w", model.ErrConflict), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Errorf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
