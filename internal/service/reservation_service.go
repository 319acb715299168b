// Package service implements the reservation lifecycle: create, update,
// cancel and approve, with the guarantee that approved reservations of a
// room never overlap.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iliyamo/room-reservation/internal/availability"
	"github.com/iliyamo/room-reservation/internal/logging"
	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/queue"
	"github.com/iliyamo/room-reservation/internal/repository"
)

// ReservationService holds no state between calls: every operation re-reads
// the reservation from the store, and update, cancel and approve run their
// read-check-write sequence inside one store transaction.
type ReservationService struct {
	store   repository.ReservationTxStore
	checker *availability.Checker
	events  queue.Publisher
	log     *slog.Logger
	now     func() time.Time
}

// NewReservationService wires the service.  A nil publisher disables
// events; a nil logger falls back to slog.Default.
func NewReservationService(store repository.ReservationTxStore, checker *availability.Checker, events queue.Publisher, logger *slog.Logger) *ReservationService {
	if store == nil || checker == nil {
		panic("nil dependency passed to NewReservationService")
	}
	if events == nil {
		events = queue.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReservationService{
		store:   store,
		checker: checker,
		events:  events,
		log:     logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// GetByID returns the reservation or model.ErrNotFound.
func (s *ReservationService) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	rec, err := s.store.FindByID(ctx, id)
	if err != nil {
		return model.Reservation{}, storeErr(err, id)
	}
	return toDomain(rec)
}

// Search returns one page of reservations ordered by ascending id.  Page
// size defaults to 10 and page number to 0.
func (s *ReservationService) Search(ctx context.Context, f model.SearchFilter) ([]model.Reservation, error) {
	size, number, err := f.Resolve()
	if err != nil {
		return nil, err
	}
	recs, err := s.store.Search(ctx, repository.SearchParams{
		RoomID: f.RoomID,
		UserID: f.UserID,
		Limit:  size,
		Offset: size * number,
	})
	if err != nil {
		return nil, err
	}
	return toDomainList(recs)
}

// Create stores a new PENDING reservation.  The caller must not supply an
// id or a status.
func (s *ReservationService) Create(ctx context.Context, in model.Reservation) (model.Reservation, error) {
	if in.ID != 0 {
		return model.Reservation{}, fmt.Errorf("%w: id should be empty", model.ErrInvalidInput)
	}
	if in.Status != "" {
		return model.Reservation{}, fmt.Errorf("%w: status should be empty", model.ErrInvalidInput)
	}
	if err := validateFields(in); err != nil {
		return model.Reservation{}, err
	}

	var res model.Reservation
	err := s.store.InTx(ctx, func(ctx context.Context, tx repository.ReservationStore) error {
		rec := toRecord(in)
		rec.Status = string(model.StatusPending)
		saved, err := tx.Insert(ctx, rec)
		if err != nil {
			return err
		}
		res, err = toDomain(saved)
		return err
	})
	if err != nil {
		return model.Reservation{}, err
	}
	logging.ForReservation(s.log, res.ID, res.RoomID).InfoContext(ctx, "reservation created")
	s.publish(ctx, queue.EventCreated, res)
	return res, nil
}

// Update replaces user, room and dates of a PENDING reservation.  The new
// room and range must not overlap an APPROVED reservation other than this
// one.  The status stays PENDING.
func (s *ReservationService) Update(ctx context.Context, id uint64, in model.Reservation) (model.Reservation, error) {
	var updated model.Reservation
	err := s.store.InTx(ctx, func(ctx context.Context, tx repository.ReservationStore) error {
		cur, err := tx.FindByID(ctx, id)
		if err != nil {
			return storeErr(err, id)
		}
		if cur.Status != string(model.StatusPending) {
			return fmt.Errorf("%w: cannot modify reservation with status %s", model.ErrInvalidState, cur.Status)
		}
		if err := validateFields(in); err != nil {
			return err
		}
		if err := tx.LockRoom(ctx, in.RoomID); err != nil {
			return err
		}
		conflict, err := s.checker.HasConflict(ctx, tx, id, in.RoomID, model.Day(in.StartDate), model.Day(in.EndDate), model.StatusApproved)
		if err != nil {
			return err
		}
		if conflict {
			return fmt.Errorf("%w: room %d is already booked for the requested dates", model.ErrConflict, in.RoomID)
		}

		rec := toRecord(in)
		rec.Status = string(model.StatusPending)
		saved, err := tx.Replace(ctx, id, rec)
		if err != nil {
			return storeErr(err, id)
		}
		updated, err = toDomain(saved)
		return err
	})
	if err != nil {
		return model.Reservation{}, err
	}
	s.log.InfoContext(ctx, "reservation updated", slog.Uint64("reservation_id", id))
	s.publish(ctx, queue.EventUpdated, updated)
	return updated, nil
}

// Cancel moves a PENDING reservation to CANCELED with a status-only
// update.  APPROVED reservations need a manager and CANCELED is terminal.
func (s *ReservationService) Cancel(ctx context.Context, id uint64) error {
	var canceled model.Reservation
	err := s.store.InTx(ctx, func(ctx context.Context, tx repository.ReservationStore) error {
		rec, err := tx.FindByID(ctx, id)
		if err != nil {
			return storeErr(err, id)
		}
		switch model.Status(rec.Status) {
		case model.StatusApproved:
			return fmt.Errorf("%w: approved reservation cannot be canceled without a manager", model.ErrInvalidState)
		case model.StatusCanceled:
			return fmt.Errorf("%w: reservation is already canceled", model.ErrInvalidState)
		}
		if err := tx.SetStatus(ctx, id, string(model.StatusCanceled)); err != nil {
			return storeErr(err, id)
		}
		rec.Status = string(model.StatusCanceled)
		canceled, err = toDomain(rec)
		return err
	})
	if err != nil {
		return err
	}
	s.log.InfoContext(ctx, "reservation canceled", slog.Uint64("reservation_id", id))
	s.publish(ctx, queue.EventCanceled, canceled)
	return nil
}

// Approve moves a PENDING reservation to APPROVED when no other APPROVED
// reservation of the same room overlaps it.  On conflict nothing changes.
// Other PENDING reservations of the room are left as they are.
func (s *ReservationService) Approve(ctx context.Context, id uint64) (model.Reservation, error) {
	var approved model.Reservation
	err := s.store.InTx(ctx, func(ctx context.Context, tx repository.ReservationStore) error {
		rec, err := tx.FindByID(ctx, id)
		if err != nil {
			return storeErr(err, id)
		}
		if rec.Status != string(model.StatusPending) {
			return fmt.Errorf("%w: cannot approve reservation with status %s", model.ErrInvalidState, rec.Status)
		}
		if err := tx.LockRoom(ctx, rec.RoomID); err != nil {
			return err
		}
		conflict, err := s.checker.HasConflict(ctx, tx, id, rec.RoomID, model.Day(rec.StartDate), model.Day(rec.EndDate), model.StatusApproved)
		if err != nil {
			return err
		}
		if conflict {
			return fmt.Errorf("%w: cannot approve because of an overlapping approved reservation", model.ErrConflict)
		}

		rec.Status = string(model.StatusApproved)
		saved, err := tx.Replace(ctx, id, rec)
		if err != nil {
			return storeErr(err, id)
		}
		approved, err = toDomain(saved)
		return err
	})
	if err != nil {
		return model.Reservation{}, err
	}
	logging.ForReservation(s.log, id, approved.RoomID).InfoContext(ctx, "reservation approved")
	s.publish(ctx, queue.EventApproved, approved)
	return approved, nil
}

// validateFields checks the caller-supplied user, room and dates.
func validateFields(in model.Reservation) error {
	if in.UserID == 0 {
		return fmt.Errorf("%w: userId is required", model.ErrInvalidInput)
	}
	if in.RoomID == 0 {
		return fmt.Errorf("%w: roomId is required", model.ErrInvalidInput)
	}
	r := in.Range()
	if !r.Start.IsZero() {
		r.Start = model.Day(r.Start)
	}
	if !r.End.IsZero() {
		r.End = model.Day(r.End)
	}
	return r.Validate()
}

// storeErr translates the store's not-found sentinel into the domain one.
func storeErr(err error, id uint64) error {
	if errors.Is(err, repository.ErrReservationNotFound) {
		return fmt.Errorf("%w: id = %d", model.ErrNotFound, id)
	}
	return err
}

// publish emits a lifecycle event after commit.  Failures are logged only.
func (s *ReservationService) publish(ctx context.Context, typ string, res model.Reservation) {
	ev := queue.ReservationEvent{
		Type:          typ,
		ReservationID: res.ID,
		UserID:        res.UserID,
		RoomID:        res.RoomID,
		StartDate:     model.FormatDate(res.StartDate),
		EndDate:       model.FormatDate(res.EndDate),
		Status:        string(res.Status),
		OccurredAt:    s.now().Format(time.RFC3339),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.WarnContext(ctx, "publish reservation event failed",
			slog.String("type", typ),
			slog.Uint64("reservation_id", res.ID),
			slog.String("error", err.Error()))
	}
}
