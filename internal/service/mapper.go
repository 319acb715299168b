package service

import (
	"fmt"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/repository"
)

// toDomain converts a stored row into the domain value.  A row with an
// unknown status is reported as an internal failure, not as bad input.
func toDomain(rec repository.ReservationRecord) (model.Reservation, error) {
	status, err := model.ParseStatus(rec.Status)
	if err != nil {
		return model.Reservation{}, fmt.Errorf("reservation %d has corrupt status %q", rec.ID, rec.Status)
	}
	return model.Reservation{
		ID:        rec.ID,
		UserID:    rec.UserID,
		RoomID:    rec.RoomID,
		StartDate: model.Day(rec.StartDate),
		EndDate:   model.Day(rec.EndDate),
		Status:    status,
	}, nil
}

func toDomainList(recs []repository.ReservationRecord) ([]model.Reservation, error) {
	out := make([]model.Reservation, 0, len(recs))
	for _, rec := range recs {
		res, err := toDomain(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// toRecord converts a domain value into a row.  Timestamps are owned by
// the store.
func toRecord(res model.Reservation) repository.ReservationRecord {
	return repository.ReservationRecord{
		ID:        res.ID,
		UserID:    res.UserID,
		RoomID:    res.RoomID,
		StartDate: model.Day(res.StartDate),
		EndDate:   model.Day(res.EndDate),
		Status:    string(res.Status),
	}
}
