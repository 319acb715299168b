// Package availability decides whether a room is free for a date range,
// i.e. whether any reservation in the considered status overlaps it.
package availability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/repository"
)

// Strategy selects how candidates are found.
type Strategy string

const (
	// StrategyQuery pushes the overlap predicate down to the store.
	StrategyQuery Strategy = "query"
	// StrategyScan loads every reservation in the status and filters in
	// process.  Kept for stores without a range query.
	StrategyScan Strategy = "scan"
)

// ParseStrategy maps a config value to a Strategy, defaulting to query.
func ParseStrategy(raw string) Strategy {
	if Strategy(strings.ToLower(strings.TrimSpace(raw))) == StrategyScan {
		return StrategyScan
	}
	return StrategyQuery
}

// Source is the part of the store the checker reads from.
type Source interface {
	FindConflictingIDs(ctx context.Context, q repository.ConflictQuery) ([]uint64, error)
	FindAllByStatus(ctx context.Context, status string) ([]repository.ReservationRecord, error)
}

// Checker is stateless; one instance is shared by all requests.
type Checker struct {
	strategy Strategy
	log      *slog.Logger
}

// NewChecker returns a Checker using the strategy.
func NewChecker(strategy Strategy, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{strategy: strategy, log: logger}
}

// HasConflict reports whether a reservation of roomID in the considered
// status overlaps [start, end).  excludeID (0 = none) is never compared
// with itself.  An empty or inverted range fails with model.ErrInvalidInput
// before the store is read.
func (c *Checker) HasConflict(ctx context.Context, src Source, excludeID, roomID uint64, start, end time.Time, considered model.Status) (bool, error) {
	want := model.DateRange{Start: start, End: end}
	if err := want.Validate(); err != nil {
		return false, err
	}

	var ids []uint64
	var err error
	switch c.strategy {
	case StrategyScan:
		ids, err = c.scan(ctx, src, excludeID, roomID, want, considered)
	default:
		ids, err = src.FindConflictingIDs(ctx, repository.ConflictQuery{
			RoomID:    roomID,
			Start:     start,
			End:       end,
			Status:    string(considered),
			ExcludeID: excludeID,
		})
	}
	if err != nil {
		return false, fmt.Errorf("check availability of room %d: %w", roomID, err)
	}
	if len(ids) == 0 {
		return false, nil
	}
	c.log.InfoContext(ctx, "reservation conflict",
		slog.Uint64("room_id", roomID),
		slog.String("start_date", model.FormatDate(start)),
		slog.String("end_date", model.FormatDate(end)),
		slog.Any("conflicting_ids", ids))
	return true, nil
}

func (c *Checker) scan(ctx context.Context, src Source, excludeID, roomID uint64, want model.DateRange, considered model.Status) ([]uint64, error) {
	all, err := src.FindAllByStatus(ctx, string(considered))
	if err != nil {
		return nil, err
	}
	var ids []uint64
	for _, rec := range all {
		if rec.ID == excludeID || rec.RoomID != roomID {
			continue
		}
		if want.Overlaps(model.DateRange{Start: rec.StartDate, End: rec.EndDate}) {
			ids = append(ids, rec.ID)
		}
	}
	return ids, nil
}
