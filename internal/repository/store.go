package repository

import (
	"context"
	"time"
)

// ReservationRecord mirrors the schema of the reservations table.  It is
// used by the store implementations when constructing or scanning rows.
// Business logic should use the model.Reservation type instead.
type ReservationRecord struct {
	ID        uint64
	UserID    uint64
	RoomID    uint64
	StartDate time.Time
	EndDate   time.Time
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SearchParams narrows a reservation listing.  Nil ids are unconstrained.
// Results are always ordered by ascending id.
type SearchParams struct {
	RoomID *uint64
	UserID *uint64
	Limit  int
	Offset int
}

// ConflictQuery selects reservations of RoomID with the given Status whose
// [start_date, end_date) interval overlaps [Start, End).  ExcludeID, when
// non-zero, removes that reservation from the result.
type ConflictQuery struct {
	RoomID    uint64
	Start     time.Time
	End       time.Time
	Status    string
	ExcludeID uint64
}

// ReservationStore is the persistence contract of the reservation
// lifecycle.  FindByID returns ErrReservationNotFound for unknown ids and
// Replace/SetStatus do the same when nothing was updated.
type ReservationStore interface {
	FindByID(ctx context.Context, id uint64) (ReservationRecord, error)
	ExistsByID(ctx context.Context, id uint64) (bool, error)
	Search(ctx context.Context, p SearchParams) ([]ReservationRecord, error)
	Insert(ctx context.Context, rec ReservationRecord) (ReservationRecord, error)
	Replace(ctx context.Context, id uint64, rec ReservationRecord) (ReservationRecord, error)
	SetStatus(ctx context.Context, id uint64, status string) error
	FindConflictingIDs(ctx context.Context, q ConflictQuery) ([]uint64, error)
	FindAllByStatus(ctx context.Context, status string) ([]ReservationRecord, error)
	// LockRoom blocks concurrent lockers of the same room until the
	// surrounding transaction ends.  Outside a transaction it is a no-op.
	LockRoom(ctx context.Context, roomID uint64) error
}

// ReservationTxStore is a ReservationStore able to run a unit of work
// atomically.  InTx commits when fn returns nil and rolls back otherwise.
type ReservationTxStore interface {
	ReservationStore
	InTx(ctx context.Context, fn func(ctx context.Context, tx ReservationStore) error) error
	Ping(ctx context.Context) error
}
