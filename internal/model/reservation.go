package model

import (
    "fmt"
    "math"
    "strings"
    "time"
)

// Status is the lifecycle state of a reservation.
type Status string

const (
    StatusPending  Status = "PENDING"
    StatusApproved Status = "APPROVED"
    StatusCanceled Status = "CANCELED"
)

// ParseStatus normalizes a raw status string.  Unknown values are rejected
// with ErrInvalidInput.
func ParseStatus(raw string) (Status, error) {
    switch s := Status(strings.ToUpper(strings.TrimSpace(raw))); s {
    case StatusPending, StatusApproved, StatusCanceled:
        return s, nil
    }
    return "", fmt.Errorf("%w: unknown reservation status %q", ErrInvalidInput, raw)
}

// Reservation is a booking of one room by one user for a range of calendar
// days.  Values are treated as immutable; operations return new values.
//
// Fields:
//  ID        – primary key; zero until the reservation is persisted.
//  UserID    – user who made the reservation.
//  RoomID    – room being reserved.
//  StartDate – first day (inclusive), UTC midnight.
//  EndDate   – last day (exclusive), UTC midnight.
//  Status    – PENDING, APPROVED or CANCELED; empty before persistence.
type Reservation struct {
    ID        uint64
    UserID    uint64
    RoomID    uint64
    StartDate time.Time
    EndDate   time.Time
    Status    Status
}

// Range returns the reservation's dates as a half-open DateRange.
func (r Reservation) Range() DateRange {
    return DateRange{Start: r.StartDate, End: r.EndDate}
}

// SearchFilter carries the optional search parameters.  Nil fields are
// unconstrained.
type SearchFilter struct {
    RoomID     *uint64
    UserID     *uint64
    PageSize   *int
    PageNumber *int
}

const (
    DefaultPageSize   = 10
    DefaultPageNumber = 0
)

// Resolve returns the effective page size and number, applying defaults
// for missing values.  size*number is guaranteed to fit in an int.
func (f SearchFilter) Resolve() (size, number int, err error) {
    size, number = DefaultPageSize, DefaultPageNumber
    if f.PageSize != nil {
        size = *f.PageSize
    }
    if f.PageNumber != nil {
        number = *f.PageNumber
    }
    if size <= 0 {
        return 0, 0, fmt.Errorf("%w: pageSize must be positive", ErrInvalidInput)
    }
    if number < 0 {
        return 0, 0, fmt.Errorf("%w: pageNumber must not be negative", ErrInvalidInput)
    }
    if number > math.MaxInt/size {
        return 0, 0, fmt.Errorf("%w: pageNumber %d is out of range for pageSize %d", ErrInvalidInput, number, size)
    }
    return size, number, nil
}
