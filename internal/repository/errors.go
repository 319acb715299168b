// Package repository defines the reservation store contract and its MySQL
// and in-memory implementations.  Sentinel errors declared here let the
// service layer distinguish a missing row from an infrastructure failure.
package repository

import "errors"

// ErrReservationNotFound is returned when no reservation row matches the
// requested id.  The service layer translates it into model.ErrNotFound.
var ErrReservationNotFound = errors.New("reservation not found")
