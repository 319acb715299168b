package model

import "errors"

// Sentinel errors of the reservation lifecycle.  They are wrapped with
// context via fmt.Errorf("%w: ...") and matched with errors.Is at the HTTP
// boundary.  Any other error is an internal failure.
var (
    // ErrNotFound: the referenced reservation does not exist.
    ErrNotFound = errors.New("reservation not found")
    // ErrInvalidInput: caller supplied data violates a structural precondition.
    ErrInvalidInput = errors.New("invalid input")
    // ErrInvalidState: the transition is illegal from the current status.
    ErrInvalidState = errors.New("invalid state")
    // ErrConflict: the transition would overlap an approved reservation.
    ErrConflict = errors.New("reservation conflict")
)
