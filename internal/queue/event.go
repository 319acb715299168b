// Package queue defines the reservation lifecycle events exchanged over
// RabbitMQ together with their publisher and the audit-log consumer.
package queue

// Event types published after a lifecycle operation commits.
const (
    EventCreated  = "reservation.created"
    EventUpdated  = "reservation.updated"
    EventCanceled = "reservation.canceled"
    EventApproved = "reservation.approved"
)

// ReservationQueueName is the durable queue carrying ReservationEvent payloads.
const ReservationQueueName = "reservation.events"

// ReservationEvent is published when a reservation changes state.  It
// contains enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.  Dates use the
// YYYY-MM-DD layout and OccurredAt is RFC3339 UTC.
type ReservationEvent struct {
    Type          string `json:"type"`
    ReservationID uint64 `json:"reservation_id"`
    UserID        uint64 `json:"user_id"`
    RoomID        uint64 `json:"room_id"`
    StartDate     string `json:"start_date"`
    EndDate       string `json:"end_date"`
    Status        string `json:"status"`
    OccurredAt    string `json:"occurred_at"`
}
